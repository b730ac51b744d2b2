// Package routes defines HTTP route constants for the preview server.
package routes

const (
	RobotsPath = "/robots.txt"
	HealthPath = "/healthz"
	EventsPath = "/events"

	// Widget fragments, one per widget namespace
	PartialsLinks = "/partials/widgets/links"

	RootPath = "/"
)
