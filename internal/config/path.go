package config

const (
	//? These paths must match the paths in the embed directive

	TemplatesLocalDir = "templates"
	TemplateLayout    = "layout.html"

	IndexFile = "index.html"
)
