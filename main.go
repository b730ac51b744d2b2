package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/linkpanel/internal/cache"
	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/i18n"
	"github.com/debemdeboas/linkpanel/internal/logger"
	"github.com/debemdeboas/linkpanel/internal/render"
	"github.com/debemdeboas/linkpanel/internal/routes"
	"github.com/debemdeboas/linkpanel/internal/site"
	"github.com/debemdeboas/linkpanel/internal/sse"
	"github.com/debemdeboas/linkpanel/internal/util"
	"github.com/debemdeboas/linkpanel/internal/widget/links"
)

var appLogger zerolog.Logger

var bundle *i18n.Bundle
var store cache.Store

var clients = sse.NewClients()

// preview is everything derived from one config revision.
type preview struct {
	cfg     *config.Config
	builder *site.Builder
	links   *links.Widget
}

var current atomic.Pointer[preview]

func newPreview(cfg *config.Config) (*preview, error) {
	widget := links.New(store, cfg.Widgets.Links.TagText, render.WithSingleFlight(cfg.Cache.SingleFlight))

	builder, err := site.NewBuilder(cfg, bundle, widget, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Server.LiveReload {
		builder.SetEventsURL(routes.EventsPath)
	}

	return &preview{cfg: cfg, builder: builder, links: widget}, nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppConfig
	cfg.ApplyEnv()

	appLogger = logger.New(cfg.Logging.Level)
	setLoggers(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var closer io.Closer
	store, closer, err = cache.Open(ctx, cfg.Cache)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to open fragment store")
	}
	defer closer.Close()

	bundle, err = i18n.Load(cfg.I18n.DefaultLocale, cfg.I18n.Dir)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to load locales")
	}

	p, err := newPreview(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to create page builder")
	}
	current.Store(p)

	// Warm the default locale so the first request is a hit
	go func() {
		page := site.Page{Path: routes.RootPath, Locale: cfg.I18n.DefaultLocale}
		if err := <-p.links.Warm(ctx, p.builder.PageData(page)); err != nil {
			appLogger.Warn().Err(err).Msg("Failed to warm links widget")
		}
	}()

	if cfg.Server.LiveReload {
		go config.Watch(ctx, configPath, time.Second, handleConfigReload)
	}

	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: newHandler(),
	}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	appLogger.Info().Str("addr", server.Addr).Bool("live_reload", cfg.Server.LiveReload).Msg("Preview server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLogger.Fatal().Err(err).Msg("Server stopped")
	}
}

// handleConfigReload swaps in the new revision. Changed links hash to new
// fragment keys, so the store needs no invalidation.
func handleConfigReload(cfg *config.Config) {
	p, err := newPreview(cfg)
	if err != nil {
		appLogger.Error().Err(err).Msg("Keeping previous config")
		return
	}
	current.Store(p)
	go clients.Broadcast("", "reload")
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(logger.Component(l, "config"))
	cache.SetLogger(logger.Component(l, "cache"))
	i18n.SetLogger(logger.Component(l, "i18n"))
	render.SetLogger(logger.Component(l, "render"))
	site.SetLogger(logger.Component(l, "site"))
}

func newHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc(routes.EventsPath, eventsHandler)
	mux.HandleFunc(routes.PartialsLinks, serveLinksPartial)
	mux.HandleFunc(routes.RootPath, serveIndex)

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})

	return cacheIt(securedMux)
}

// localeFromRequest prefers ?lang=, then Accept-Language, then the default locale.
func localeFromRequest(r *http.Request) string {
	if lang := r.URL.Query().Get(config.QueryLocale); lang != "" {
		if locale, ok := bundle.Match(lang); ok {
			return locale
		}
	}
	locale, _ := bundle.Match(r.Header.Get("Accept-Language"))
	return locale
}

func serveLinksPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	pagePath := r.URL.Query().Get("page")
	if pagePath == "" {
		pagePath = routes.RootPath
	}

	p := current.Load()
	pd := p.builder.PageData(site.Page{Path: pagePath, Locale: localeFromRequest(r)})
	html, err := p.links.Render(r.Context(), pd)
	if err != nil {
		appLogger.Error().Err(err).Str("locale", pd.Locale).Msg("Failed to render links widget")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	// Nothing to show
	if html == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeHTML(w, r, []byte(html))
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	p := current.Load()
	if !slices.Contains(p.cfg.Build.Pages, r.URL.Path) {
		http.NotFound(w, r)
		return
	}

	page := site.Page{Path: r.URL.Path, Locale: localeFromRequest(r)}
	body, err := p.builder.RenderPage(r.Context(), page)
	if err != nil {
		appLogger.Error().Err(err).Str("path", page.Path).Str("locale", page.Locale).Msg("Failed to render page")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	writeHTML(w, r, body)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := sse.NewClient(r.URL.Query().Get("page"))
	clients.Add(client)
	appLogger.Debug().Str("page", client.Page).Msg("SSE client connected")

	defer func() {
		clients.Delete(client)
		appLogger.Debug().Str("page", client.Page).Msg("SSE client disconnected")
	}()

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

// writeHTML answers conditional requests from the content hash.
func writeHTML(w http.ResponseWriter, r *http.Request, body []byte) {
	etag := `"` + util.ContentHash(body) + `"`
	w.Header().Set(config.HETag, etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Accept-Language")

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}
