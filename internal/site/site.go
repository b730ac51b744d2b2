// Package site drives page builds: one page per (path, locale), widgets embedded from the fragment store.
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/i18n"
	"github.com/debemdeboas/linkpanel/internal/model"
	"github.com/debemdeboas/linkpanel/internal/util/compression"
)

var siteLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	siteLogger = l
}

//go:embed templates/*
var templates embed.FS

// DefaultLayout is the page shell widgets are embedded into.
func DefaultLayout() *template.Template {
	return template.Must(template.ParseFS(templates, config.TemplatesLocalDir+"/"+config.TemplateLayout))
}

// WidgetRenderer is satisfied by the cached widgets in internal/widget.
type WidgetRenderer interface {
	Render(ctx context.Context, pd *model.PageData) (template.HTML, error)
}

type Page struct {
	Path   string
	Locale string
}

type Report struct {
	BuildID  string
	Pages    int
	Bytes    int64
	Duration time.Duration
}

type Builder struct {
	site    config.SiteConfig
	widget  model.WidgetConfig
	bundle  *i18n.Bundle
	links   WidgetRenderer
	layout  *template.Template
	minify  *minify.M
	codecs  []compression.Compressor
	outDir  string
	workers int

	eventsURL string
}

func NewBuilder(cfg *config.Config, bundle *i18n.Bundle, links WidgetRenderer, layout *template.Template) (*Builder, error) {
	b := &Builder{
		site:    cfg.Site,
		widget:  cfg.Widget(),
		bundle:  bundle,
		links:   links,
		layout:  layout,
		outDir:  cfg.Build.OutputDir,
		workers: cfg.Build.Workers,
	}
	if b.layout == nil {
		b.layout = DefaultLayout()
	}
	if b.workers < 1 {
		b.workers = 1
	}

	if cfg.Build.Minify {
		b.minify = minify.New()
		b.minify.AddFunc(config.CTypeHTML, mhtml.Minify)
	}

	for _, name := range cfg.Build.Precompress {
		codec, err := compression.ByName(name)
		if err != nil {
			return nil, err
		}
		if codec != nil {
			b.codecs = append(b.codecs, codec)
		}
	}

	return b, nil
}

// SetEventsURL makes rendered pages subscribe to reload events at url.
// Static builds leave it unset.
func (b *Builder) SetEventsURL(url string) {
	b.eventsURL = url
}

// Pages is every configured path in every configured locale.
func Pages(cfg *config.Config) []Page {
	pages := make([]Page, 0, len(cfg.Build.Pages)*len(cfg.I18n.Locales))
	for _, locale := range cfg.I18n.Locales {
		for _, p := range cfg.Build.Pages {
			pages = append(pages, Page{Path: p, Locale: locale})
		}
	}
	return pages
}

// PageData builds the per-page context handed to widgets.
func (b *Builder) PageData(page Page) *model.PageData {
	return model.NewPageData(b.site.Name, page.Path, page.Locale, b.bundle.Helper(page.Locale), b.widget)
}

// RenderPage renders one page with its widgets. Widget errors fail the page.
func (b *Builder) RenderPage(ctx context.Context, page Page) ([]byte, error) {
	pd := b.PageData(page)

	linksHTML, err := b.links.Render(ctx, pd)
	if err != nil {
		return nil, err
	}

	data := struct {
		*model.PageData
		Description string
		Links       template.HTML
		EventsURL   string
	}{
		PageData:    pd,
		Description: b.site.Description,
		Links:       linksHTML,
	}
	if b.eventsURL != "" {
		data.EventsURL = b.eventsURL + "?page=" + url.QueryEscape(page.Path)
	}

	var buf bytes.Buffer
	if err := b.layout.ExecuteTemplate(&buf, config.TemplateLayout, data); err != nil {
		return nil, err
	}

	if b.minify == nil {
		return buf.Bytes(), nil
	}
	return b.minify.Bytes(config.CTypeHTML, buf.Bytes())
}

// Build renders and writes pages concurrently. The first failing page cancels the rest.
func (b *Builder) Build(ctx context.Context, pages []Page) (Report, error) {
	report := Report{BuildID: uuid.NewString(), Pages: len(pages)}
	log := siteLogger.With().Str("build_id", report.BuildID).Logger()
	start := time.Now()

	log.Info().Int("pages", len(pages)).Int("workers", b.workers).Str("out", b.outDir).Msg("Build started")

	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			body, err := b.RenderPage(gctx, page)
			if err != nil {
				return fmt.Errorf(config.ErrBuildPageFmt, page.Path, page.Locale, err)
			}

			n, err := b.write(page, body)
			if err != nil {
				return fmt.Errorf(config.ErrBuildPageFmt, page.Path, page.Locale, err)
			}
			written.Add(n)

			log.Debug().Str("path", page.Path).Str("locale", page.Locale).Int64("bytes", n).Msg("Page written")
			return nil
		})
	}

	err := g.Wait()
	report.Bytes = written.Load()
	report.Duration = time.Since(start)

	if err != nil {
		log.Error().Err(err).Msg("Build failed")
		return report, err
	}

	log.Info().Int64("bytes", report.Bytes).Dur("duration", report.Duration).Msg("Build finished")
	return report, nil
}

// OutputPath maps a page to <out>/<locale>/<path>/index.html.
func (b *Builder) OutputPath(page Page) string {
	clean := path.Clean("/" + page.Path)
	return filepath.Join(b.outDir, page.Locale, filepath.FromSlash(strings.TrimPrefix(clean, "/")), config.IndexFile)
}

func (b *Builder) write(page Page, body []byte) (int64, error) {
	target := b.OutputPath(page)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return 0, err
	}

	total := int64(len(body))
	for _, codec := range b.codecs {
		packed, err := codec.Compress(body)
		if err != nil {
			return total, err
		}
		if err := os.WriteFile(target+codec.Ext(), packed, 0o644); err != nil {
			return total, err
		}
		total += int64(len(packed))
	}
	return total, nil
}
