// Package links renders the external links sidebar widget.
package links

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"net/url"
	"slices"

	"github.com/debemdeboas/linkpanel/internal/cache"
	"github.com/debemdeboas/linkpanel/internal/model"
	"github.com/debemdeboas/linkpanel/internal/render"
)

const (
	Namespace = "widget.links"
	TitleKey  = "widget.links"
)

var ErrNoHelper = errors.New("links widget: page has no translation helper")

//go:embed links.html
var panelSource string

var panel = template.Must(template.New("links").Parse(panelSource))

// Props is everything that decides the widget markup, and therefore its cache key.
type Props struct {
	Title   string            `json:"title"`
	Links   model.LinksConfig `json:"links"`
	TagText string            `json:"tag_text,omitempty"`
}

type item struct {
	Label string
	URL   string
	Tag   string
}

// Render is the uncached renderer. Entries keep their configured order.
func Render(props Props) (template.HTML, error) {
	items := make([]item, 0, len(props.Links))
	for _, link := range props.Links {
		items = append(items, item{
			Label: link.Label,
			URL:   link.Entry.URL,
			Tag:   Tag(link.Entry, props.TagText),
		})
	}

	var buf bytes.Buffer
	err := panel.Execute(&buf, struct {
		Title string
		Items []item
	}{
		Title: props.Title,
		Items: items,
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Tag is the secondary label shown next to a link, or "" for none.
// fixed replaces the hostname when set.
func Tag(entry model.LinkEntry, fixed string) string {
	if entry.Kind == model.LinkDetailed && entry.HideHostname {
		return ""
	}
	host, ok := Hostname(entry.URL)
	if !ok {
		return ""
	}
	if fixed != "" {
		return fixed
	}
	return host
}

// Hostname extracts the host of raw. Relative paths and strings that are not
// URLs report false.
func Hostname(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := u.Hostname()
	return host, host != ""
}

// NewMapper reduces a page to widget props. Pages without links map to nil.
func NewMapper(tagText string) render.PropsMapper[*model.PageData, Props] {
	return func(pd *model.PageData) (*Props, error) {
		if pd == nil {
			return nil, errors.New("links widget: nil page data")
		}
		if pd.Widget.Links.Len() == 0 {
			return nil, nil
		}
		if pd.Helper == nil {
			return nil, ErrNoHelper
		}
		return &Props{
			Title:   pd.Helper.Translate(TitleKey),
			Links:   slices.Clone(pd.Widget.Links),
			TagText: tagText,
		}, nil
	}
}

type Widget = render.Cached[*model.PageData, Props]

// New returns the cached links widget backed by store.
func New(store cache.Store, tagText string, opts ...render.Option) *Widget {
	return render.Wrap(Render, Namespace, NewMapper(tagText), store, opts...)
}
