package model

// Translator resolves a localisation key for the page being built.
type Translator interface {
	Translate(key string) string
}

type WidgetConfig struct {
	Links LinksConfig `yaml:"links"`
}

// PageData is the per-page context handed to widgets by the build pipeline.
type PageData struct {
	SiteName string
	PageURL  string
	Locale   string

	Helper Translator
	Widget WidgetConfig
}

func NewPageData(siteName, pageURL, locale string, helper Translator, widget WidgetConfig) *PageData {
	return &PageData{
		SiteName: siteName,
		PageURL:  pageURL,
		Locale:   locale,
		Helper:   helper,
		Widget:   widget,
	}
}
