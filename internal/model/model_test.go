package model

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLinkEntryConstructors(t *testing.T) {
	t.Run("SimpleLink", func(t *testing.T) {
		e := SimpleLink("https://example.com")
		if e.Kind != LinkSimple {
			t.Errorf("Expected LinkSimple, got %v", e.Kind)
		}
		if e.URL != "https://example.com" {
			t.Errorf("Expected URL 'https://example.com', got %s", e.URL)
		}
		if e.HideHostname {
			t.Error("Expected HideHostname to be false")
		}
	})

	t.Run("DetailedLink", func(t *testing.T) {
		e := DetailedLink("https://example.com/x", true)
		if e.Kind != LinkDetailed {
			t.Errorf("Expected LinkDetailed, got %v", e.Kind)
		}
		if !e.HideHostname {
			t.Error("Expected HideHostname to be true")
		}
	})
}

func TestLinksConfigUnmarshalYAML(t *testing.T) {
	t.Run("Preserves declaration order", func(t *testing.T) {
		src := `
Zeta: https://zeta.example.com
Alpha: https://alpha.example.com
Mid: https://mid.example.com
`
		var links LinksConfig
		if err := yaml.Unmarshal([]byte(src), &links); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		want := []string{"Zeta", "Alpha", "Mid"}
		if links.Len() != len(want) {
			t.Fatalf("Expected %d links, got %d", len(want), links.Len())
		}
		for i, label := range want {
			if links[i].Label != label {
				t.Errorf("Expected label[%d] %q, got %q", i, label, links[i].Label)
			}
		}
	})

	t.Run("Mixed simple and detailed entries", func(t *testing.T) {
		src := `
Docs: https://example.com/docs
Source:
  link: https://example.com/src
  hide_hostname: true
`
		var links LinksConfig
		if err := yaml.Unmarshal([]byte(src), &links); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		docs, ok := links.Get("Docs")
		if !ok {
			t.Fatal("Expected Docs entry")
		}
		if docs != SimpleLink("https://example.com/docs") {
			t.Errorf("Unexpected Docs entry: %+v", docs)
		}

		src2, ok := links.Get("Source")
		if !ok {
			t.Fatal("Expected Source entry")
		}
		if src2 != DetailedLink("https://example.com/src", true) {
			t.Errorf("Unexpected Source entry: %+v", src2)
		}
	})

	t.Run("Duplicate labels are rejected", func(t *testing.T) {
		src := "A: https://a.example.com\nA: https://b.example.com\n"
		var links LinksConfig
		err := yaml.Unmarshal([]byte(src), &links)
		if err == nil {
			t.Fatal("Expected error for duplicate label")
		}
	})

	t.Run("Detailed entry without link is rejected", func(t *testing.T) {
		src := "A:\n  hide_hostname: true\n"
		var links LinksConfig
		err := yaml.Unmarshal([]byte(src), &links)
		if !errors.Is(err, ErrEmptyLink) {
			t.Errorf("Expected ErrEmptyLink, got %v", err)
		}
	})

	t.Run("Null entry is rejected", func(t *testing.T) {
		for _, src := range []string{"Docs: ~\n", "Docs: null\n", "Docs:\n", "Docs: !!null ''\n"} {
			var links LinksConfig
			err := yaml.Unmarshal([]byte(src), &links)
			if !errors.Is(err, ErrEmptyLink) {
				t.Errorf("Expected ErrEmptyLink for %q, got %v", src, err)
			}
		}
	})

	t.Run("Null entry decoded directly is rejected", func(t *testing.T) {
		var entry LinkEntry
		err := entry.UnmarshalYAML(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~", Line: 3})
		if !errors.Is(err, ErrEmptyLink) {
			t.Errorf("Expected ErrEmptyLink, got %v", err)
		}
	})

	t.Run("Quoted tilde is a plain string", func(t *testing.T) {
		var links LinksConfig
		if err := yaml.Unmarshal([]byte("Home: \"~\"\n"), &links); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if e, _ := links.Get("Home"); e.URL != "~" {
			t.Errorf("Expected URL ~, got %q", e.URL)
		}
	})

	t.Run("Sequence entry is rejected", func(t *testing.T) {
		src := "A:\n  - https://a.example.com\n"
		var links LinksConfig
		if err := yaml.Unmarshal([]byte(src), &links); err == nil {
			t.Error("Expected error for sequence entry")
		}
	})

	t.Run("Links must be a mapping", func(t *testing.T) {
		var links LinksConfig
		if err := yaml.Unmarshal([]byte("- https://a.example.com\n"), &links); err == nil {
			t.Error("Expected error for non-mapping links")
		}
	})

	t.Run("Empty mapping yields no links", func(t *testing.T) {
		var w WidgetConfig
		if err := yaml.Unmarshal([]byte("links: {}\n"), &w); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if w.Links.Len() != 0 {
			t.Errorf("Expected 0 links, got %d", w.Links.Len())
		}
	})
}

func TestLinksConfigMarshalYAML(t *testing.T) {
	links := LinksConfig{
		{Label: "Second", Entry: SimpleLink("https://second.example.com")},
		{Label: "First", Entry: DetailedLink("https://first.example.com", true)},
	}

	out, err := yaml.Marshal(WidgetConfig{Links: links})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := string(out)
	if strings.Index(text, "Second") > strings.Index(text, "First") {
		t.Errorf("Expected declaration order to be kept, got:\n%s", text)
	}
	if !strings.Contains(text, "hide_hostname: true") {
		t.Errorf("Expected detailed entry to be written as a mapping, got:\n%s", text)
	}

	var back WidgetConfig
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unexpected error decoding marshalled links: %v", err)
	}
	if back.Links.Len() != 2 || back.Links[1].Entry != links[1].Entry {
		t.Errorf("Expected links to survive a round trip, got %+v", back.Links)
	}
}

type staticTranslator map[string]string

func (s staticTranslator) Translate(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

func TestNewPageData(t *testing.T) {
	helper := staticTranslator{"widget.links": "Links"}
	widget := WidgetConfig{Links: LinksConfig{{Label: "Docs", Entry: SimpleLink("https://example.com/docs")}}}

	pd := NewPageData("Site", "/about/", "en", helper, widget)

	if pd.SiteName != "Site" {
		t.Errorf("Expected SiteName 'Site', got %s", pd.SiteName)
	}
	if pd.PageURL != "/about/" {
		t.Errorf("Expected PageURL '/about/', got %s", pd.PageURL)
	}
	if pd.Locale != "en" {
		t.Errorf("Expected Locale 'en', got %s", pd.Locale)
	}
	if pd.Helper.Translate("widget.links") != "Links" {
		t.Error("Expected helper to be wired through")
	}
	if pd.Widget.Links.Len() != 1 {
		t.Errorf("Expected 1 link, got %d", pd.Widget.Links.Len())
	}
}
