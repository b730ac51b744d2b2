package i18n

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := Load("en", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("All embedded locales are present", func(t *testing.T) {
		want := []string{"de", "en", "es", "fr", "pt-BR"}
		if got := b.Locales(); !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("Nested keys are flattened", func(t *testing.T) {
		tests := []struct {
			locale string
			want   string
		}{
			{"en", "Links"},
			{"es", "Enlaces"},
			{"fr", "Liens"},
			{"de", "Links"},
		}
		for _, tt := range tests {
			if got := b.Helper(tt.locale).Translate("widget.links"); got != tt.want {
				t.Errorf("%s: expected %q, got %q", tt.locale, tt.want, got)
			}
		}
	})

	t.Run("TOML locale", func(t *testing.T) {
		if got := b.Helper("de").Translate("common.visit"); got != "Besuchen" {
			t.Errorf("Expected 'Besuchen', got %q", got)
		}
	})
}

func TestLoadDirOverrides(t *testing.T) {
	b, err := Load("en", "testdata/locales")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := b.Helper("en").Translate("widget.links"); got != "External Links" {
		t.Errorf("Expected override 'External Links', got %q", got)
	}
	// Keys the override does not mention survive
	if got := b.Helper("en").Translate("common.visit"); got != "Visit" {
		t.Errorf("Expected 'Visit', got %q", got)
	}
	if got := b.Helper("ja").Translate("widget.links"); got != "リンク" {
		t.Errorf("Expected 'リンク', got %q", got)
	}
	if !b.HasLocale("ja") {
		t.Error("Expected ja to be loaded")
	}
}

func TestHelperFallback(t *testing.T) {
	b := NewBundle("en")
	b.AddMessages("en", map[string]string{"widget.links": "Links", "only.en": "English"})
	b.AddMessages("pt", map[string]string{"widget.links": "Ligações"})

	t.Run("Base language", func(t *testing.T) {
		h := b.Helper("pt-PT")
		if got := h.Translate("widget.links"); got != "Ligações" {
			t.Errorf("Expected base language value, got %q", got)
		}
		if h.Locale() != "pt-PT" {
			t.Errorf("Expected locale pt-PT, got %s", h.Locale())
		}
	})

	t.Run("Default locale", func(t *testing.T) {
		if got := b.Helper("pt-PT").Translate("only.en"); got != "English" {
			t.Errorf("Expected default locale value, got %q", got)
		}
	})

	t.Run("Unknown key returns the key", func(t *testing.T) {
		if got := b.Helper("en").Translate("widget.unknown"); got != "widget.unknown" {
			t.Errorf("Expected key echo, got %q", got)
		}
	})

	t.Run("Unknown locale uses default", func(t *testing.T) {
		if got := b.Helper("xx").Translate("widget.links"); got != "Links" {
			t.Errorf("Expected default locale value, got %q", got)
		}
	})
}

func TestLoadFSErrors(t *testing.T) {
	t.Run("Malformed YAML", func(t *testing.T) {
		fsys := fstest.MapFS{"bad.yml": {Data: []byte("widget: [unclosed")}}
		if err := NewBundle("en").LoadFS(fsys, "."); err == nil {
			t.Error("Expected decode error")
		}
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		fsys := fstest.MapFS{"bad.toml": {Data: []byte("[widget\nlinks = ")}}
		if err := NewBundle("en").LoadFS(fsys, "."); err == nil {
			t.Error("Expected decode error")
		}
	})

	t.Run("Missing directory", func(t *testing.T) {
		if _, err := Load("en", "testdata/does-not-exist"); err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("Non-string leaves are stringified", func(t *testing.T) {
		fsys := fstest.MapFS{"en.yml": {Data: []byte("limits:\n  links: 10\n")}}
		b := NewBundle("en")
		if err := b.LoadFS(fsys, "."); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := b.Helper("en").Translate("limits.links"); got != "10" {
			t.Errorf("Expected '10', got %q", got)
		}
	})
}

func TestMatch(t *testing.T) {
	b := NewBundle("en")
	for _, locale := range []string{"de", "en", "es", "fr", "pt-BR"} {
		b.AddMessages(locale, map[string]string{"widget.links": locale})
	}

	tests := []struct {
		name   string
		accept string
		want   string
		ok     bool
	}{
		{"Exact tag", "fr", "fr", true},
		{"Highest q-value wins", "fr;q=0.1, es;q=0.9", "es", true},
		{"Order breaks q-value ties", "de, fr", "de", true},
		{"Regional variant matches base", "es-MX", "es", true},
		{"Base matches regional variant", "pt", "pt-BR", true},
		{"Case insensitive", "PT-br", "pt-BR", true},
		{"Unknown falls through to next", "xx, fr;q=0.8", "fr", true},
		{"Unknown language", "xx", "en", false},
		{"Empty header", "", "en", false},
		{"Malformed entry is skipped", "de;q=bogus, fr", "fr", true},
		{"Zero weight ranks last", "fr;q=0, de;q=0.5", "de", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Match(tt.accept)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.accept, got, ok, tt.want, tt.ok)
			}
		})
	}

	t.Run("Empty bundle", func(t *testing.T) {
		if got, ok := NewBundle("en").Match("fr"); got != "en" || ok {
			t.Errorf("Expected default without match, got %q, %v", got, ok)
		}
	})
}
