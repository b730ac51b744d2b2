// Package i18n loads locale string tables and hands out per-page translation helpers.
package i18n

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var i18nLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	i18nLogger = l
}

//go:embed languages/*
var languages embed.FS

// Bundle holds flattened messages per locale, e.g. "widget.links" -> "Links".
type Bundle struct {
	mu            sync.RWMutex
	defaultLocale string
	tables        map[string]map[string]string
}

func NewBundle(defaultLocale string) *Bundle {
	return &Bundle{
		defaultLocale: defaultLocale,
		tables:        make(map[string]map[string]string),
	}
}

// Load builds a bundle from the embedded languages, then overlays files found in dir.
func Load(defaultLocale, dir string) (*Bundle, error) {
	b := NewBundle(defaultLocale)
	if err := b.LoadFS(languages, "languages"); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := b.LoadFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// LoadFS reads every *.yml, *.yaml and *.toml file in dir; the file name is the locale.
func (b *Bundle) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := path.Ext(name)
		locale := strings.TrimSuffix(name, ext)

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}

		raw := map[string]any{}
		switch ext {
		case ".yml", ".yaml":
			err = yaml.Unmarshal(data, &raw)
		case ".toml":
			_, err = toml.Decode(string(data), &raw)
		default:
			i18nLogger.Debug().Str("file", name).Msg("Skipping non-locale file")
			continue
		}
		if err != nil {
			return fmt.Errorf("i18n: decode %s: %w", name, err)
		}

		messages := make(map[string]string)
		flatten("", raw, messages)
		b.AddMessages(locale, messages)

		i18nLogger.Debug().Str("locale", locale).Int("messages", len(messages)).Msg("Locale loaded")
	}
	return nil
}

// AddMessages merges messages into locale, overriding existing keys.
func (b *Bundle) AddMessages(locale string, messages map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	table, ok := b.tables[locale]
	if !ok {
		table = make(map[string]string, len(messages))
		b.tables[locale] = table
	}
	for k, v := range messages {
		table[k] = v
	}
}

func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	locales := make([]string, 0, len(b.tables))
	for locale := range b.tables {
		locales = append(locales, locale)
	}
	slices.Sort(locales)
	return locales
}

func (b *Bundle) HasLocale(locale string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.tables[locale]
	return ok
}

func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Match negotiates an Accept-Language style list, or a single tag, against
// the loaded locales. q-values order the candidates and regional variants
// match their base language, so "es-MX" selects "es". It reports false, with
// the default locale, when nothing matches.
func (b *Bundle) Match(accept string) (string, bool) {
	desired := parseAccept(accept)
	if len(desired) == 0 {
		return b.defaultLocale, false
	}

	locales := b.Locales()
	if i := slices.Index(locales, b.defaultLocale); i > 0 {
		locales[0], locales[i] = locales[i], locales[0]
	}
	names := make([]string, 0, len(locales))
	supported := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err != nil {
			continue
		}
		names = append(names, locale)
		supported = append(supported, tag)
	}
	if len(supported) == 0 {
		return b.defaultLocale, false
	}

	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return b.defaultLocale, false
	}
	return names[idx], true
}

// parseAccept parses each entry on its own so one unknown or malformed
// entry does not discard the rest of the header.
func parseAccept(accept string) []language.Tag {
	type weighted struct {
		tag language.Tag
		q   float32
	}
	var entries []weighted
	for _, part := range strings.Split(accept, ",") {
		tags, qs, err := language.ParseAcceptLanguage(part)
		if err != nil {
			i18nLogger.Debug().Err(err).Str("entry", part).Msg("Skipping Accept-Language entry")
			continue
		}
		for i, tag := range tags {
			entries = append(entries, weighted{tag: tag, q: qs[i]})
		}
	}
	slices.SortStableFunc(entries, func(a, b weighted) int {
		return cmp.Compare(b.q, a.q)
	})

	tags := make([]language.Tag, len(entries))
	for i, e := range entries {
		tags[i] = e.tag
	}
	return tags
}

// Helper returns the translator for locale. Lookups fall back to the base
// language, then to the default locale, then to the key itself.
func (b *Bundle) Helper(locale string) *Helper {
	chain := []string{locale}
	if base, _, found := strings.Cut(locale, "-"); found {
		chain = append(chain, base)
	}
	if b.defaultLocale != "" && !slices.Contains(chain, b.defaultLocale) {
		chain = append(chain, b.defaultLocale)
	}
	return &Helper{bundle: b, locale: locale, chain: chain}
}

func (b *Bundle) lookup(locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.tables[locale][key]
	return v, ok
}

type Helper struct {
	bundle *Bundle
	locale string
	chain  []string
}

func (h *Helper) Locale() string {
	return h.locale
}

func (h *Helper) Translate(key string) string {
	for _, locale := range h.chain {
		if v, ok := h.bundle.lookup(locale, key); ok {
			return v
		}
	}
	i18nLogger.Debug().Str("locale", h.locale).Str("key", key).Msg("Missing translation")
	return key
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
