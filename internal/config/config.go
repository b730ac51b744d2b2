package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/linkpanel/internal/model"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

const SupportedVersion = "1"

var ErrUnsupportedVersion = errors.New("unsupported configuration version")

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	I18n    I18nConfig    `yaml:"i18n"`
	Cache   CacheConfig   `yaml:"cache"`
	Build   BuildConfig   `yaml:"build"`
	Widgets WidgetsConfig `yaml:"widgets"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Link Panel"`
	Description string `yaml:"description" default:"Pages with a cached external links panel"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
	// LiveReload watches the config file and pushes reload events to open pages.
	LiveReload bool `yaml:"live_reload" default:"true"`
}

type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale" default:"en"`
	Locales       []string `yaml:"locales" default:"en"`
	// Dir holds extra locale files that override the embedded ones.
	Dir string `yaml:"dir"`
}

type CacheConfig struct {
	Backend      string        `yaml:"backend" default:"memory"`
	Compression  string        `yaml:"compression" default:"none"`
	SingleFlight bool          `yaml:"single_flight" default:"true"`
	// MaxEntries bounds the memory backend with LRU eviction. Zero is unbounded.
	MaxEntries   int           `yaml:"max_entries"`
	SQLite       SQLiteConfig  `yaml:"sqlite"`
	S3           S3CacheConfig `yaml:"s3"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" default:"./fragments.db"`
}

type S3CacheConfig struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix" default:"fragments/"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region" default:"auto"`

	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type BuildConfig struct {
	OutputDir   string   `yaml:"output_dir" default:"public"`
	Workers     int      `yaml:"workers" default:"4"`
	Minify      bool     `yaml:"minify" default:"true"`
	Precompress []string `yaml:"precompress"`
	Pages       []string `yaml:"pages" default:"/"`
}

type WidgetsConfig struct {
	Links LinksWidgetConfig `yaml:"links"`
}

type LinksWidgetConfig struct {
	// TagText replaces the derived hostname on every tag when set.
	TagText string            `yaml:"tag_text"`
	Links   model.LinksConfig `yaml:"links"`
}

func (c *Config) Widget() model.WidgetConfig {
	return model.WidgetConfig{Links: c.Widgets.Links.Links}
}

// ApplyEnv fills secrets that never live in the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvS3AccessKeyID); v != "" {
		c.Cache.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3SecretAccessKey); v != "" {
		c.Cache.S3.SecretAccessKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, c.Version)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendSQLite:
	case CacheBackendS3:
		if c.Cache.S3.Bucket == "" {
			return errors.New("cache.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}

	if c.I18n.DefaultLocale == "" {
		return errors.New("i18n.default_locale is required")
	}
	if !slices.Contains(c.I18n.Locales, c.I18n.DefaultLocale) {
		c.I18n.Locales = append([]string{c.I18n.DefaultLocale}, c.I18n.Locales...)
	}

	return nil
}

var AppConfig *Config

func LoadConfig(path string) error {
	config, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = config
	return nil
}

// Load reads path on top of the defaults without touching AppConfig.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	configLogger.Debug().
		Str("path", path).
		Int("links", config.Widgets.Links.Links.Len()).
		Msg("Config loaded")
	return config, nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
