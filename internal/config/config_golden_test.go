package config

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// TestConfigDefaultsGoldenFile tests that our defaults match the golden file
func TestConfigDefaultsGoldenFile(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := &Config{}
	ApplyDefaults(testConfig)

	if testConfig.Version != goldenConfig.Version {
		t.Errorf("Version mismatch: got %q, want %q", testConfig.Version, goldenConfig.Version)
	}
	if testConfig.Site.Name != goldenConfig.Site.Name {
		t.Errorf("Site.Name mismatch: got %q, want %q", testConfig.Site.Name, goldenConfig.Site.Name)
	}
	if testConfig.Server.Port != goldenConfig.Server.Port {
		t.Errorf("Server.Port mismatch: got %q, want %q", testConfig.Server.Port, goldenConfig.Server.Port)
	}
	if testConfig.Cache.Backend != goldenConfig.Cache.Backend {
		t.Errorf("Cache.Backend mismatch: got %q, want %q", testConfig.Cache.Backend, goldenConfig.Cache.Backend)
	}
	if testConfig.Cache.SingleFlight != goldenConfig.Cache.SingleFlight {
		t.Errorf("Cache.SingleFlight mismatch: got %v, want %v", testConfig.Cache.SingleFlight, goldenConfig.Cache.SingleFlight)
	}
	if testConfig.Build.Workers != goldenConfig.Build.Workers {
		t.Errorf("Build.Workers mismatch: got %d, want %d", testConfig.Build.Workers, goldenConfig.Build.Workers)
	}
	if testConfig.I18n.DefaultLocale != goldenConfig.I18n.DefaultLocale {
		t.Errorf("I18n.DefaultLocale mismatch: got %q, want %q", testConfig.I18n.DefaultLocale, goldenConfig.I18n.DefaultLocale)
	}
}

// TestConfigConstantsMatch tests that generated constants match actual defaults
func TestConfigConstantsMatch(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Version != DefaultVersion {
		t.Errorf("Version constant mismatch: got %q, want %q", cfg.Version, DefaultVersion)
	}
	if cfg.Site.Name != DefaultSiteName {
		t.Errorf("Site.Name constant mismatch: got %q, want %q", cfg.Site.Name, DefaultSiteName)
	}
	if cfg.Server.Host != DefaultServerHost {
		t.Errorf("Server.Host constant mismatch: got %q, want %q", cfg.Server.Host, DefaultServerHost)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port constant mismatch: got %q, want %q", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.I18n.DefaultLocale != DefaultLocale {
		t.Errorf("I18n.DefaultLocale constant mismatch: got %q, want %q", cfg.I18n.DefaultLocale, DefaultLocale)
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("Cache.Backend constant mismatch: got %q, want %q", cfg.Cache.Backend, DefaultCacheBackend)
	}
	if cfg.Cache.SingleFlight != DefaultCacheSingleFlight {
		t.Errorf("Cache.SingleFlight constant mismatch: got %v, want %v", cfg.Cache.SingleFlight, DefaultCacheSingleFlight)
	}
	if cfg.Build.OutputDir != DefaultBuildOutputDir {
		t.Errorf("Build.OutputDir constant mismatch: got %q, want %q", cfg.Build.OutputDir, DefaultBuildOutputDir)
	}
	if cfg.Build.Workers != DefaultBuildWorkers {
		t.Errorf("Build.Workers constant mismatch: got %d, want %d", cfg.Build.Workers, DefaultBuildWorkers)
	}
	if cfg.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Logging.Level constant mismatch: got %q, want %q", cfg.Logging.Level, DefaultLoggingLevel)
	}
}

// TestInvalidConfigValidation tests validation using generated invalid configs
func TestInvalidConfigValidation(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	testCases := []struct {
		name        string
		filename    string
		expectError bool
		errorText   string
	}{
		{
			name:        "Invalid version",
			filename:    "testdata/invalid_version.yaml",
			expectError: true,
			errorText:   "unsupported configuration version",
		},
		{
			name:        "Unknown cache backend",
			filename:    "testdata/unknown_backend.yaml",
			expectError: true,
			errorText:   "unknown cache backend",
		},
		{
			name:        "Valid defaults file",
			filename:    "testdata/defaults.yaml",
			expectError: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			originalAppConfig := AppConfig
			defer func() { AppConfig = originalAppConfig }()

			err := LoadConfig(tc.filename)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tc.expectError && err != nil && tc.errorText != "" {
				if !strings.Contains(err.Error(), tc.errorText) {
					t.Errorf("Expected error to contain %q, got %q", tc.errorText, err.Error())
				}
			}
		})
	}
}
