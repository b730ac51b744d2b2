// Mirrors of the default tags on Config, kept in sync by TestConfigConstantsMatch.

package config

const (
	DefaultVersion           = "1"
	DefaultSiteName          = "Link Panel"
	DefaultServerHost        = "0.0.0.0"
	DefaultServerPort        = "12600"
	DefaultLocale            = "en"
	DefaultCacheBackend      = "memory"
	DefaultCacheSingleFlight = true
	DefaultBuildOutputDir    = "public"
	DefaultBuildWorkers      = 4
	DefaultLoggingLevel      = "info"
)
