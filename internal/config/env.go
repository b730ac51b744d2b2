package config

const (
	EnvConfigPath        = "LINKPANEL_CONFIG"
	EnvLogLevel          = "LINKPANEL_LOG_LEVEL"
	EnvS3AccessKeyID     = "LINKPANEL_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "LINKPANEL_S3_SECRET_ACCESS_KEY"

	DefaultConfigPath = "config.yaml"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendS3     = "s3"
)
