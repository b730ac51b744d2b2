package config

const (
	// Cache errors
	ErrOpenCacheFmt = "failed to open cache store: %w"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"

	// Build errors
	ErrBuildPageFmt   = "failed to build page %s (%s): %w"
	ErrLoadLocalesFmt = "failed to load locales: %w"

	ErrInternalServerError = "Internal server error"
)
