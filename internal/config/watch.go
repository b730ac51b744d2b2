package config

import (
	"context"
	"os"
	"time"

	"github.com/debemdeboas/linkpanel/internal/util"
)

// Watch polls path and hands every new, valid revision to onChange.
// Unreadable or invalid revisions are logged and skipped. Returns when ctx is done.
func Watch(ctx context.Context, path string, interval time.Duration, onChange func(*Config)) {
	last := fileHash(path)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		hash := fileHash(path)
		if hash == "" || hash == last {
			continue
		}
		last = hash

		cfg, err := Load(path)
		if err != nil {
			configLogger.Error().Err(err).Str("path", path).Msg("Error reloading config")
			continue
		}
		cfg.ApplyEnv()

		configLogger.Info().Str("path", path).Str("hash", hash[:12]).Msg("Reloading config")
		onChange(cfg)
	}
}

func fileHash(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return util.ContentHash(data)
}
