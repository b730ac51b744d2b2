package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/debemdeboas/linkpanel/internal/config"
	"github.com/debemdeboas/linkpanel/internal/util/compression"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured store. The returned closer releases backend resources.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, io.Closer, error) {
	var (
		store  Store
		closer io.Closer = nopCloser{}
	)

	switch cfg.Backend {
	case config.CacheBackendMemory, "":
		if cfg.MaxEntries > 0 {
			s, err := NewLRUStore(cfg.MaxEntries)
			if err != nil {
				return nil, nil, fmt.Errorf(config.ErrOpenCacheFmt, err)
			}
			store = s
		} else {
			store = NewMemoryStore()
		}
	case config.CacheBackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf(config.ErrOpenCacheFmt, err)
		}
		store, closer = s, s
	case config.CacheBackendS3:
		s, err := NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf(config.ErrOpenCacheFmt, err)
		}
		store = s
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	codec, err := compression.ByName(cfg.Compression)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	if codec != nil {
		store = NewCompressedStore(store, codec)
	}

	cacheLogger.Info().
		Str("backend", cfg.Backend).
		Str("compression", cfg.Compression).
		Msg("Fragment store ready")
	return store, closer, nil
}
