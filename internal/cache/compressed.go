package cache

import (
	"context"
	"fmt"

	"github.com/debemdeboas/linkpanel/internal/util/compression"
)

// CompressedStore compresses values on the way into inner and restores them on the way out,
// so callers still see the exact bytes they stored.
type CompressedStore struct {
	inner Store
	codec compression.Compressor
}

func NewCompressedStore(inner Store, codec compression.Compressor) *CompressedStore {
	return &CompressedStore{inner: inner, codec: codec}
}

func (c *CompressedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	packed, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	value, err := c.codec.Decompress(packed)
	if err != nil {
		return nil, false, fmt.Errorf("%s decompress %s: %w", c.codec.Name(), key, err)
	}
	return value, true, nil
}

func (c *CompressedStore) Set(ctx context.Context, key string, value []byte) error {
	packed, err := c.codec.Compress(value)
	if err != nil {
		return fmt.Errorf("%s compress %s: %w", c.codec.Name(), key, err)
	}
	return c.inner.Set(ctx, key, packed)
}

func (c *CompressedStore) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}
