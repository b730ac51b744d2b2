// Package compression provides the codecs used for cached fragments and precompressed pages.
package compression

import "fmt"

type Compressor interface {
	Name() string
	// Ext is the file suffix used for precompressed siblings.
	Ext() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ByName returns the codec for name. An empty name means no compression.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "gzip":
		return GzipCompressor{}, nil
	case "zstd":
		return ZstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
