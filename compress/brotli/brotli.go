// Package brotli implements the BROTLI parquet compression codec.
package brotli

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/cobalt-data/parquet-go/compress"
	"github.com/cobalt-data/parquet-go/format"
)

type Codec struct {
}

func (c *Codec) String() string {
	return "BROTLI"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Brotli
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	return reader{brotli.NewReader(r)}, nil
}

type reader struct{ *brotli.Reader }

func (r reader) Close() error { return nil }
