package zstd

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/cobalt-data/parquet-go/compress"
	"github.com/cobalt-data/parquet-go/format"
)

type Codec struct {
}

func (c *Codec) String() string { return "ZSTD" }

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Zstd
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	z, err := zstd.NewReader(nonNilReader(r), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return reader{z}, nil
}

type reader struct{ *zstd.Decoder }

func (r reader) Close() error             { r.Decoder.Close(); return nil }
func (r reader) Reset(rr io.Reader) error { return r.Decoder.Reset(nonNilReader(rr)) }

func nonNilReader(r io.Reader) io.Reader {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	return r
}
