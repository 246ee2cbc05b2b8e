package compress_test

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/andybalholm/brotli"
	kgzip "github.com/klauspost/compress/gzip"
	ksnappy "github.com/klauspost/compress/snappy"
	kzstd "github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/cobalt-data/parquet-go/compress"
	cbrotli "github.com/cobalt-data/parquet-go/compress/brotli"
	cgzip "github.com/cobalt-data/parquet-go/compress/gzip"
	clz4 "github.com/cobalt-data/parquet-go/compress/lz4"
	csnappy "github.com/cobalt-data/parquet-go/compress/snappy"
	"github.com/cobalt-data/parquet-go/compress/uncompressed"
	czstd "github.com/cobalt-data/parquet-go/compress/zstd"
)

// TestCompressionCodec checks that each codec's reader correctly decodes data
// compressed by the third-party library it wraps, without going through any
// compressing writer of its own (this reader-only module never produces
// compressed pages).
func TestCompressionCodec(t *testing.T) {
	tests := []struct {
		scenario string
		codec    compress.Codec
		compress func([]byte) ([]byte, error)
	}{
		{
			scenario: "uncompressed",
			codec:    new(uncompressed.Codec),
			compress: func(data []byte) ([]byte, error) {
				return data, nil
			},
		},

		{
			scenario: "snappy",
			codec:    new(csnappy.Codec),
			compress: func(data []byte) ([]byte, error) {
				return ksnappy.Encode(nil, data), nil
			},
		},

		{
			scenario: "gzip",
			codec:    new(cgzip.Codec),
			compress: func(data []byte) ([]byte, error) {
				buf := new(bytes.Buffer)
				w := kgzip.NewWriter(buf)
				if _, err := w.Write(data); err != nil {
					return nil, err
				}
				if err := w.Close(); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			},
		},

		{
			scenario: "brotli",
			codec:    new(cbrotli.Codec),
			compress: func(data []byte) ([]byte, error) {
				buf := new(bytes.Buffer)
				w := brotli.NewWriterLevel(buf, 5)
				if _, err := w.Write(data); err != nil {
					return nil, err
				}
				if err := w.Close(); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			},
		},

		{
			scenario: "zstd",
			codec:    new(czstd.Codec),
			compress: func(data []byte) ([]byte, error) {
				buf := new(bytes.Buffer)
				w, err := kzstd.NewWriter(buf)
				if err != nil {
					return nil, err
				}
				if _, err := w.Write(data); err != nil {
					return nil, err
				}
				if err := w.Close(); err != nil {
					return nil, err
				}
				return buf.Bytes(), nil
			},
		},

		{
			scenario: "lz4",
			codec:    new(clz4.Codec),
			compress: func(data []byte) ([]byte, error) {
				zbuf := make([]byte, lz4.CompressBlockBound(len(data)))
				var c lz4.CompressorHC
				n, err := c.CompressBlock(data, zbuf)
				if err != nil {
					return nil, err
				}
				return zbuf[:n], nil
			},
		},
	}

	random := bytes.Repeat([]byte("1234567890qwertyuiopasdfghjklzxcvbnm"), 1000)
	output := new(bytes.Buffer)

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			r, err := test.codec.NewReader(nil)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()

			for i := 0; i < 10; i++ {
				output.Reset()

				compressed, err := test.compress(random)
				if err != nil {
					t.Fatal(err)
				}

				if err := r.Reset(bytes.NewReader(compressed)); err != nil {
					t.Fatal(err)
				}
				if _, err := io.Copy(output, iotest.OneByteReader(r)); err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(random, output.Bytes()) {
					t.Errorf("content mismatch after compressing and decompressing:\n%q\n%q", random, output.Bytes())
				}
			}

			if err := r.Reset(nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}
