// Package compress provides the generic APIs implemented by parquet compression
// codecs.
//
// https://github.com/apache/parquet-format/blob/master/Compression.md
package compress

import (
	"fmt"
	"io"

	"github.com/cobalt-data/parquet-go/format"
)

// The Codec interface represents parquet compression codecs implemented by the
// compress sub-packages.
//
// Codec instances must be safe to use concurrently from multiple goroutines.
type Codec interface {
	fmt.Stringer

	// Returns the code of the compression codec in the parquet format.
	CompressionCodec() format.CompressionCodec

	// NewReader constructs a decompressing reader reading from r. r may be
	// nil, in which case Reset must be called with a non-nil reader before
	// the first read.
	NewReader(r io.Reader) (Reader, error)
}

type Reader interface {
	io.ReadCloser
	Reset(io.Reader) error
}
