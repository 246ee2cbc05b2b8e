package parquet

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the fatal error kinds a read can fail with.
// Use errors.Is to test for these; wrapped errors carry additional context
// via fmt.Errorf("...: %w", ...).
var (
	// ErrNotParquet is returned when the byte source is too short or its
	// leading/trailing magic bytes are not "PAR1".
	ErrNotParquet = errors.New("parquet: not a parquet file")

	// ErrUnsupportedVersion is returned when the footer declares a format
	// version outside {1, 2}.
	ErrUnsupportedVersion = errors.New("parquet: unsupported format version")

	// ErrUnsupportedEncoding is returned when a data page's value encoding
	// is not PLAIN, PLAIN_DICTIONARY or RLE_DICTIONARY, when a dictionary
	// page is not PLAIN-encoded, or when a leaf's physical type is not
	// recognised. Level streams are always decoded as the RLE/bit-packed
	// hybrid; their declared level encoding is not checked.
	ErrUnsupportedEncoding = errors.New("parquet: unsupported encoding")

	// ErrUnsupportedCodec is returned when a column chunk's compression
	// codec is not one this build was linked with.
	ErrUnsupportedCodec = errors.New("parquet: unsupported compression codec")

	// ErrCorruptMetadata is returned when the Thrift-encoded footer cannot
	// be decoded, or its counts are internally inconsistent.
	ErrCorruptMetadata = errors.New("parquet: corrupt file metadata")

	// ErrCorruptData is returned when a page's payload cannot be decoded
	// consistently with its declared sizes, bit widths or value counts.
	ErrCorruptData = errors.New("parquet: corrupt page data")

	// ErrInvalidArgument is returned when caller-supplied options are out
	// of range (negative offset, count < -1).
	ErrInvalidArgument = errors.New("parquet: invalid argument")
)

// ColumnReadError wraps a failure encountered while decoding a specific
// column during row-major iteration. The path identifies the column's
// dotted schema path; Cause is the underlying error (typically one of the
// sentinels above).
type ColumnReadError struct {
	Path  string
	Cause error
}

func (e *ColumnReadError) Error() string {
	return fmt.Sprintf("parquet: column %q: %s", e.Path, e.Cause)
}

func (e *ColumnReadError) Unwrap() error { return e.Cause }
