package parquet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cobalt-data/parquet-go/format"
	"github.com/cobalt-data/parquet-go/internal/thrift"
)

const magic = "PAR1"

// footerSizeMin is the size of the two four-byte magic markers alone; a
// source no larger than this cannot hold a footer and is rejected outright.
const footerSizeMin = 2 * len(magic)

// readFooter validates the magic header and footer of the byte source and
// decodes the Thrift-encoded FileMetaData trailer.
//
// https://github.com/apache/parquet-format#file-format
func readFooter(r io.ReaderAt, size int64) (*format.FileMetaData, error) {
	if size <= int64(footerSizeMin) {
		return nil, fmt.Errorf("%w: file size %d is too small to hold a footer", ErrNotParquet, size)
	}

	head := make([]byte, len(magic))
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("%w: reading leading magic: %s", ErrNotParquet, err)
	}
	if string(head) != magic {
		return nil, fmt.Errorf("%w: leading bytes are %q, not %q", ErrNotParquet, head, magic)
	}

	tail := make([]byte, 8)
	if _, err := r.ReadAt(tail, size-8); err != nil {
		return nil, fmt.Errorf("%w: reading trailing magic: %s", ErrNotParquet, err)
	}
	if string(tail[4:]) != magic {
		return nil, fmt.Errorf("%w: trailing bytes are %q, not %q", ErrNotParquet, tail[4:], magic)
	}

	footerLength := int64(binary.LittleEndian.Uint32(tail[:4]))
	footerOffset := size - 8 - footerLength
	if footerLength < 0 || footerOffset < int64(len(magic)) {
		return nil, fmt.Errorf("%w: footer length %d is inconsistent with file size %d", ErrCorruptMetadata, footerLength, size)
	}

	footerBytes := make([]byte, footerLength)
	if _, err := r.ReadAt(footerBytes, footerOffset); err != nil {
		return nil, fmt.Errorf("%w: reading footer bytes: %s", ErrCorruptMetadata, err)
	}

	meta := &format.FileMetaData{}
	if err := meta.Decode(thrift.NewReader(bytes.NewReader(footerBytes))); err != nil {
		return nil, fmt.Errorf("%w: decoding footer thrift struct: %s", ErrCorruptMetadata, err)
	}

	if meta.Version != 1 && meta.Version != 2 {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, meta.Version)
	}

	var rowCount int64
	for i := range meta.RowGroups {
		rowCount += meta.RowGroups[i].NumRows
	}
	if rowCount != meta.NumRows {
		return nil, fmt.Errorf("%w: row groups sum to %d rows but metadata declares %d", ErrCorruptMetadata, rowCount, meta.NumRows)
	}

	return meta, nil
}
