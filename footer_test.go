package parquet

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendI64Field(buf []byte, lastID *int16, id int16, v int64) []byte {
	buf = appendFieldHeader(buf, lastID, id, 0x6)
	return appendVarint(buf, uint64((v<<1)^(v>>63)))
}

func appendStringField(buf []byte, lastID *int16, id int16, s string) []byte {
	buf = appendFieldHeader(buf, lastID, id, 0x8)
	buf = appendVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendListHeader(buf []byte, size int, elemType byte) []byte {
	if size < 0xf {
		return append(buf, byte(size)<<4|elemType)
	}
	buf = append(buf, 0xf0|elemType)
	return appendVarint(buf, uint64(size))
}

// minimalSchemaElementBytes encodes one SchemaElement struct with only a
// name and numChildren=0 (a leafless placeholder, sufficient for exercising
// readFooter, which does not itself validate schema shape).
func minimalSchemaElementBytes(name string) []byte {
	var buf []byte
	var last int16
	buf = appendStringField(buf, &last, 4, name)
	buf = appendI32Field(buf, &last, 5, 0)
	return appendStop(buf)
}

// encodeMinimalFileMetaData builds a FileMetaData Thrift struct with one
// schema element, no row groups, and version/numRows as given.
func encodeMinimalFileMetaData(version int32, numRows int64) []byte {
	var buf []byte
	var last int16
	buf = appendI32Field(buf, &last, 1, version)

	buf = appendFieldHeader(buf, &last, 2, 0x9)
	buf = appendListHeader(buf, 1, 0xc)
	buf = append(buf, minimalSchemaElementBytes("schema")...)

	buf = appendI64Field(buf, &last, 3, numRows)

	buf = appendFieldHeader(buf, &last, 4, 0x9)
	buf = appendListHeader(buf, 0, 0xc)

	return appendStop(buf)
}

// wrapFooter assembles a complete file: PAR1, the footer bytes, the
// little-endian footer length, PAR1.
func wrapFooter(footer []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write(footer)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(footer)))
	buf.Write(lenBuf[:])
	buf.WriteString(magic)
	return buf.Bytes()
}

func TestReadFooterHappyPath(t *testing.T) {
	footer := encodeMinimalFileMetaData(1, 0)
	file := wrapFooter(footer)

	meta, err := readFooter(bytes.NewReader(file), int64(len(file)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), meta.Version)
	assert.Equal(t, int64(0), meta.NumRows)
	assert.Len(t, meta.Schema, 1)
	assert.Equal(t, "schema", meta.Schema[0].Name)
}

func TestReadFooterTooSmall(t *testing.T) {
	_, err := readFooter(bytes.NewReader([]byte("PAR1PAR1")), 8)
	assert.ErrorIs(t, err, ErrNotParquet)
}

func TestReadFooterBadLeadingMagic(t *testing.T) {
	file := wrapFooter(encodeMinimalFileMetaData(1, 0))
	file[0] = 'X'
	_, err := readFooter(bytes.NewReader(file), int64(len(file)))
	assert.ErrorIs(t, err, ErrNotParquet)
}

func TestReadFooterBadTrailingMagic(t *testing.T) {
	file := wrapFooter(encodeMinimalFileMetaData(1, 0))
	file[len(file)-1] = 'X'
	_, err := readFooter(bytes.NewReader(file), int64(len(file)))
	assert.ErrorIs(t, err, ErrNotParquet)
}

func TestReadFooterUnsupportedVersion(t *testing.T) {
	file := wrapFooter(encodeMinimalFileMetaData(99, 0))
	_, err := readFooter(bytes.NewReader(file), int64(len(file)))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestReadFooterRowCountMismatch(t *testing.T) {
	// numRows=5 but zero row groups declared: sums to 0, not 5.
	file := wrapFooter(encodeMinimalFileMetaData(1, 5))
	_, err := readFooter(bytes.NewReader(file), int64(len(file)))
	assert.ErrorIs(t, err, ErrCorruptMetadata)
}
