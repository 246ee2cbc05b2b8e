package parquet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobalt-data/parquet-go/format"
)

// --- minimal compact-Thrift encoder, test-only -----------------------------
//
// Only covers what the fixtures below need: field headers (short form for
// ID deltas 1-15, long form otherwise), I32 fields, and one level of struct
// nesting.

func zigzag32(v int32) uint64 { return uint64(uint32((v << 1) ^ (v >> 31))) }

func appendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func appendFieldHeader(buf []byte, lastID *int16, id int16, typ byte) []byte {
	delta := id - *lastID
	if delta > 0 && delta <= 15 {
		buf = append(buf, byte(delta)<<4|typ)
	} else {
		buf = append(buf, typ)
		buf = appendVarint(buf, zigzag32(int32(id)))
	}
	*lastID = id
	return buf
}

func appendI32Field(buf []byte, lastID *int16, id int16, v int32) []byte {
	buf = appendFieldHeader(buf, lastID, id, 0x5)
	return appendVarint(buf, zigzag32(v))
}

func appendStop(buf []byte) []byte { return append(buf, 0x0) }

// buildDataPageV1 encodes one DATA_PAGE header (type=0, encoding=PLAIN,
// def/rep level encodings=RLE) followed by its PLAIN int32 payload, for a
// leaf with max_def_level == max_rep_level == 0 (so no level streams are
// present).
func buildDataPageV1(values []int32) []byte {
	payload := make([]byte, 0, 4*len(values))
	for _, v := range values {
		var b [4]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		payload = append(payload, b[:]...)
	}

	var dph []byte
	var dphLast int16
	dph = appendI32Field(dph, &dphLast, 1, int32(len(values))) // num_values
	dph = appendI32Field(dph, &dphLast, 2, 0)                  // encoding = PLAIN
	dph = appendI32Field(dph, &dphLast, 3, 3)                  // def_level_encoding = RLE
	dph = appendI32Field(dph, &dphLast, 4, 3)                  // rep_level_encoding = RLE
	dph = appendStop(dph)

	var header []byte
	var last int16
	header = appendI32Field(header, &last, 1, 0)                 // type = DATA_PAGE
	header = appendI32Field(header, &last, 2, int32(len(payload))) // uncompressed_page_size
	header = appendI32Field(header, &last, 3, int32(len(payload))) // compressed_page_size
	header = appendFieldHeader(header, &last, 5, 0xc)            // data_page_header (struct)
	header = append(header, dph...)
	header = appendStop(header)

	return append(header, payload...)
}

func int32Ptr(v int32) *format.Type {
	t := format.Type(v)
	return &t
}

func requiredPtr() *format.FieldRepetitionType {
	r := format.Required
	return &r
}

// buildSingleColumnFixture builds a Reader over three row groups of 4 rows
// each, one REQUIRED INT32 column "v", values 0..11 in order.
func buildSingleColumnFixture(t *testing.T) *Reader {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int64, 3)
	groupValues := [][]int32{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9, 10, 11},
	}

	for i, vs := range groupValues {
		offsets[i] = int64(buf.Len())
		buf.Write(buildDataPageV1(vs))
	}

	flatSchema := []format.SchemaElement{
		{Name: "schema", NumChildren: func() *int32 { n := int32(1); return &n }()},
		{Name: "v", Type: int32Ptr(int32(format.Int32)), RepetitionType: requiredPtr()},
	}

	schema, err := buildSchema(flatSchema)
	require.NoError(t, err)

	rowGroups := make([]format.RowGroup, 3)
	for i, vs := range groupValues {
		pageBytes := buildDataPageV1(vs)
		rowGroups[i] = format.RowGroup{
			NumRows: int64(len(vs)),
			Columns: []format.ColumnChunk{
				{
					MetaData: &format.ColumnMetaData{
						Type:                format.Int32,
						Codec:               format.Uncompressed,
						NumValues:           int64(len(vs)),
						DataPageOffset:      offsets[i],
						TotalCompressedSize: int64(len(pageBytes)),
					},
				},
			},
		}
	}

	meta := &format.FileMetaData{
		Version:   1,
		Schema:    flatSchema,
		NumRows:   12,
		RowGroups: rowGroups,
	}

	return &Reader{
		source: bytes.NewReader(buf.Bytes()),
		size:   int64(buf.Len()),
		meta:   meta,
		schema: schema,
		opts:   DefaultParquetOptions(),
	}
}

func TestIterRowsOffsetAndCount(t *testing.T) {
	r := buildSingleColumnFixture(t)

	it, err := r.IterRows(ReaderOptions{Offset: 5, Count: 3})
	require.NoError(t, err)

	var got []int32
	for {
		row, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, row.Values["v"].Primitive().(int32))
	}

	require.Equal(t, []int32{5, 6, 7}, got)
}

func TestIterRowsOffsetBeyondTotalIsEmpty(t *testing.T) {
	r := buildSingleColumnFixture(t)

	it, err := r.IterRows(ReaderOptions{Offset: 100, Count: -1})
	require.NoError(t, err)

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadDataSetAllRows(t *testing.T) {
	r := buildSingleColumnFixture(t)

	ds, err := r.ReadDataSet(DefaultReaderOptions())
	require.NoError(t, err)

	require.Equal(t, int64(12), ds.NumRows)
	require.Len(t, ds.Columns["v"], 12)
	for i, v := range ds.Columns["v"] {
		require.Equal(t, int32(i), v.Primitive().(int32))
	}
}

func TestReadDataSetProjection(t *testing.T) {
	r := buildSingleColumnFixture(t)

	ds, err := r.ReadDataSet(ReaderOptions{Count: -1, Columns: []PathPredicate{ExactPath("nope")}})
	require.NoError(t, err)

	require.Empty(t, ds.Columns)
	require.Len(t, ds.Schema.Leaves, 0)
}
