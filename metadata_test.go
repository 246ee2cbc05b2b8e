package parquet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobalt-data/parquet-go/format"
)

func TestDecodeStatisticsInt32(t *testing.T) {
	leaf := &Node{Name: "v", Kind: KindPrimitive, Type: typ(format.Int32)}
	stats := &format.Statistics{MinValue: plainInt32(1), MaxValue: plainInt32(99)}

	cs := decodeStatistics(leaf, stats, DefaultParquetOptions())
	require.True(t, cs.HasMin)
	require.True(t, cs.HasMax)
	assert.Equal(t, int32(1), cs.Min.Primitive())
	assert.Equal(t, int32(99), cs.Max.Primitive())
}

func TestDecodeStatisticsFallsBackToLegacyMinMaxFields(t *testing.T) {
	leaf := &Node{Name: "v", Kind: KindPrimitive, Type: typ(format.Int32)}
	stats := &format.Statistics{Min: plainInt32(5), Max: plainInt32(7)}

	cs := decodeStatistics(leaf, stats, DefaultParquetOptions())
	assert.Equal(t, int32(5), cs.Min.Primitive())
	assert.Equal(t, int32(7), cs.Max.Primitive())
}

func TestDecodeStatisticsByteArrayHasNoLengthPrefix(t *testing.T) {
	leaf := &Node{Name: "s", Kind: KindPrimitive, Type: typ(format.ByteArray), ConvertedType: conv(format.UTF8)}
	stats := &format.Statistics{MinValue: []byte("alice"), MaxValue: []byte("zara")}

	cs := decodeStatistics(leaf, stats, DefaultParquetOptions())
	assert.Equal(t, "alice", cs.Min.Primitive())
	assert.Equal(t, "zara", cs.Max.Primitive())
}

func TestCompareValuesOrdersEachPrimitiveKind(t *testing.T) {
	assert.Equal(t, -1, compareValues(PrimitiveValue(int32(1)), PrimitiveValue(int32(2))))
	assert.Equal(t, 1, compareValues(PrimitiveValue(int64(9)), PrimitiveValue(int64(3))))
	assert.Equal(t, 0, compareValues(PrimitiveValue("a"), PrimitiveValue("a")))
	assert.Equal(t, -1, compareValues(PrimitiveValue([]byte{1}), PrimitiveValue([]byte{2})))
	assert.Equal(t, 1, compareValues(PrimitiveValue(true), PrimitiveValue(false)))
}

func TestInt96ColumnBoundsUsesSignedOrdering(t *testing.T) {
	leaf := &Node{Name: "ts", Path: []string{"ts"}, Kind: KindPrimitive, Type: typ(format.Int96), Index: 0}
	schema := &Schema{Leaves: []*Node{leaf}}

	lowRaw := make([]byte, 12)
	lowRaw[8], lowRaw[9], lowRaw[10], lowRaw[11] = 100, 0, 0, 0 // julian day 100

	highRaw := make([]byte, 12)
	highRaw[8], highRaw[9], highRaw[10], highRaw[11] = 200, 0, 0, 0 // julian day 200

	r := &Reader{
		schema: schema,
		meta: &format.FileMetaData{
			RowGroups: []format.RowGroup{
				{Columns: []format.ColumnChunk{{MetaData: &format.ColumnMetaData{Statistics: &format.Statistics{MinValue: lowRaw, MaxValue: lowRaw}}}}},
				{Columns: []format.ColumnChunk{{MetaData: &format.ColumnMetaData{Statistics: &format.Statistics{MinValue: highRaw, MaxValue: highRaw}}}}},
			},
		},
		opts: DefaultParquetOptions(),
	}

	min, max, ok := r.ColumnBounds("ts")
	require.True(t, ok)
	assert.Equal(t, int32(100), min.Primitive().(Int96Value).JulianDay)
	assert.Equal(t, int32(200), max.Primitive().(Int96Value).JulianDay)
}

func TestColumnBoundsUnknownPath(t *testing.T) {
	r := &Reader{schema: &Schema{}, meta: &format.FileMetaData{}, opts: DefaultParquetOptions()}
	_, _, ok := r.ColumnBounds("nope")
	assert.False(t, ok)
}
