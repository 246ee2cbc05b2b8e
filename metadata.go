package parquet

import (
	"bytes"

	"github.com/cobalt-data/parquet-go/deprecated"
	"github.com/cobalt-data/parquet-go/format"
)

// RowGroupInfo describes one row group's physical layout, mirroring the
// data model's RowGroup type without exposing the Thrift-decoded format
// structs directly.
type RowGroupInfo struct {
	NumRows       int64
	TotalByteSize int64
	Columns       []ColumnChunkInfo
}

// ColumnChunkInfo describes one column chunk: its schema path, codec, sizes
// and (when present) decoded statistics.
type ColumnChunkInfo struct {
	Path                string
	Codec               format.CompressionCodec
	NumValues           int64
	TotalCompressedSize int64
	UncompressedSize    int64
	DictionaryOffset    *int64
	DataPageOffset      int64
	Encodings           []format.Encoding
	Statistics          *ColumnStatistics
}

// ColumnStatistics is the typed projection of a column chunk's optional
// min/max/null-count/distinct-count summary. Min and Max are decoded with
// the same scalar rules C4 uses for PLAIN page values; they are the zero
// Value when the chunk carries no statistics for that bound.
type ColumnStatistics struct {
	Min           Value
	Max           Value
	HasMin        bool
	HasMax        bool
	NullCount     *int64
	DistinctCount *int64
}

// RowGroups returns the physical layout of every row group in file order.
func (r *Reader) RowGroups() []RowGroupInfo {
	out := make([]RowGroupInfo, len(r.meta.RowGroups))

	for g := range r.meta.RowGroups {
		rg := &r.meta.RowGroups[g]
		columns := make([]ColumnChunkInfo, 0, len(rg.Columns))

		for i := range rg.Columns {
			md := rg.Columns[i].MetaData
			if md == nil {
				continue
			}
			var leaf *Node
			if i < len(r.schema.Leaves) {
				leaf = r.schema.Leaves[i]
			}

			ci := ColumnChunkInfo{
				Codec:               md.Codec,
				NumValues:           md.NumValues,
				TotalCompressedSize: md.TotalCompressedSize,
				UncompressedSize:    md.TotalUncompressedSize,
				DataPageOffset:      md.DataPageOffset,
				Encodings:           md.Encodings,
			}
			if leaf != nil {
				ci.Path = leaf.PathString()
			}
			if md.DictionaryPageOffset != 0 {
				off := md.DictionaryPageOffset
				ci.DictionaryOffset = &off
			}
			if md.Statistics != nil && leaf != nil {
				ci.Statistics = decodeStatistics(leaf, md.Statistics, r.opts)
			}
			columns = append(columns, ci)
		}

		out[g] = RowGroupInfo{NumRows: rg.NumRows, TotalByteSize: rg.TotalByteSize, Columns: columns}
	}
	return out
}

// decodeStatistics projects a Statistics struct's raw min/max bytes into
// typed Values using leaf's physical type. Min/max are always stored PLAIN
// (uncompressed, unencoded) regardless of the page encoding, so the same
// scalar decode C4 uses for a one-value PLAIN page applies here.
func decodeStatistics(leaf *Node, s *format.Statistics, opts ParquetOptions) *ColumnStatistics {
	cs := &ColumnStatistics{NullCount: s.NullCount, DistinctCount: s.DistinctCount}

	minBytes, maxBytes := s.MinValue, s.MaxValue
	if minBytes == nil {
		minBytes = s.Min
	}
	if maxBytes == nil {
		maxBytes = s.Max
	}
	if leaf.Type == nil {
		return cs
	}

	if v, ok := decodeScalar(leaf, minBytes, opts); ok {
		cs.Min, cs.HasMin = v, true
	}
	if v, ok := decodeScalar(leaf, maxBytes, opts); ok {
		cs.Max, cs.HasMax = v, true
	}
	return cs
}

// decodeScalar decodes one raw statistics bound (no repetition/definition
// level framing; BYTE_ARRAY has no length prefix, since Thrift's binary
// field already gives exactly the value's bytes) into the Value a PLAIN
// data page of this leaf's physical type would have produced for it.
func decodeScalar(leaf *Node, raw []byte, opts ParquetOptions) (Value, bool) {
	if raw == nil {
		return Value{}, false
	}
	switch *leaf.Type {
	case format.ByteArray, format.FixedLenByteArray:
		return applyByteArrayConvertedType(leaf, raw, opts), true
	default:
		values, err := decodeTypedValues(leaf, raw, 1, opts)
		if err != nil || len(values) != 1 {
			return Value{}, false
		}
		return values[0], true
	}
}

// ColumnBounds merges the per-row-group statistics of the leaf at path into
// one (min, max) pair spanning the whole file. ok is false if path doesn't
// name a leaf, or no row group carries statistics for it.
//
// INT96 columns have no natural ordering over their decoded Int96Value
// (a split JulianDay/NanosOfDay pair), so bounds for them are computed by
// comparing the raw 12-byte statistics values with deprecated.Int96's
// signed ordering before converting the winning value, rather than by
// comparing the decoded Values directly.
func (r *Reader) ColumnBounds(path string) (min, max Value, ok bool) {
	var leaf *Node
	for _, l := range r.schema.Leaves {
		if l.PathString() == path {
			leaf = l
			break
		}
	}
	if leaf == nil || leaf.Type == nil {
		return Value{}, Value{}, false
	}

	if *leaf.Type == format.Int96 {
		return r.int96ColumnBounds(leaf)
	}

	for g := range r.meta.RowGroups {
		chunk := &r.meta.RowGroups[g].Columns[leaf.Index]
		md := chunk.MetaData
		if md == nil || md.Statistics == nil {
			continue
		}
		stats := decodeStatistics(leaf, md.Statistics, r.opts)
		if stats.HasMin && (!ok || compareValues(stats.Min, min) < 0) {
			min = stats.Min
		}
		if stats.HasMax && (!ok || compareValues(stats.Max, max) > 0) {
			max = stats.Max
		}
		if stats.HasMin || stats.HasMax {
			ok = true
		}
	}
	return min, max, ok
}

func (r *Reader) int96ColumnBounds(leaf *Node) (min, max Value, ok bool) {
	var mins, maxes []deprecated.Int96
	for g := range r.meta.RowGroups {
		chunk := &r.meta.RowGroups[g].Columns[leaf.Index]
		md := chunk.MetaData
		if md == nil || md.Statistics == nil {
			continue
		}
		minRaw, maxRaw := md.Statistics.MinValue, md.Statistics.MaxValue
		if minRaw == nil {
			minRaw = md.Statistics.Min
		}
		if maxRaw == nil {
			maxRaw = md.Statistics.Max
		}
		if len(minRaw) != 12 || len(maxRaw) != 12 {
			continue
		}
		mins = append(mins, decodeInt96(minRaw))
		maxes = append(maxes, decodeInt96(maxRaw))
	}
	if len(mins) == 0 {
		return Value{}, Value{}, false
	}
	return int96ToValue(deprecated.MinInt96(mins)), int96ToValue(deprecated.MaxInt96(maxes)), true
}

func decodeInt96(raw []byte) deprecated.Int96 {
	var i96 deprecated.Int96
	for k := 0; k < 3; k++ {
		i96[k] = uint32(raw[k*4]) | uint32(raw[k*4+1])<<8 | uint32(raw[k*4+2])<<16 | uint32(raw[k*4+3])<<24
	}
	return i96
}

func int96ToValue(i96 deprecated.Int96) Value {
	return PrimitiveValue(Int96Value{JulianDay: i96.JulianDay(), NanosOfDay: i96.NanosOfDay()})
}

// compareValues orders two decoded scalar Values of the same underlying Go
// type, as produced by decodeScalar for any non-INT96 physical type.
// Unsupported combinations compare equal; callers only use the sign to
// decide whether to replace a running min/max, so a stray 0 just keeps the
// first-seen bound instead of panicking on a type assertion.
func compareValues(a, b Value) int {
	switch x := a.Primitive().(type) {
	case bool:
		y, _ := b.Primitive().(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int32:
		y, _ := b.Primitive().(int32)
		return compareOrdered(x, y)
	case int64:
		y, _ := b.Primitive().(int64)
		return compareOrdered(x, y)
	case float32:
		y, _ := b.Primitive().(float32)
		return compareOrdered(x, y)
	case float64:
		y, _ := b.Primitive().(float64)
		return compareOrdered(x, y)
	case string:
		y, _ := b.Primitive().(string)
		return compareOrdered(x, y)
	case []byte:
		y, _ := b.Primitive().([]byte)
		return bytes.Compare(x, y)
	case DecimalValue:
		y, _ := b.Primitive().(DecimalValue)
		return compareOrdered(x.Unscaled, y.Unscaled)
	default:
		return 0
	}
}

func compareOrdered[T int32 | int64 | float32 | float64 | string](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
