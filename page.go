package parquet

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cobalt-data/parquet-go/compress"
	"github.com/cobalt-data/parquet-go/compress/brotli"
	"github.com/cobalt-data/parquet-go/compress/gzip"
	"github.com/cobalt-data/parquet-go/compress/lz4"
	"github.com/cobalt-data/parquet-go/compress/snappy"
	"github.com/cobalt-data/parquet-go/compress/uncompressed"
	"github.com/cobalt-data/parquet-go/compress/zstd"
	"github.com/cobalt-data/parquet-go/deprecated"
	"github.com/cobalt-data/parquet-go/encoding/dict"
	"github.com/cobalt-data/parquet-go/encoding/plain"
	"github.com/cobalt-data/parquet-go/encoding/rle"
	"github.com/cobalt-data/parquet-go/format"
	"github.com/cobalt-data/parquet-go/internal/debug"
	"github.com/cobalt-data/parquet-go/internal/thrift"
	"github.com/google/uuid"
)

func codecFor(c format.CompressionCodec) (compress.Codec, error) {
	switch c {
	case format.Uncompressed:
		return &uncompressed.Codec{}, nil
	case format.Snappy:
		return &snappy.Codec{}, nil
	case format.Gzip:
		return &gzip.Codec{}, nil
	case format.Brotli:
		return &brotli.Codec{}, nil
	case format.Lz4Raw, format.Lz4:
		return &lz4.Codec{}, nil
	case format.Zstd:
		return &zstd.Codec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, c)
	}
}

// chunkValues is the C4 output for one column chunk: one slot per record
// (null or decoded value) and the parallel repetition-level stream that C5
// consumes to rebuild nesting.
type chunkValues struct {
	values    []Value
	repLevels []int32
}

// decodeChunk streams the page sequence of one column chunk and returns its
// flat (possibly null) value sequence and repetition-level stream.
func decodeChunk(leaf *Node, chunk *format.ColumnChunk, source io.ReaderAt, fileSize int64, opts ParquetOptions) (*chunkValues, error) {
	meta := chunk.MetaData
	if meta == nil {
		return nil, fmt.Errorf("%w: column chunk has no metadata", ErrCorruptMetadata)
	}

	codec, err := codecFor(meta.Codec)
	if err != nil {
		return nil, err
	}

	start := meta.DataPageOffset
	if meta.DictionaryPageOffset != 0 && meta.DictionaryPageOffset < start {
		start = meta.DictionaryPageOffset
	}

	length := meta.TotalCompressedSize + (meta.DataPageOffset - start)
	if length <= 0 || start+length > fileSize {
		length = fileSize - start
	}

	if opts.Debug {
		source = debug.Reader(source, fmt.Sprintf("column %s", leaf.PathString()))
	}
	section := io.NewSectionReader(source, start, length)
	br := bufio.NewReaderSize(section, 64*1024)
	tr := thrift.NewReader(br)

	out := &chunkValues{
		values:    make([]Value, 0, meta.NumValues),
		repLevels: make([]int32, 0, meta.NumValues),
	}

	var dictionary []Value

	for int64(len(out.values)) < meta.NumValues {
		ph, err := format.DecodePageHeader(tr)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: decoding page header: %s", ErrCorruptMetadata, err)
		}

		compressed := make([]byte, ph.CompressedPageSize)
		if _, err := io.ReadFull(br, compressed); err != nil {
			return nil, fmt.Errorf("%w: reading page body: %s", ErrCorruptData, err)
		}

		switch ph.Type {
		case format.DictionaryPage:
			dictionary, err = decodeDictionaryPage(leaf, codec, ph, compressed, opts)
			if err != nil {
				return nil, err
			}

		case format.DataPage:
			if err := decodeDataPageV1(leaf, codec, ph, compressed, dictionary, opts, out); err != nil {
				return nil, err
			}

		case format.DataPageV2:
			if err := decodeDataPageV2(leaf, codec, ph, compressed, dictionary, opts, out); err != nil {
				return nil, err
			}

		default:
			// Index pages are not projected; nothing further to do.
		}
	}

	return out, nil
}

func decompressPage(codec compress.Codec, uncompressedSize int, compressed []byte) ([]byte, error) {
	r, err := codec.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: constructing %s reader: %s", ErrCorruptData, codec, err)
	}
	defer r.Close()

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: decompressing page with %s: %s", ErrCorruptData, codec, err)
	}
	return out, nil
}

func decodeDictionaryPage(leaf *Node, codec compress.Codec, ph *format.PageHeader, compressed []byte, opts ParquetOptions) ([]Value, error) {
	if ph.DictionaryPageHeader == nil {
		return nil, fmt.Errorf("%w: DICTIONARY_PAGE without a dictionary_page_header", ErrCorruptMetadata)
	}
	if ph.DictionaryPageHeader.Encoding != format.Plain {
		return nil, fmt.Errorf("%w: dictionary page encoding %s", ErrUnsupportedEncoding, ph.DictionaryPageHeader.Encoding)
	}

	payload, err := decompressPage(codec, int(ph.UncompressedPageSize), compressed)
	if err != nil {
		return nil, err
	}

	return decodeTypedValues(leaf, payload, int(ph.DictionaryPageHeader.NumValues), opts)
}

func decodeDataPageV1(leaf *Node, codec compress.Codec, ph *format.PageHeader, compressed []byte, dictionary []Value, opts ParquetOptions, out *chunkValues) error {
	if ph.DataPageHeader == nil {
		return fmt.Errorf("%w: DATA_PAGE without a data_page_header", ErrCorruptMetadata)
	}
	dph := ph.DataPageHeader
	numValues := int(dph.NumValues)

	payload, err := decompressPage(codec, int(ph.UncompressedPageSize), compressed)
	if err != nil {
		return err
	}

	cursor := 0

	repLevels, n, err := readV1Levels(payload, &cursor, leaf.MaxRepetitionLevel, numValues)
	if err != nil {
		return err
	}
	if n != numValues {
		numValues = n
	}

	defLevels, n, err := readV1Levels(payload, &cursor, leaf.MaxDefinitionLevel, numValues)
	if err != nil {
		return err
	}

	present := 0
	for _, d := range defLevels {
		if int(d) == leaf.MaxDefinitionLevel {
			present++
		}
	}

	values, err := decodeValues(leaf, dph.Encoding, payload[cursor:], present, dictionary, opts)
	if err != nil {
		return err
	}

	return zipLevelsAndValues(defLevels, repLevels, values, leaf.MaxDefinitionLevel, out)
}

func decodeDataPageV2(leaf *Node, codec compress.Codec, ph *format.PageHeader, compressed []byte, dictionary []Value, opts ParquetOptions, out *chunkValues) error {
	dph := ph.DataPageHeaderV2
	if dph == nil {
		return fmt.Errorf("%w: DATA_PAGE_V2 without a data_page_header_v2", ErrCorruptMetadata)
	}
	numValues := int(dph.NumValues)

	repLen := int(dph.RepetitionLevelsByteLength)
	defLen := int(dph.DefinitionLevelsByteLength)
	if repLen+defLen > len(compressed) {
		return fmt.Errorf("%w: level section lengths exceed page size", ErrCorruptData)
	}
	levels := compressed[:repLen+defLen]
	valueBytes := compressed[repLen+defLen:]

	if dph.IsCompressed {
		decompressed, err := decompressPage(codec, int(ph.UncompressedPageSize)-repLen-defLen, valueBytes)
		if err != nil {
			return err
		}
		valueBytes = decompressed
	}

	repLevels, err := decodeLevelStream(levels[:repLen], leaf.MaxRepetitionLevel, numValues)
	if err != nil {
		return err
	}
	defLevels, err := decodeLevelStream(levels[repLen:repLen+defLen], leaf.MaxDefinitionLevel, numValues)
	if err != nil {
		return err
	}

	present := numValues - int(dph.NumNulls)

	values, err := decodeValues(leaf, dph.Encoding, valueBytes, present, dictionary, opts)
	if err != nil {
		return err
	}

	return zipLevelsAndValues(defLevels, repLevels, values, leaf.MaxDefinitionLevel, out)
}

// readV1Levels reads one length-prefixed hybrid-encoded level stream from a
// v1 data page payload, advancing *cursor past it. If maxLevel is 0 the
// stream is omitted entirely and every level is implicitly 0.
func readV1Levels(payload []byte, cursor *int, maxLevel, numValues int) ([]int32, int, error) {
	if maxLevel == 0 {
		return make([]int32, numValues), numValues, nil
	}
	if *cursor+4 > len(payload) {
		return nil, 0, fmt.Errorf("%w: truncated level stream length prefix", ErrCorruptData)
	}
	length := int(binary.LittleEndian.Uint32(payload[*cursor:]))
	*cursor += 4
	if *cursor+length > len(payload) {
		return nil, 0, fmt.Errorf("%w: level stream length %d exceeds page payload", ErrCorruptData, length)
	}
	stream := payload[*cursor : *cursor+length]
	*cursor += length

	levels, err := decodeLevelStream(stream, maxLevel, numValues)
	if err != nil {
		return nil, 0, err
	}
	return levels, numValues, nil
}

func decodeLevelStream(data []byte, maxLevel, numValues int) ([]int32, error) {
	if maxLevel == 0 {
		return make([]int32, numValues), nil
	}
	bitWidth := rle.BitWidth(maxLevel)
	dec := rle.NewDecoder(data, bitWidth)
	levels := make([]int32, numValues)
	if _, err := dec.Decode(levels); err != nil {
		return nil, fmt.Errorf("%w: decoding level stream: %s", ErrCorruptData, err)
	}
	return levels, nil
}

// zipLevelsAndValues emits one Value per definition level: the next decoded
// value when d equals maxDef, otherwise a null tagged with d.
func zipLevelsAndValues(defLevels, repLevels []int32, values []Value, maxDef int, out *chunkValues) error {
	vi := 0
	for i, d := range defLevels {
		if int(d) == maxDef {
			if vi >= len(values) {
				return fmt.Errorf("%w: fewer decoded values than present-count implied by definition levels", ErrCorruptData)
			}
			out.values = append(out.values, values[vi])
			vi++
		} else {
			out.values = append(out.values, NullValue(int(d)))
		}
		out.repLevels = append(out.repLevels, repLevels[i])
	}
	return nil
}

func decodeValues(leaf *Node, encoding format.Encoding, src []byte, count int, dictionary []Value, opts ParquetOptions) ([]Value, error) {
	switch encoding {
	case format.Plain:
		return decodeTypedValues(leaf, src, count, opts)

	case format.PlainDictionary, format.RLEDictionary:
		if dictionary == nil {
			return nil, fmt.Errorf("%w: %s encoding used without a preceding dictionary page", ErrCorruptData, encoding)
		}
		indices := make([]int32, count)
		n, err := dict.DecodeIndices(indices, src)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding dictionary indices: %s", ErrCorruptData, err)
		}
		if n != count {
			return nil, fmt.Errorf("%w: expected %d dictionary indices, decoded %d", ErrCorruptData, count, n)
		}
		values := make([]Value, count)
		for i, idx := range indices {
			if idx < 0 || int(idx) >= len(dictionary) {
				return nil, fmt.Errorf("%w: dictionary index %d out of range [0,%d)", ErrCorruptData, idx, len(dictionary))
			}
			values[i] = dictionary[idx]
		}
		return values, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
}

// decodeTypedValues decodes count PLAIN-encoded values of the leaf's
// physical type, applying the leaf's logical (converted) type annotation.
func decodeTypedValues(leaf *Node, src []byte, count int, opts ParquetOptions) ([]Value, error) {
	if leaf.Type == nil {
		return nil, fmt.Errorf("%w: leaf %q has no physical type", ErrCorruptMetadata, leaf.PathString())
	}

	values := make([]Value, count)

	switch *leaf.Type {
	case format.Boolean:
		raw := make([]bool, count)
		if _, err := plain.DecodeBoolean(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			values[i] = PrimitiveValue(v)
		}

	case format.Int32:
		raw := make([]int32, count)
		if _, err := plain.DecodeInt32(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			values[i] = applyInt32ConvertedType(leaf, v)
		}

	case format.Int64:
		raw := make([]int64, count)
		if _, err := plain.DecodeInt64(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			values[i] = applyInt64ConvertedType(leaf, v)
		}

	case format.Int96:
		raw := make([][3]uint32, count)
		if _, err := plain.DecodeInt96(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			i96 := deprecated.Int96(v)
			values[i] = PrimitiveValue(Int96Value{JulianDay: i96.JulianDay(), NanosOfDay: i96.NanosOfDay()})
		}

	case format.Float:
		raw := make([]float32, count)
		if _, err := plain.DecodeFloat(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			values[i] = PrimitiveValue(v)
		}

	case format.Double:
		raw := make([]float64, count)
		if _, err := plain.DecodeDouble(raw, src); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, v := range raw {
			values[i] = PrimitiveValue(v)
		}

	case format.ByteArray:
		raw := make([][]byte, count)
		n, _, err := plain.DecodeByteArray(raw, src)
		if err != nil {
			return nil, wrapCorrupt(err)
		}
		if n != count {
			return nil, fmt.Errorf("%w: expected %d byte arrays, decoded %d", ErrCorruptData, count, n)
		}
		for i, b := range raw {
			values[i] = applyByteArrayConvertedType(leaf, b, opts)
		}

	case format.FixedLenByteArray:
		raw := make([][]byte, count)
		if _, err := plain.DecodeFixedLenByteArray(raw, src, int(leaf.TypeLength)); err != nil {
			return nil, wrapCorrupt(err)
		}
		for i, b := range raw {
			values[i] = applyByteArrayConvertedType(leaf, b, opts)
		}

	default:
		return nil, fmt.Errorf("%w: physical type %s", ErrUnsupportedEncoding, *leaf.Type)
	}

	return values, nil
}

func wrapCorrupt(err error) error {
	return fmt.Errorf("%w: %s", ErrCorruptData, err)
}

func applyInt32ConvertedType(leaf *Node, v int32) Value {
	if leaf.ConvertedType == nil {
		return PrimitiveValue(v)
	}
	switch *leaf.ConvertedType {
	case format.Decimal:
		return PrimitiveValue(DecimalValue{Unscaled: int64(v), Precision: leaf.Precision, Scale: leaf.Scale})
	default:
		return PrimitiveValue(v)
	}
}

func applyInt64ConvertedType(leaf *Node, v int64) Value {
	if leaf.ConvertedType == nil {
		return PrimitiveValue(v)
	}
	switch *leaf.ConvertedType {
	case format.Decimal:
		return PrimitiveValue(DecimalValue{Unscaled: v, Precision: leaf.Precision, Scale: leaf.Scale})
	default:
		return PrimitiveValue(v)
	}
}

func applyByteArrayConvertedType(leaf *Node, b []byte, opts ParquetOptions) Value {
	cp := append([]byte(nil), b...)

	if leaf.IsUUID && *leaf.Type == format.FixedLenByteArray && len(cp) == 16 {
		id, err := uuid.FromBytes(cp)
		if err == nil {
			return PrimitiveValue(id)
		}
	}

	if leaf.ConvertedType != nil {
		switch *leaf.ConvertedType {
		case format.UTF8:
			return PrimitiveValue(string(cp))
		case format.Decimal:
			return PrimitiveValue(DecimalValue{Unscaled: decodeBigEndianSigned(cp), Precision: leaf.Precision, Scale: leaf.Scale})
		}
	}

	if opts.TreatByteArrayAsString() && *leaf.Type == format.ByteArray {
		return PrimitiveValue(string(cp))
	}
	return PrimitiveValue(cp)
}

// decodeBigEndianSigned interprets cp as a two's-complement big-endian
// signed integer, for DECIMAL values backed by BYTE_ARRAY/FIXED_LEN_BYTE_ARRAY
// small enough to fit an int64 (the common case for the column types this
// reader targets).
func decodeBigEndianSigned(cp []byte) int64 {
	var v int64
	for _, b := range cp {
		v = v<<8 | int64(b)
	}
	if len(cp) > 0 && cp[0]&0x80 != 0 {
		v -= 1 << (8 * uint(len(cp)))
	}
	return v
}
