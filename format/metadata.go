package format

import (
	"github.com/cobalt-data/parquet-go/internal/thrift"
)

// KeyValue is an arbitrary string key/value pair attached to file or column
// chunk metadata.
type KeyValue struct {
	Key   string
	Value string
}

func (kv *KeyValue) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if kv.Key, err = r.ReadString(); err != nil {
				return err
			}
		case 2:
			if kv.Value, err = r.ReadString(); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// SchemaElement is one node of the flat pre-order schema list stored in the
// file footer.
type SchemaElement struct {
	Type           *Type
	TypeLength     *int32
	RepetitionType *FieldRepetitionType
	Name           string
	NumChildren    *int32
	ConvertedType  *ConvertedType
	Scale          *int32
	Precision      *int32
	FieldID        *int32
	LogicalType    *LogicalType
}

// LogicalType is the newer logical-type annotation union that supersedes
// ConvertedType for some leaf kinds. Only the UUID variant is projected to a
// typed Go value; every other variant is recognized on the wire but decodes
// to a zero LogicalType (the leaf falls back to its ConvertedType/physical
// type handling).
//
// https://github.com/apache/parquet-format/blob/master/LogicalTypes.md
type LogicalType struct {
	IsUUID bool
}

func (l *LogicalType) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		if fh.ID == 14 {
			l.IsUUID = true
		}
		if err := r.Skip(fh.Type); err != nil {
			return err
		}
	}
}

func (s *SchemaElement) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			t := Type(v)
			s.Type = &t
		case 2:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.TypeLength = &v
		case 3:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			rt := FieldRepetitionType(v)
			s.RepetitionType = &rt
		case 4:
			if s.Name, err = r.ReadString(); err != nil {
				return err
			}
		case 5:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.NumChildren = &v
		case 6:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			ct := ConvertedType(v)
			s.ConvertedType = &ct
		case 7:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.Scale = &v
		case 8:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.Precision = &v
		case 9:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			s.FieldID = &v
		case 10:
			s.LogicalType = &LogicalType{}
			if err := s.LogicalType.decode(r); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// Statistics holds the optional min/max/null-count/distinct-count summary
// recorded for a column chunk or page.
type Statistics struct {
	Max          []byte
	Min          []byte
	NullCount    *int64
	DistinctCount *int64
	MaxValue     []byte
	MinValue     []byte
}

func (s *Statistics) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if s.Max, err = r.ReadBinary(); err != nil {
				return err
			}
		case 2:
			if s.Min, err = r.ReadBinary(); err != nil {
				return err
			}
		case 3:
			v, err := r.ReadI64()
			if err != nil {
				return err
			}
			s.NullCount = &v
		case 4:
			v, err := r.ReadI64()
			if err != nil {
				return err
			}
			s.DistinctCount = &v
		case 5:
			if s.MaxValue, err = r.ReadBinary(); err != nil {
				return err
			}
		case 6:
			if s.MinValue, err = r.ReadBinary(); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// ColumnMetaData describes the physical layout of one column chunk: its
// type, codec, encodings in use, byte offsets and optional statistics.
type ColumnMetaData struct {
	Type                  Type
	Encodings             []Encoding
	PathInSchema          []string
	Codec                 CompressionCodec
	NumValues             int64
	TotalUncompressedSize int64
	TotalCompressedSize   int64
	KeyValueMetadata      []KeyValue
	DataPageOffset        int64
	IndexPageOffset       int64
	DictionaryPageOffset  int64
	Statistics            *Statistics
}

func (c *ColumnMetaData) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			c.Type = Type(v)
		case 2:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			c.Encodings = make([]Encoding, lh.Size)
			for i := range c.Encodings {
				v, err := r.ReadI32()
				if err != nil {
					return err
				}
				c.Encodings[i] = Encoding(v)
			}
		case 3:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			c.PathInSchema = make([]string, lh.Size)
			for i := range c.PathInSchema {
				if c.PathInSchema[i], err = r.ReadString(); err != nil {
					return err
				}
			}
		case 4:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			c.Codec = CompressionCodec(v)
		case 5:
			if c.NumValues, err = r.ReadI64(); err != nil {
				return err
			}
		case 6:
			if c.TotalUncompressedSize, err = r.ReadI64(); err != nil {
				return err
			}
		case 7:
			if c.TotalCompressedSize, err = r.ReadI64(); err != nil {
				return err
			}
		case 8:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			c.KeyValueMetadata = make([]KeyValue, lh.Size)
			for i := range c.KeyValueMetadata {
				if err := c.KeyValueMetadata[i].decode(r); err != nil {
					return err
				}
			}
		case 9:
			if c.DataPageOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 10:
			if c.IndexPageOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 11:
			if c.DictionaryPageOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 12:
			c.Statistics = new(Statistics)
			if err := c.Statistics.decode(r); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// ColumnChunk locates one column's data within a row group, either inline
// (MetaData set) or in another file (FilePath set).
type ColumnChunk struct {
	FilePath   string
	FileOffset int64
	MetaData   *ColumnMetaData
}

func (c *ColumnChunk) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if c.FilePath, err = r.ReadString(); err != nil {
				return err
			}
		case 2:
			if c.FileOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 3:
			c.MetaData = new(ColumnMetaData)
			if err := c.MetaData.decode(r); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// RowGroup is one horizontal partition of the file's rows, made up of one
// column chunk per leaf column.
type RowGroup struct {
	Columns             []ColumnChunk
	TotalByteSize       int64
	NumRows             int64
	FileOffset          int64
	TotalCompressedSize int64
	Ordinal             int16
}

func (g *RowGroup) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			g.Columns = make([]ColumnChunk, lh.Size)
			for i := range g.Columns {
				if err := g.Columns[i].decode(r); err != nil {
					return err
				}
			}
		case 2:
			if g.TotalByteSize, err = r.ReadI64(); err != nil {
				return err
			}
		case 3:
			if g.NumRows, err = r.ReadI64(); err != nil {
				return err
			}
		case 5:
			if g.FileOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 6:
			if g.TotalCompressedSize, err = r.ReadI64(); err != nil {
				return err
			}
		case 7:
			if g.Ordinal, err = r.ReadI16(); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// FileMetaData is the decoded footer: the file-wide schema, row count, row
// groups and any key/value metadata attached by the writer.
type FileMetaData struct {
	Version          int32
	Schema           []SchemaElement
	NumRows          int64
	RowGroups        []RowGroup
	KeyValueMetadata []KeyValue
	CreatedBy        string
}

// Decode reads one Thrift compact struct from r into m. It is the entry
// point used by the footer reader once it has located the FileMetaData
// bytes between the magic number and the footer length prefix.
func (m *FileMetaData) Decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if m.Version, err = r.ReadI32(); err != nil {
				return err
			}
		case 2:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			m.Schema = make([]SchemaElement, lh.Size)
			for i := range m.Schema {
				if err := m.Schema[i].decode(r); err != nil {
					return err
				}
			}
		case 3:
			if m.NumRows, err = r.ReadI64(); err != nil {
				return err
			}
		case 4:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			m.RowGroups = make([]RowGroup, lh.Size)
			for i := range m.RowGroups {
				if err := m.RowGroups[i].decode(r); err != nil {
					return err
				}
			}
		case 5:
			lh, err := r.ReadListBegin()
			if err != nil {
				return err
			}
			m.KeyValueMetadata = make([]KeyValue, lh.Size)
			for i := range m.KeyValueMetadata {
				if err := m.KeyValueMetadata[i].decode(r); err != nil {
					return err
				}
			}
		case 6:
			if m.CreatedBy, err = r.ReadString(); err != nil {
				return err
			}
		default:
			// column_orders and encryption fields: not projected, skip.
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// DataPageHeader is the v1 data page header: fixed-width repetition and
// definition level streams followed by RLE/BIT_PACKED or PLAIN-family
// encoded values.
type DataPageHeader struct {
	NumValues               int32
	Encoding                Encoding
	DefinitionLevelEncoding Encoding
	RepetitionLevelEncoding Encoding
	Statistics              *Statistics
}

func (h *DataPageHeader) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.NumValues = v
		case 2:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.Encoding = Encoding(v)
		case 3:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.DefinitionLevelEncoding = Encoding(v)
		case 4:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.RepetitionLevelEncoding = Encoding(v)
		case 5:
			h.Statistics = new(Statistics)
			if err := h.Statistics.decode(r); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// DataPageHeaderV2 is the v2 data page header, which separates level
// streams from the (possibly independently compressed) value stream and
// records null/row counts directly instead of requiring a level scan.
type DataPageHeaderV2 struct {
	NumValues                  int32
	NumNulls                   int32
	NumRows                    int32
	Encoding                   Encoding
	DefinitionLevelsByteLength int32
	RepetitionLevelsByteLength int32
	IsCompressed               bool
	Statistics                 *Statistics
}

func (h *DataPageHeaderV2) decode(r *thrift.Reader) error {
	h.IsCompressed = true // spec default when the field is absent.

	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if h.NumValues, err = r.ReadI32(); err != nil {
				return err
			}
		case 2:
			if h.NumNulls, err = r.ReadI32(); err != nil {
				return err
			}
		case 3:
			if h.NumRows, err = r.ReadI32(); err != nil {
				return err
			}
		case 4:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.Encoding = Encoding(v)
		case 5:
			if h.DefinitionLevelsByteLength, err = r.ReadI32(); err != nil {
				return err
			}
		case 6:
			if h.RepetitionLevelsByteLength, err = r.ReadI32(); err != nil {
				return err
			}
		case 7:
			h.IsCompressed, err = r.ReadBool(fh.Type)
			if err != nil {
				return err
			}
		case 8:
			h.Statistics = new(Statistics)
			if err := h.Statistics.decode(r); err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// DictionaryPageHeader introduces a dictionary page: the PLAIN-encoded
// distinct values later referenced by index from PLAIN_DICTIONARY/
// RLE_DICTIONARY data pages in the same column chunk.
type DictionaryPageHeader struct {
	NumValues int32
	Encoding  Encoding
	IsSorted  bool
}

func (h *DictionaryPageHeader) decode(r *thrift.Reader) error {
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fh.Stop {
			return nil
		}
		switch fh.ID {
		case 1:
			if h.NumValues, err = r.ReadI32(); err != nil {
				return err
			}
		case 2:
			v, err := r.ReadI32()
			if err != nil {
				return err
			}
			h.Encoding = Encoding(v)
		case 3:
			h.IsSorted, err = r.ReadBool(fh.Type)
			if err != nil {
				return err
			}
		default:
			if err := r.Skip(fh.Type); err != nil {
				return err
			}
		}
	}
}

// PageHeader precedes every page (dictionary or data) in a column chunk. At
// most one of DataPageHeader, DictionaryPageHeader or DataPageHeaderV2 is
// set, matching Type.
type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	DataPageHeader       *DataPageHeader
	DictionaryPageHeader *DictionaryPageHeader
	DataPageHeaderV2     *DataPageHeaderV2
}

// DecodePageHeader reads one PageHeader struct from r.
func DecodePageHeader(r *thrift.Reader) (*PageHeader, error) {
	h := &PageHeader{}
	r.ReadStructBegin()
	defer r.ReadStructEnd()

	for {
		fh, err := r.ReadFieldBegin()
		if err != nil {
			return nil, err
		}
		if fh.Stop {
			return h, nil
		}
		switch fh.ID {
		case 1:
			v, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			h.Type = PageType(v)
		case 2:
			if h.UncompressedPageSize, err = r.ReadI32(); err != nil {
				return nil, err
			}
		case 3:
			if h.CompressedPageSize, err = r.ReadI32(); err != nil {
				return nil, err
			}
		case 5:
			h.DataPageHeader = new(DataPageHeader)
			if err := h.DataPageHeader.decode(r); err != nil {
				return nil, err
			}
		case 7:
			h.DictionaryPageHeader = new(DictionaryPageHeader)
			if err := h.DictionaryPageHeader.decode(r); err != nil {
				return nil, err
			}
		case 8:
			h.DataPageHeaderV2 = new(DataPageHeaderV2)
			if err := h.DataPageHeaderV2.decode(r); err != nil {
				return nil, err
			}
		default:
			// crc and index_page_header: not projected, skip.
			if err := r.Skip(fh.Type); err != nil {
				return nil, err
			}
		}
	}
}
