package parquet

import (
	"fmt"
	"io"

	"github.com/cobalt-data/parquet-go/format"
)

// Reader is the entry point of the CORE: it owns the decoded footer and
// reconstructed schema of one Parquet file and exposes both a column-major
// and a row-major read path over it.
//
// A Reader is single-owner with respect to its byte source: the source's
// implicit cursor (via ReadAt, so really just the underlying file
// descriptor/seek position under concurrent use) is not safe to share
// across goroutines reading the same Reader concurrently.
type Reader struct {
	source io.ReaderAt
	size   int64
	meta   *format.FileMetaData
	schema *Schema
	opts   ParquetOptions
}

// Open validates the magic markers, decodes the footer, and reconstructs
// the logical schema. opts is optional; when it is omitted,
// DefaultParquetOptions is used. A value passed explicitly is used as
// given, so a zero ParquetOptions turns TreatByteArrayAsString off.
func Open(source io.ReaderAt, size int64, opts ...ParquetOptions) (*Reader, error) {
	popts := DefaultParquetOptions()
	if len(opts) > 0 {
		popts = opts[0]
	}

	meta, err := readFooter(source, size)
	if err != nil {
		return nil, err
	}

	schema, err := buildSchema(meta.Schema)
	if err != nil {
		return nil, err
	}

	for i := range meta.RowGroups {
		if len(meta.RowGroups[i].Columns) != len(schema.Leaves) {
			return nil, fmt.Errorf("%w: row group %d has %d column chunks, schema has %d leaves", ErrCorruptMetadata, i, len(meta.RowGroups[i].Columns), len(schema.Leaves))
		}
	}

	return &Reader{source: source, size: size, meta: meta, schema: schema, opts: popts}, nil
}

// Schema returns the reconstructed logical schema.
func (r *Reader) Schema() *Schema { return r.schema }

// TotalRows returns the file's declared row count.
func (r *Reader) TotalRows() int64 { return r.meta.NumRows }

func (r *Reader) projectedLeaves(predicates []PathPredicate) []*Node {
	var out []*Node
	for _, leaf := range r.schema.Leaves {
		if anyMatch(predicates, leaf.PathString()) {
			out = append(out, leaf)
		}
	}
	return out
}

// prunedSchema builds a Schema whose Leaves (and a synthetic flat Root)
// contain only the projected leaves. The original group/list/map structure
// of the pruned-away leaves is not reconstructed; callers that need the
// exact original tree should filter Reader.Schema().Leaves directly.
func prunedSchema(leaves []*Node) *Schema {
	root := &Node{Name: "", Kind: KindGroup, Children: leaves}
	return &Schema{Root: root, Leaves: leaves}
}

// DataSet is the column-major materialization of a read: one nested value
// sequence per projected leaf, concatenated across row groups, indexed by
// the leaf's dotted path.
type DataSet struct {
	Schema  *Schema
	Columns map[string][]Value
	NumRows int64
}

// ReadDataSet eagerly decodes every projected column across every row
// group and returns the column-major result.
func (r *Reader) ReadDataSet(opts ReaderOptions) (*DataSet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	leaves := r.projectedLeaves(opts.Columns)

	columns := make(map[string][]Value, len(leaves))
	for _, leaf := range leaves {
		columns[leaf.PathString()] = nil
	}

	for g := range r.meta.RowGroups {
		rg := &r.meta.RowGroups[g]
		for _, leaf := range leaves {
			chunk := &rg.Columns[leaf.Index]
			cv, err := decodeChunk(leaf, chunk, r.source, r.size, r.opts)
			if err != nil {
				return nil, &ColumnReadError{Path: leaf.PathString(), Cause: err}
			}
			nested := Assemble(cv.values, cv.repLevels, leaf.MaxRepetitionLevel)
			columns[leaf.PathString()] = append(columns[leaf.PathString()], nested...)
		}
	}

	total := r.meta.NumRows
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Count >= 0 && start+opts.Count < end {
		end = start + opts.Count
	}
	if end < start {
		end = start
	}

	for path, vals := range columns {
		lo, hi := start, end
		if int64(len(vals)) < hi {
			hi = int64(len(vals))
		}
		if lo > hi {
			lo = hi
		}
		columns[path] = vals[lo:hi]
	}

	return &DataSet{Schema: prunedSchema(leaves), Columns: columns, NumRows: end - start}, nil
}

// Row is one logical record produced by a RowIterator: a value (or a
// nested List/Null Value for repeated/optional leaves) per projected
// column, keyed by dotted path. A leaf excluded by the projection is
// simply absent from Values, not nulled.
type Row struct {
	Values map[string]Value
}

// RowIterator lazily walks row groups in file order, decoding and zipping
// one windowed slice of rows at a time per the (offset, count) pagination
// semantics: a row group entirely outside the requested window is never
// opened.
type RowIterator struct {
	rd       *Reader
	leaves   []*Node
	opts     ReaderOptions
	groupIdx int
	startRow int64
	emitted  int64
	buf      []*Row
	cursor   int
}

// IterRows returns a lazy row-major iterator over the projected columns.
func (r *Reader) IterRows(opts ReaderOptions) (*RowIterator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &RowIterator{
		rd:     r,
		leaves: r.projectedLeaves(opts.Columns),
		opts:   opts,
	}, nil
}

// Next returns the next row, or io.EOF once the iterator is exhausted.
func (it *RowIterator) Next() (*Row, error) {
	for it.cursor >= len(it.buf) {
		if it.groupIdx >= len(it.rd.meta.RowGroups) {
			return nil, io.EOF
		}
		it.buf = nil
		it.cursor = 0
		if err := it.fillNextGroup(); err != nil {
			return nil, err
		}
	}
	row := it.buf[it.cursor]
	it.cursor++
	return row, nil
}

// fillNextGroup advances past any row groups entirely outside the
// requested window, then decodes and zips the window of the first row
// group that contributes at least one row. It leaves it.buf empty (and
// it.groupIdx == len(RowGroups)) if no further group contributes.
func (it *RowIterator) fillNextGroup() error {
	S := it.opts.Offset
	L := it.opts.Count

	for it.groupIdx < len(it.rd.meta.RowGroups) {
		g := it.groupIdx
		rg := &it.rd.meta.RowGroups[g]
		n := rg.NumRows
		pos := it.startRow

		it.groupIdx++
		it.startRow += n

		if pos+n <= S || (L != -1 && it.emitted >= L) {
			continue
		}

		localOffset := int64(0)
		if S > pos {
			localOffset = S - pos
		}
		want := n - localOffset
		if L != -1 {
			if remaining := L - it.emitted; remaining < want {
				want = remaining
			}
		}
		if want <= 0 {
			continue
		}

		rows := make([]*Row, want)
		for i := range rows {
			rows[i] = &Row{Values: make(map[string]Value, len(it.leaves))}
		}

		for _, leaf := range it.leaves {
			chunk := &rg.Columns[leaf.Index]
			cv, err := decodeChunk(leaf, chunk, it.rd.source, it.rd.size, it.rd.opts)
			if err != nil {
				return &ColumnReadError{Path: leaf.PathString(), Cause: err}
			}
			nested := Assemble(cv.values, cv.repLevels, leaf.MaxRepetitionLevel)
			if int64(len(nested)) < localOffset+want {
				return &ColumnReadError{
					Path:  leaf.PathString(),
					Cause: fmt.Errorf("%w: decoded %d rows, row group %d declares %d", ErrCorruptData, len(nested), g, n),
				}
			}
			window := nested[localOffset : localOffset+want]
			for i, v := range window {
				rows[i].Values[leaf.PathString()] = v
			}
		}

		it.buf = rows
		it.emitted += want
		return nil
	}

	return nil
}
