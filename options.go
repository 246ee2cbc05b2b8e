package parquet

import (
	"fmt"
	"strings"
)

// PredicateKind selects how a PathPredicate matches a leaf's dotted schema
// path.
type PredicateKind int

const (
	// PredicateExact matches a leaf whose dotted path equals Path exactly.
	PredicateExact PredicateKind = iota
	// PredicatePrefix matches a leaf whose dotted path starts with Path
	// followed by a "." or equals Path exactly.
	PredicatePrefix
	// PredicateGlob matches a leaf whose final path segment matches Path
	// as a "*"/"?" shell glob.
	PredicateGlob
)

// PathPredicate selects which schema leaves a read projects.
type PathPredicate struct {
	Kind PredicateKind
	Path string
}

func ExactPath(path string) PathPredicate  { return PathPredicate{Kind: PredicateExact, Path: path} }
func PrefixPath(path string) PathPredicate { return PathPredicate{Kind: PredicatePrefix, Path: path} }
func GlobPath(pattern string) PathPredicate {
	return PathPredicate{Kind: PredicateGlob, Path: pattern}
}

func (p PathPredicate) matches(path string) bool {
	switch p.Kind {
	case PredicateExact:
		return path == p.Path
	case PredicatePrefix:
		return path == p.Path || strings.HasPrefix(path, p.Path+".")
	case PredicateGlob:
		segments := strings.Split(path, ".")
		name := segments[len(segments)-1]
		ok, err := globMatch(p.Path, name)
		return err == nil && ok
	default:
		return false
	}
}

// globMatch implements "*"/"?" shell-style matching without touching the
// filesystem, since path.Match would otherwise treat "/" specially.
func globMatch(pattern, name string) (bool, error) {
	return matchGlob([]rune(pattern), []rune(name))
}

func matchGlob(pattern, name []rune) (bool, error) {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Try every split point; classic backtracking glob match.
			for i := 0; i <= len(name); i++ {
				if ok, err := matchGlob(pattern[1:], name[i:]); err != nil {
					return false, err
				} else if ok {
					return true, nil
				}
			}
			return false, nil
		case '?':
			if len(name) == 0 {
				return false, nil
			}
			pattern, name = pattern[1:], name[1:]
		default:
			if len(name) == 0 || pattern[0] != name[0] {
				return false, nil
			}
			pattern, name = pattern[1:], name[1:]
		}
	}
	return len(name) == 0, nil
}

// anyMatch reports whether any predicate in preds accepts path. A nil or
// empty preds accepts every path.
func anyMatch(preds []PathPredicate, path string) bool {
	if len(preds) == 0 {
		return true
	}
	for _, p := range preds {
		if p.matches(path) {
			return true
		}
	}
	return false
}

// ReaderOptions configures one ReadDataSet or IterRows call.
type ReaderOptions struct {
	// Offset is the number of logical rows to skip before the first
	// emitted row. Must be >= 0.
	Offset int64
	// Count is the maximum number of rows to emit; -1 means unbounded.
	Count int64
	// Columns restricts which schema leaves are projected; nil/empty means
	// all leaves.
	Columns []PathPredicate
}

// DefaultReaderOptions returns the default: no rows skipped, no limit
// (Count -1), every column projected. The zero ReaderOptions differs: its
// Count of 0 emits no rows.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Offset: 0, Count: -1}
}

func (o ReaderOptions) validate() error {
	if o.Offset < 0 {
		return fmt.Errorf("%w: offset %d must be >= 0", ErrInvalidArgument, o.Offset)
	}
	if o.Count < -1 {
		return fmt.Errorf("%w: count %d must be >= -1", ErrInvalidArgument, o.Count)
	}
	return nil
}

// ParquetOptions configures physical-to-logical decoding choices that apply
// across an entire Reader.
type ParquetOptions struct {
	// TreatByteArrayAsString controls how BYTE_ARRAY leaves without a UTF8
	// converted-type annotation are exposed. Leaves annotated UTF8 are
	// always decoded as Go strings regardless of this setting.
	TreatByteArrayAsStringOpt bool

	// Debug traces every ReadAt against the underlying byte source to
	// standard output. Expensive; intended for diagnosing a misbehaving source, not
	// for routine use.
	Debug bool
}

// DefaultParquetOptions matches the CORE's documented default: bare
// BYTE_ARRAY columns decode as Go strings.
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{TreatByteArrayAsStringOpt: true}
}

func (o ParquetOptions) TreatByteArrayAsString() bool { return o.TreatByteArrayAsStringOpt }
