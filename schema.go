package parquet

import (
	"fmt"
	"strings"

	"github.com/cobalt-data/parquet-go/format"
)

// NodeKind distinguishes the logical shapes a schema node can take once the
// LIST/MAP group-recognition rules have been applied to the flat, raw
// Thrift tree.
type NodeKind int

const (
	KindPrimitive NodeKind = iota
	KindGroup
	KindList
	KindMap
)

func (k NodeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindGroup:
		return "group"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Node is one node of the reconstructed LogicalSchema tree.
type Node struct {
	Name          string
	Kind          NodeKind
	Repetition    format.FieldRepetitionType
	Type          *format.Type
	ConvertedType *format.ConvertedType
	IsUUID        bool
	TypeLength    int32
	Precision     int32
	Scale         int32
	Children      []*Node

	// Set only for leaves (Kind == KindPrimitive).
	Path               []string
	MaxDefinitionLevel int
	MaxRepetitionLevel int

	// Index is the leaf's position in Schema.Leaves, which by the format's
	// invariant is also its position in every RowGroup's Columns slice.
	Index int
}

func (n *Node) IsLeaf() bool { return n.Kind == KindPrimitive }

// PathString returns the leaf's dotted path, e.g. "a.b.c".
func (n *Node) PathString() string { return strings.Join(n.Path, ".") }

// Schema is the reconstructed hierarchical LogicalSchema, together with a
// precomputed pre-order leaf list matching the flat column-chunk order row
// groups carry.
type Schema struct {
	Root   *Node
	Leaves []*Node
}

// LeafByPath returns the leaf whose dotted path equals path, or nil.
func (s *Schema) LeafByPath(path string) *Node {
	for _, l := range s.Leaves {
		if l.PathString() == path {
			return l
		}
	}
	return nil
}

// reserved three-level list wrapper names recognized by the classic
// parquet-format LIST annotation convention.
var listWrapperNames = map[string]bool{
	"list":  true,
	"array": true,
	"bag":   true,
	"tuple": true,
}

// buildSchema reconstructs the hierarchical LogicalSchema from the flat,
// pre-order SchemaElement list stored in the file footer.
func buildSchema(flat []format.SchemaElement) (*Schema, error) {
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: schema has no elements", ErrCorruptMetadata)
	}

	idx := 0
	root, err := buildNode(flat, &idx)
	if err != nil {
		return nil, err
	}
	if idx != len(flat) {
		return nil, fmt.Errorf("%w: schema declared %d elements but tree construction consumed %d", ErrCorruptMetadata, len(flat), idx)
	}

	if err := resolveGroupKinds(root); err != nil {
		return nil, err
	}

	s := &Schema{Root: root}
	// The root message's own synthetic name is not part of any leaf's
	// dotted path; only its children contribute path segments.
	for _, c := range root.Children {
		walkSchema(c, nil, 0, 0, &s.Leaves)
	}
	return s, nil
}

// buildNode consumes one SchemaElement (and, recursively, its declared
// children) from flat starting at *idx.
func buildNode(flat []format.SchemaElement, idx *int) (*Node, error) {
	if *idx >= len(flat) {
		return nil, fmt.Errorf("%w: schema element list exhausted while consuming children", ErrCorruptMetadata)
	}
	e := flat[*idx]
	*idx++

	n := &Node{
		Name:          e.Name,
		Type:          e.Type,
		ConvertedType: e.ConvertedType,
		IsUUID:        e.LogicalType != nil && e.LogicalType.IsUUID,
	}
	if e.RepetitionType != nil {
		n.Repetition = *e.RepetitionType
	} else {
		n.Repetition = format.Required
	}
	if e.TypeLength != nil {
		n.TypeLength = *e.TypeLength
	}
	if e.Precision != nil {
		n.Precision = *e.Precision
	}
	if e.Scale != nil {
		n.Scale = *e.Scale
	}

	numChildren := int32(0)
	if e.NumChildren != nil {
		numChildren = *e.NumChildren
	}

	if numChildren > 0 {
		n.Kind = KindGroup
		n.Children = make([]*Node, numChildren)
		for i := range n.Children {
			child, err := buildNode(flat, idx)
			if err != nil {
				return nil, err
			}
			n.Children[i] = child
		}
	} else {
		n.Kind = KindPrimitive
		if n.Type == nil {
			return nil, fmt.Errorf("%w: leaf %q has no physical type", ErrCorruptMetadata, n.Name)
		}
	}

	return n, nil
}

// resolveGroupKinds walks the tree bottom-up, reclassifying LIST/MAP
// annotated groups per the two-level/three-level shape rules.
func resolveGroupKinds(n *Node) error {
	for _, c := range n.Children {
		if err := resolveGroupKinds(c); err != nil {
			return err
		}
	}

	if n.Kind != KindGroup || n.ConvertedType == nil {
		return nil
	}

	switch *n.ConvertedType {
	case format.List:
		if len(n.Children) != 1 {
			return fmt.Errorf("%w: LIST group %q must have exactly one child, has %d", ErrCorruptMetadata, n.Name, len(n.Children))
		}
		if n.Children[0].Repetition != format.Repeated {
			return fmt.Errorf("%w: LIST group %q child %q must be REPEATED", ErrCorruptMetadata, n.Name, n.Children[0].Name)
		}
		n.Kind = KindList

	case format.Map, format.MapKeyValue:
		if len(n.Children) != 1 {
			return fmt.Errorf("%w: MAP group %q must have exactly one child, has %d", ErrCorruptMetadata, n.Name, len(n.Children))
		}
		kv := n.Children[0]
		if kv.Repetition != format.Repeated {
			return fmt.Errorf("%w: MAP group %q key/value child must be REPEATED", ErrCorruptMetadata, n.Name)
		}
		if len(kv.Children) != 2 {
			return fmt.Errorf("%w: MAP group %q key/value child must have exactly 2 children, has %d", ErrCorruptMetadata, n.Name, len(kv.Children))
		}
		for _, c := range kv.Children {
			if c.Repetition != format.Required {
				return fmt.Errorf("%w: MAP group %q key/value children must be REQUIRED", ErrCorruptMetadata, n.Name)
			}
		}
		n.Kind = KindMap
	}

	return nil
}

// walkSchema recomputes definition/repetition levels and dotted paths for
// every leaf, applying the synthetic-wrapper path exclusion rules for LIST
// and MAP groups.
func walkSchema(n *Node, path []string, defLevel, repLevel int, leaves *[]*Node) {
	switch n.Repetition {
	case format.Optional:
		defLevel++
	case format.Repeated:
		defLevel++
		repLevel++
	}

	switch n.Kind {
	case KindPrimitive:
		n.Path = append(append([]string{}, path...), n.Name)
		n.MaxDefinitionLevel = defLevel
		n.MaxRepetitionLevel = repLevel
		n.Index = len(*leaves)
		*leaves = append(*leaves, n)

	case KindGroup:
		childPath := append(append([]string{}, path...), n.Name)
		for _, c := range n.Children {
			walkSchema(c, childPath, defLevel, repLevel, leaves)
		}

	case KindList:
		childPath := append(append([]string{}, path...), n.Name)
		wrapper := n.Children[0]

		// The wrapper's own REPEATED-ness always counts toward the level,
		// whether or not its name survives into the path.
		wrapperDef, wrapperRep := defLevel, repLevel
		if wrapper.Repetition == format.Optional {
			wrapperDef++
		} else if wrapper.Repetition == format.Repeated {
			wrapperDef++
			wrapperRep++
		}

		if listWrapperNames[wrapper.Name] && len(wrapper.Children) == 1 {
			// Three-level shape: wrapper's name is synthetic, descend into
			// the real element using the levels already advanced past it.
			walkSchema(wrapper.Children[0], childPath, wrapperDef, wrapperRep, leaves)
		} else {
			// Two-level shape: the repeated child is itself the element,
			// and unlike the three-level wrapper its name is real, not
			// synthetic, so it stays in the path.
			elementPath := append(append([]string{}, childPath...), wrapper.Name)
			if wrapper.Kind == KindPrimitive {
				wrapper.Path = elementPath
				wrapper.MaxDefinitionLevel = wrapperDef
				wrapper.MaxRepetitionLevel = wrapperRep
				wrapper.Index = len(*leaves)
				*leaves = append(*leaves, wrapper)
			} else {
				for _, c := range wrapper.Children {
					walkSchema(c, elementPath, wrapperDef, wrapperRep, leaves)
				}
			}
		}

	case KindMap:
		childPath := append(append([]string{}, path...), n.Name)
		kv := n.Children[0]

		kvDef, kvRep := defLevel, repLevel
		if kv.Repetition == format.Optional {
			kvDef++
		} else if kv.Repetition == format.Repeated {
			kvDef++
			kvRep++
		}

		for _, c := range kv.Children {
			walkSchema(c, childPath, kvDef, kvRep, leaves)
		}
	}
}
