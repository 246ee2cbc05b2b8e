package parquet

import "fmt"

// ValueKind discriminates the variants of the tagged-union Value type used
// to represent both primitive leaf values and the nested containers the
// repetition assembler builds on top of them.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindValuePrimitive
	KindValueList
	KindValueStruct
	KindValueMap
)

// MapEntry is one key/value pair of a KindValueMap Value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is a dynamically-typed column value: either null (tagged with the
// definition level at which it is absent), a decoded primitive, or one of
// the nested container shapes the repetition assembler produces.
//
// The zero Value is a null at definition level 0.
type Value struct {
	kind      ValueKind
	primitive interface{}
	list      []Value
	fields    map[string]Value
	entries   []MapEntry
	defLevel  int
}

// NullValue constructs a null tagged with the definition level at which it
// is absent; the repetition/schema assembler uses this to decide which
// nesting depth the null lives at.
func NullValue(defLevel int) Value {
	return Value{kind: KindNull, defLevel: defLevel}
}

// PrimitiveValue wraps a decoded scalar: bool, int32, int64, float32,
// float64, string, []byte, Int96Value, DecimalValue, or uuid.UUID.
func PrimitiveValue(v interface{}) Value {
	return Value{kind: KindValuePrimitive, primitive: v}
}

func ListValue(items []Value) Value {
	return Value{kind: KindValueList, list: items}
}

func StructValue(fields map[string]Value) Value {
	return Value{kind: KindValueStruct, fields: fields}
}

func MapValue(entries []MapEntry) Value {
	return Value{kind: KindValueMap, entries: entries}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// DefinitionLevel returns the level at which a null Value is absent. It is
// meaningless for non-null values.
func (v Value) DefinitionLevel() int { return v.defLevel }

// Primitive returns the wrapped scalar. Panics if v is not a primitive.
func (v Value) Primitive() interface{} {
	if v.kind != KindValuePrimitive {
		panic(fmt.Sprintf("parquet: Primitive called on a %v Value", v.kind))
	}
	return v.primitive
}

// List returns the wrapped element slice. Panics if v is not a list.
func (v Value) List() []Value {
	if v.kind != KindValueList {
		panic(fmt.Sprintf("parquet: List called on a %v Value", v.kind))
	}
	return v.list
}

// Struct returns the wrapped field map. Panics if v is not a struct.
func (v Value) Struct() map[string]Value {
	if v.kind != KindValueStruct {
		panic(fmt.Sprintf("parquet: Struct called on a %v Value", v.kind))
	}
	return v.fields
}

// Map returns the wrapped entry slice. Panics if v is not a map.
func (v Value) Map() []MapEntry {
	if v.kind != KindValueMap {
		panic(fmt.Sprintf("parquet: Map called on a %v Value", v.kind))
	}
	return v.entries
}

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindValuePrimitive:
		return "primitive"
	case KindValueList:
		return "list"
	case KindValueStruct:
		return "struct"
	case KindValueMap:
		return "map"
	default:
		return "unknown"
	}
}

// DecimalValue is a DECIMAL-annotated value: an unscaled integer together
// with the schema's recorded precision and scale, such that the logical
// value equals Unscaled * 10^-Scale.
type DecimalValue struct {
	Unscaled  int64
	Precision int32
	Scale     int32
}

// Int96Value is the decoded form of the deprecated INT96 physical type,
// split into its Julian day number and nanoseconds within that day.
type Int96Value struct {
	JulianDay  int32
	NanosOfDay int64
}
