package parquet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobalt-data/parquet-go/format"
)

func i32(v int32) *int32 { return &v }
func typ(t format.Type) *format.Type { return &t }
func rep(r format.FieldRepetitionType) *format.FieldRepetitionType { return &r }
func conv(c format.ConvertedType) *format.ConvertedType { return &c }

func TestBuildSchemaFlatStruct(t *testing.T) {
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(2)},
		{Name: "a", Type: typ(format.Int32), RepetitionType: rep(format.Required)},
		{Name: "b", Type: typ(format.ByteArray), RepetitionType: rep(format.Optional), ConvertedType: conv(format.UTF8)},
	}

	s, err := buildSchema(flat)
	require.NoError(t, err)
	require.Len(t, s.Leaves, 2)

	assert.Equal(t, "a", s.Leaves[0].PathString())
	assert.Equal(t, 0, s.Leaves[0].MaxDefinitionLevel)
	assert.Equal(t, 0, s.Leaves[0].MaxRepetitionLevel)
	assert.Equal(t, 0, s.Leaves[0].Index)

	assert.Equal(t, "b", s.Leaves[1].PathString())
	assert.Equal(t, 1, s.Leaves[1].MaxDefinitionLevel)
	assert.Equal(t, 1, s.Leaves[1].Index)
}

func TestBuildSchemaRepeatedPrimitive(t *testing.T) {
	// message schema { repeated int32 values; }
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "values", Type: typ(format.Int32), RepetitionType: rep(format.Repeated)},
	}

	s, err := buildSchema(flat)
	require.NoError(t, err)
	require.Len(t, s.Leaves, 1)
	assert.Equal(t, "values", s.Leaves[0].PathString())
	assert.Equal(t, 1, s.Leaves[0].MaxRepetitionLevel)
	assert.Equal(t, 1, s.Leaves[0].MaxDefinitionLevel)
}

func TestBuildSchemaThreeLevelList(t *testing.T) {
	// message schema {
	//   optional group values (LIST) {
	//     repeated group list {
	//       optional int32 element;
	//     }
	//   }
	// }
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "values", RepetitionType: rep(format.Optional), ConvertedType: conv(format.List), NumChildren: i32(1)},
		{Name: "list", RepetitionType: rep(format.Repeated), NumChildren: i32(1)},
		{Name: "element", Type: typ(format.Int32), RepetitionType: rep(format.Optional)},
	}

	s, err := buildSchema(flat)
	require.NoError(t, err)
	require.Len(t, s.Leaves, 1)

	leaf := s.Leaves[0]
	// "list" is synthetic and excluded from the path.
	assert.Equal(t, "values.element", leaf.PathString())
	// optional(values) + repeated(list) + optional(element) = 3
	assert.Equal(t, 3, leaf.MaxDefinitionLevel)
	assert.Equal(t, 1, leaf.MaxRepetitionLevel)
}

func TestBuildSchemaMap(t *testing.T) {
	// message schema {
	//   optional group m (MAP) {
	//     repeated group key_value {
	//       required binary key (UTF8);
	//       required int32 value;
	//     }
	//   }
	// }
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "m", RepetitionType: rep(format.Optional), ConvertedType: conv(format.Map), NumChildren: i32(1)},
		{Name: "key_value", RepetitionType: rep(format.Repeated), NumChildren: i32(2)},
		{Name: "key", Type: typ(format.ByteArray), RepetitionType: rep(format.Required), ConvertedType: conv(format.UTF8)},
		{Name: "value", Type: typ(format.Int32), RepetitionType: rep(format.Required)},
	}

	s, err := buildSchema(flat)
	require.NoError(t, err)
	require.Len(t, s.Leaves, 2)

	assert.Equal(t, "m.key", s.Leaves[0].PathString())
	assert.Equal(t, "m.value", s.Leaves[1].PathString())
	// optional(m) + repeated(key_value) + required(key) = 2
	assert.Equal(t, 2, s.Leaves[0].MaxDefinitionLevel)
	assert.Equal(t, 1, s.Leaves[0].MaxRepetitionLevel)
	// optional(m) + repeated(key_value) + required(value) = 2
	assert.Equal(t, 2, s.Leaves[1].MaxDefinitionLevel)
}

func TestBuildSchemaRejectsMalformedList(t *testing.T) {
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "values", RepetitionType: rep(format.Optional), ConvertedType: conv(format.List), NumChildren: i32(1)},
		// child not REPEATED: invalid.
		{Name: "list", Type: typ(format.Int32), RepetitionType: rep(format.Required)},
	}

	_, err := buildSchema(flat)
	assert.ErrorIs(t, err, ErrCorruptMetadata)
}

func TestBuildSchemaUUIDLogicalType(t *testing.T) {
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "id", Type: typ(format.FixedLenByteArray), TypeLength: i32(16), RepetitionType: rep(format.Required), LogicalType: &format.LogicalType{IsUUID: true}},
	}

	s, err := buildSchema(flat)
	require.NoError(t, err)
	require.Len(t, s.Leaves, 1)
	assert.True(t, s.Leaves[0].IsUUID)
}

func TestLeafByPath(t *testing.T) {
	flat := []format.SchemaElement{
		{Name: "schema", NumChildren: i32(1)},
		{Name: "a", Type: typ(format.Int32), RepetitionType: rep(format.Required)},
	}
	s, err := buildSchema(flat)
	require.NoError(t, err)

	assert.NotNil(t, s.LeafByPath("a"))
	assert.Nil(t, s.LeafByPath("nope"))
}
