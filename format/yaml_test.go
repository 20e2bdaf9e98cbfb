package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wiregen/errors"
)

const shapesDocument = `
Point:
  STRUCT:
    - x: I64
    - y: I64
Shape:
  ENUM:
    1:
      Empty: UNIT
    0:
      Circle:
        STRUCT:
          - center:
              TYPENAME: Point
          - radius: U32
    2:
      Poly:
        NEWTYPE:
          SEQ:
            TYPENAME: Point
    3:
      Pair:
        TUPLE:
          - TYPENAME: Point
          - TYPENAME: Point
Tag: UNITSTRUCT
Name:
  NEWTYPESTRUCT: STR
Digest:
  TUPLESTRUCT:
    - TUPLEARRAY:
        CONTENT: U8
        SIZE: 32
    - OPTION: CHAR
Index:
  NEWTYPESTRUCT:
    MAP:
      KEY: STR
      VALUE:
        TUPLE: [U128, BYTES]
`

func TestDecodeRegistry(t *testing.T) {
	r, err := DecodeRegistry([]byte(shapesDocument))
	require.NoError(t, err)

	assert.Equal(t, []string{"Digest", "Index", "Name", "Point", "Shape", "Tag"}, r.Names())

	point, _ := r.Get("Point")
	assert.Equal(t, Struct{Fields: []Named{Field("x", I64), Field("y", I64)}}, point)

	shape, _ := r.Get("Shape")
	assert.Equal(t, Enum{Variants: []Variant{
		{Index: 0, Name: "Circle", Payload: StructVariant{Fields: []Named{
			Field("center", Ref("Point")),
			Field("radius", U32),
		}}},
		{Index: 1, Name: "Empty", Payload: UnitVariant{}},
		{Index: 2, Name: "Poly", Payload: NewTypeVariant{Inner: SeqOf(Ref("Point"))}},
		{Index: 3, Name: "Pair", Payload: TupleVariant{Elems: []Format{Ref("Point"), Ref("Point")}}},
	}}, shape)

	tag, _ := r.Get("Tag")
	assert.Equal(t, UnitStruct{}, tag)

	digest, _ := r.Get("Digest")
	assert.Equal(t, TupleStruct{Elems: []Format{ArrayOf(U8, 32), OptionOf(Char)}}, digest)

	index, _ := r.Get("Index")
	assert.Equal(t, NewTypeStruct{Inner: MapOf(Str, TupleOf(U128, Bytes))}, index)
}

func TestDecodeRegistryJSON(t *testing.T) {
	r, err := DecodeRegistry([]byte(`{"A": {"STRUCT": [{"next": {"OPTION": {"TYPENAME": "A"}}}]}}`))
	require.NoError(t, err)

	a, _ := r.Get("A")
	assert.Equal(t, Struct{Fields: []Named{Field("next", OptionOf(Ref("A")))}}, a)
}

func TestDecodeRegistryEmpty(t *testing.T) {
	for _, doc := range []string{"", "\n", "~\n"} {
		r, err := DecodeRegistry([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, 0, r.Len())
	}
}

func TestDecodeRegistryMalformed(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{name: "not a mapping", doc: "- a\n- b\n", wantMsg: "expected a mapping"},
		{name: "unknown container tag", doc: "Foo: CLASS\n", wantMsg: `unknown container tag "CLASS"`},
		{name: "unknown primitive", doc: "Foo:\n  NEWTYPESTRUCT: U256\n", wantMsg: `unknown format "U256"`},
		{name: "duplicate container", doc: "Foo: UNITSTRUCT\nFoo: UNITSTRUCT\n", wantMsg: "duplicate key"},
		{name: "duplicate field", doc: "Foo:\n  STRUCT:\n    - x: U8\n    - x: U8\n", wantMsg: "duplicate field name"},
		{name: "bad variant index", doc: "E:\n  ENUM:\n    first:\n      A: UNIT\n", wantMsg: "invalid variant index"},
		{name: "map without value", doc: "M:\n  NEWTYPESTRUCT:\n    MAP:\n      KEY: STR\n", wantMsg: "missing VALUE"},
		{name: "two tags", doc: "Foo:\n  STRUCT: []\n  ENUM: {}\n", wantMsg: "expected exactly one tag"},
		{name: "bad array size", doc: "A:\n  NEWTYPESTRUCT:\n    TUPLEARRAY:\n      CONTENT: U8\n      SIZE: many\n", wantMsg: "invalid array size"},
		{name: "syntax error", doc: "Foo: [\n", wantMsg: "invalid registry document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRegistry([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedFormat), "error: %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeRegistryReportsLine(t *testing.T) {
	_, err := DecodeRegistry([]byte("Ok: UNITSTRUCT\nBad:\n  STRUCT:\n    - x: NUMBER\n"))
	require.Error(t, err)

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "Bad.x", me.Path)
	assert.Equal(t, 4, me.Line)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shapesDocument), 0644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Len())

	_, err = LoadRegistry(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	r, err = ReadRegistry(strings.NewReader("Foo: UNITSTRUCT\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, r.Names())
}
