// Package format models a registry of named container types and the type
// shapes (formats) that their fields and variants are made of.
//
// A Registry is immutable once built: NewRegistry deep-copies its input.
// Containers returned by Get share storage with the registry and must be
// treated as read-only.
package format

import "fmt"

// Kind identifies the shape of a Format.
type Kind uint8

const (
	KindUnit Kind = iota + 1
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes

	KindTypeName
	KindOption
	KindSeq
	KindMap
	KindTuple
	KindTupleArray
)

var kindNames = map[Kind]string{
	KindUnit:       "UNIT",
	KindBool:       "BOOL",
	KindI8:         "I8",
	KindI16:        "I16",
	KindI32:        "I32",
	KindI64:        "I64",
	KindI128:       "I128",
	KindU8:         "U8",
	KindU16:        "U16",
	KindU32:        "U32",
	KindU64:        "U64",
	KindU128:       "U128",
	KindF32:        "F32",
	KindF64:        "F64",
	KindChar:       "CHAR",
	KindStr:        "STR",
	KindBytes:      "BYTES",
	KindTypeName:   "TYPENAME",
	KindOption:     "OPTION",
	KindSeq:        "SEQ",
	KindMap:        "MAP",
	KindTuple:      "TUPLE",
	KindTupleArray: "TUPLEARRAY",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsPrimitive reports whether k is a scalar kind.
func (k Kind) IsPrimitive() bool {
	return k >= KindUnit && k <= KindBytes
}

// Format is the shape of a field, a variant payload element or a nested
// collection element. The set of implementations is closed.
type Format interface {
	Kind() Kind
	isFormat()
}

// Primitive is a scalar format. Its value is the Kind it stands for.
type Primitive Kind

// Primitive formats.
var (
	Unit  Format = Primitive(KindUnit)
	Bool  Format = Primitive(KindBool)
	I8    Format = Primitive(KindI8)
	I16   Format = Primitive(KindI16)
	I32   Format = Primitive(KindI32)
	I64   Format = Primitive(KindI64)
	I128  Format = Primitive(KindI128)
	U8    Format = Primitive(KindU8)
	U16   Format = Primitive(KindU16)
	U32   Format = Primitive(KindU32)
	U64   Format = Primitive(KindU64)
	U128  Format = Primitive(KindU128)
	F32   Format = Primitive(KindF32)
	F64   Format = Primitive(KindF64)
	Char  Format = Primitive(KindChar)
	Str   Format = Primitive(KindStr)
	Bytes Format = Primitive(KindBytes)
)

func (p Primitive) Kind() Kind     { return Kind(p) }
func (p Primitive) String() string { return Kind(p).String() }
func (Primitive) isFormat()        {}

// TypeName references a container by name, either one defined in the
// registry or an external definition.
type TypeName struct {
	Name string
}

// Option is a nullable wrapper.
type Option struct {
	Elem Format
}

// Seq is a variable-length homogeneous sequence.
type Seq struct {
	Elem Format
}

// Map is an associative collection ordered by key.
type Map struct {
	Key   Format
	Value Format
}

// Tuple is a fixed-size heterogeneous list.
type Tuple struct {
	Elems []Format
}

// TupleArray is a fixed-size homogeneous array; the size is part of the type.
type TupleArray struct {
	Content Format
	Size    int
}

func (TypeName) Kind() Kind   { return KindTypeName }
func (Option) Kind() Kind     { return KindOption }
func (Seq) Kind() Kind        { return KindSeq }
func (Map) Kind() Kind        { return KindMap }
func (Tuple) Kind() Kind      { return KindTuple }
func (TupleArray) Kind() Kind { return KindTupleArray }

func (TypeName) isFormat()   {}
func (Option) isFormat()     {}
func (Seq) isFormat()        {}
func (Map) isFormat()        {}
func (Tuple) isFormat()      {}
func (TupleArray) isFormat() {}

// Ref is shorthand for TypeName{Name: name}.
func Ref(name string) Format { return TypeName{Name: name} }

// OptionOf wraps f in an Option.
func OptionOf(f Format) Format { return Option{Elem: f} }

// SeqOf wraps f in a Seq.
func SeqOf(f Format) Format { return Seq{Elem: f} }

// MapOf builds a Map format.
func MapOf(key, value Format) Format { return Map{Key: key, Value: value} }

// TupleOf builds a Tuple format.
func TupleOf(elems ...Format) Format { return Tuple{Elems: elems} }

// ArrayOf builds a TupleArray format.
func ArrayOf(content Format, size int) Format { return TupleArray{Content: content, Size: size} }

// Named is a struct field or struct-variant field. Order is significant for
// binary layout.
type Named struct {
	Name   string
	Format Format
}

// Field is shorthand for Named{Name: name, Format: f}.
func Field(name string, f Format) Named { return Named{Name: name, Format: f} }
