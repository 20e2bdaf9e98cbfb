package format

// ContainerKind identifies the shape of a Container.
type ContainerKind uint8

const (
	ContainerUnitStruct ContainerKind = iota + 1
	ContainerNewTypeStruct
	ContainerTupleStruct
	ContainerStruct
	ContainerEnum
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerUnitStruct:
		return "UNITSTRUCT"
	case ContainerNewTypeStruct:
		return "NEWTYPESTRUCT"
	case ContainerTupleStruct:
		return "TUPLESTRUCT"
	case ContainerStruct:
		return "STRUCT"
	case ContainerEnum:
		return "ENUM"
	}
	return "UNKNOWN"
}

// Container is a named top-level type definition.
type Container interface {
	ContainerKind() ContainerKind
	isContainer()
}

// UnitStruct carries no data.
type UnitStruct struct{}

// NewTypeStruct wraps exactly one format.
type NewTypeStruct struct {
	Inner Format
}

// TupleStruct wraps an ordered list of formats.
type TupleStruct struct {
	Elems []Format
}

// Struct is an ordered list of named fields.
type Struct struct {
	Fields []Named
}

// Enum is a set of variants. After NewRegistry, Variants is sorted by Index.
type Enum struct {
	Variants []Variant
}

func (UnitStruct) ContainerKind() ContainerKind    { return ContainerUnitStruct }
func (NewTypeStruct) ContainerKind() ContainerKind { return ContainerNewTypeStruct }
func (TupleStruct) ContainerKind() ContainerKind   { return ContainerTupleStruct }
func (Struct) ContainerKind() ContainerKind        { return ContainerStruct }
func (Enum) ContainerKind() ContainerKind          { return ContainerEnum }

func (UnitStruct) isContainer()    {}
func (NewTypeStruct) isContainer() {}
func (TupleStruct) isContainer()   {}
func (Struct) isContainer()        {}
func (Enum) isContainer()          {}

// Variant is one alternative of an Enum, identified on the wire by Index.
type Variant struct {
	Index   uint32
	Name    string
	Payload Payload
}

// Payload is the data carried by an enum variant.
type Payload interface {
	isPayload()
}

// UnitVariant carries no data.
type UnitVariant struct{}

// NewTypeVariant carries exactly one format.
type NewTypeVariant struct {
	Inner Format
}

// TupleVariant carries an ordered list of formats.
type TupleVariant struct {
	Elems []Format
}

// StructVariant carries named fields.
type StructVariant struct {
	Fields []Named
}

func (UnitVariant) isPayload()    {}
func (NewTypeVariant) isPayload() {}
func (TupleVariant) isPayload()   {}
func (StructVariant) isPayload()  {}

// IsCStyle reports whether every variant of e is a unit variant. An enum
// without variants is not C-style.
func (e Enum) IsCStyle() bool {
	if len(e.Variants) == 0 {
		return false
	}
	for _, v := range e.Variants {
		if _, ok := v.Payload.(UnitVariant); !ok {
			return false
		}
	}
	return true
}

// Variant returns the variant with the given discriminant.
func (e Enum) Variant(index uint32) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Index == index {
			return v, true
		}
	}
	return Variant{}, false
}
