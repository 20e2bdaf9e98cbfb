// Package python installs generated Python packages. Containers become frozen
// dataclasses with explicit serialize/deserialize methods that drive the
// runtime serializers installed next to them.
package python

import (
	"fmt"
	"io"
	"strings"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/typegen/util"
)

// pythonKeywords are reserved words in Python that need special handling
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	// Soft keywords (Python 3.10+)
	"match": true, "case": true, "type": true,
}

// toPythonIdent converts an identifier to a valid Python identifier
// Adds underscore suffix for Python keywords
func toPythonIdent(s string) string {
	return util.EscapeReserved(s, pythonKeywords, func(s string) string { return s + "_" })
}

// primitive annotation and serializer method suffix per kind
var primitiveTypes = map[format.Kind]struct{ annotation, method string }{
	format.KindUnit:  {"st.unit", "unit"},
	format.KindBool:  {"bool", "bool"},
	format.KindI8:    {"st.int8", "i8"},
	format.KindI16:   {"st.int16", "i16"},
	format.KindI32:   {"st.int32", "i32"},
	format.KindI64:   {"st.int64", "i64"},
	format.KindI128:  {"st.int128", "i128"},
	format.KindU8:    {"st.uint8", "u8"},
	format.KindU16:   {"st.uint16", "u16"},
	format.KindU32:   {"st.uint32", "u32"},
	format.KindU64:   {"st.uint64", "u64"},
	format.KindU128:  {"st.uint128", "u128"},
	format.KindF32:   {"st.float32", "f32"},
	format.KindF64:   {"st.float64", "f64"},
	format.KindChar:  {"st.char", "char"},
	format.KindStr:   {"str", "str"},
	format.KindBytes: {"bytes", "bytes"},
}

// encoding runtime module and class prefix
var encodingRuntimes = map[codegen.Encoding]struct{ module, class string }{
	codegen.Bincode: {"bincode", "Bincode"},
	codegen.BCS:     {"bcs", "Bcs"},
}

type emitter struct {
	plan *analyzer.Plan
	cfg  *codegen.Config
	sb   strings.Builder
}

// GenerateModule renders the __init__.py source for plan.
func GenerateModule(plan *analyzer.Plan, cfg *codegen.Config) string {
	e := &emitter{plan: plan, cfg: cfg}
	e.header()
	for _, name := range plan.Order() {
		c, _ := plan.Registry().Get(name)
		e.printf("\n")
		e.container(name, c)
	}
	return e.sb.String()
}

// WriteModule writes the generated source to w.
func WriteModule(w io.Writer, plan *analyzer.Plan, cfg *codegen.Config) error {
	_, err := io.WriteString(w, GenerateModule(plan, cfg))
	return err
}

func (e *emitter) printf(tmpl string, args ...interface{}) {
	fmt.Fprintf(&e.sb, tmpl, args...)
}

func (e *emitter) serializing() bool {
	return e.cfg.Serialization()
}

func (e *emitter) cStyle(c format.Enum) bool {
	return e.cfg.CStyleEnums() && c.IsCStyle()
}

func (e *emitter) header() {
	e.printf("# Code generated by wiregen. DO NOT EDIT.\n")
	e.printf("from __future__ import annotations\n\n")
	e.printf("import typing\n")
	e.printf("from dataclasses import dataclass\n")
	if e.usesIntEnum() {
		e.printf("import enum\n")
	}
	e.printf("\nimport serde_types as st\n")
	if e.serializing() {
		e.printf("import serde_binary as sb\n")
		for _, enc := range e.cfg.Encodings() {
			e.printf("import %s\n", encodingRuntimes[enc].module)
		}
	}
	for _, module := range e.cfg.ExternalModules() {
		path := module
		if ns, ok := e.cfg.Namespace(module); ok {
			path = ns
		}
		names := e.cfg.ExternalNames(module)
		imports := make([]string, len(names))
		for i, name := range names {
			imports[i] = name
			if ident := toPythonIdent(name); ident != name {
				imports[i] = name + " as " + ident
			}
		}
		e.printf("from %s import %s\n", path, strings.Join(imports, ", "))
	}
}

func (e *emitter) usesIntEnum() bool {
	for _, name := range e.plan.Order() {
		if c, ok := e.plan.Registry().Get(name); ok {
			if en, isEnum := c.(format.Enum); isEnum && e.cStyle(en) {
				return true
			}
		}
	}
	return false
}

// docstring renders a class docstring at indent.
func (e *emitter) docstring(indent string, name codegen.QualifiedName) bool {
	doc, ok := e.cfg.Comment(name)
	if !ok {
		return false
	}
	doc = strings.ReplaceAll(doc, `\`, `\\`)
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	lines := strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
	if len(lines) == 1 {
		e.printf("%s\"\"\"%s\"\"\"\n", indent, lines[0])
		return true
	}
	e.printf("%s\"\"\"%s\n", indent, lines[0])
	for _, line := range lines[1:] {
		if line == "" {
			e.printf("\n")
		} else {
			e.printf("%s%s\n", indent, line)
		}
	}
	e.printf("%s\"\"\"\n", indent)
	return true
}

// comments renders field and variant docs as #: comments.
func (e *emitter) comments(indent string, name codegen.QualifiedName) {
	doc, ok := e.cfg.Comment(name)
	if !ok {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(doc, "\n"), "\n") {
		if line == "" {
			e.printf("%s#:\n", indent)
		} else {
			e.printf("%s#: %s\n", indent, line)
		}
	}
}

func (e *emitter) customCode(indent string, name codegen.QualifiedName) {
	code, ok := e.cfg.CustomCode(name)
	if !ok {
		return
	}
	e.printf("\n")
	for _, line := range strings.Split(strings.TrimSuffix(code, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			e.printf("\n")
		} else {
			e.printf("%s%s\n", indent, line)
		}
	}
}

// field is one dataclass attribute with the format it is encoded as.
type field struct {
	name   string
	qname  codegen.QualifiedName
	format format.Format
}

// containerFields maps struct-like shapes onto dataclass attributes. Newtype
// and tuple shapes store their content in a single "value" attribute.
func containerFields(parent codegen.QualifiedName, c interface{}) []field {
	switch c := c.(type) {
	case format.NewTypeStruct:
		return []field{{name: "value", format: c.Inner}}
	case format.NewTypeVariant:
		return []field{{name: "value", format: c.Inner}}
	case format.TupleStruct:
		return []field{{name: "value", format: format.Tuple{Elems: c.Elems}}}
	case format.TupleVariant:
		return []field{{name: "value", format: format.Tuple{Elems: c.Elems}}}
	case format.Struct:
		return namedFields(parent, c.Fields)
	case format.StructVariant:
		return namedFields(parent, c.Fields)
	}
	return nil
}

func namedFields(parent codegen.QualifiedName, named []format.Named) []field {
	out := make([]field, len(named))
	for i, f := range named {
		out[i] = field{name: toPythonIdent(f.Name), qname: parent.Child(f.Name), format: f.Format}
	}
	return out
}

func (e *emitter) container(name string, c format.Container) {
	qname := e.cfg.QualifiedName(name)
	if en, ok := c.(format.Enum); ok {
		if e.cStyle(en) {
			e.intEnum(name, qname, en)
		} else {
			e.enum(name, qname, en)
		}
		return
	}

	fields := containerFields(qname, c)
	class := toPythonIdent(name)
	e.printf("@dataclass(frozen=True)\n")
	e.printf("class %s:\n", class)
	body := e.docstring("    ", qname)
	for _, f := range fields {
		e.comments("    ", f.qname)
		e.printf("    %s: %s\n", f.name, e.annotation(f.format))
		body = true
	}
	if e.serializing() {
		e.printf("\n")
		e.printf("    def serialize(self, serializer: sb.BinarySerializer) -> None:\n")
		e.printf("        serializer.increase_container_depth()\n")
		e.serializeFields("        ", fields)
		e.printf("        serializer.decrease_container_depth()\n\n")
		e.printf("    @staticmethod\n")
		e.printf("    def deserialize(deserializer: sb.BinaryDeserializer) -> %s:\n", class)
		e.printf("        deserializer.increase_container_depth()\n")
		e.construct("        ", class, fields)
		e.printf("        deserializer.decrease_container_depth()\n")
		e.printf("        return value\n")
		e.encodingHelpers(class)
		body = true
	}
	if !body && !e.hasCustomCode(qname) {
		e.printf("    pass\n")
	}
	e.customCode("    ", qname)
}

func (e *emitter) hasCustomCode(name codegen.QualifiedName) bool {
	_, ok := e.cfg.CustomCode(name)
	return ok
}

func (e *emitter) serializeFields(indent string, fields []field) {
	for _, f := range fields {
		e.printf("%s%s\n", indent, e.serializeExpr(f.format, "self."+f.name, 0))
	}
}

// construct emits "value = Name(...)" reading each field in order. Keyword
// arguments evaluate left to right, which keeps the wire order.
func (e *emitter) construct(indent, class string, fields []field) {
	if len(fields) == 0 {
		e.printf("%svalue = %s()\n", indent, class)
		return
	}
	e.printf("%svalue = %s(\n", indent, class)
	for _, f := range fields {
		e.printf("%s    %s=%s,\n", indent, f.name, e.deserializeExpr(f.format, 0))
	}
	e.printf("%s)\n", indent)
}

func (e *emitter) enum(container string, qname codegen.QualifiedName, c format.Enum) {
	name := toPythonIdent(container)
	e.printf("class %s:\n", name)
	e.docstring("    ", qname)
	e.printf("    VARIANTS_MAP: typing.ClassVar[typing.Dict[int, typing.Type[%s]]] = {}\n", name)
	if e.serializing() {
		e.printf("\n")
		e.printf("    def serialize(self, serializer: sb.BinarySerializer) -> None:\n")
		e.printf("        serializer.increase_container_depth()\n")
		e.printf("        serializer.serialize_variant_index(self.INDEX)\n")
		e.printf("        self.serialize_payload(serializer)\n")
		e.printf("        serializer.decrease_container_depth()\n\n")
		e.printf("    @staticmethod\n")
		e.printf("    def deserialize(deserializer: sb.BinaryDeserializer) -> %s:\n", name)
		e.printf("        deserializer.increase_container_depth()\n")
		e.printf("        index = deserializer.deserialize_variant_index()\n")
		e.printf("        variant = %s.VARIANTS_MAP.get(index)\n", name)
		e.printf("        if variant is None:\n")
		e.printf("            raise st.DeserializationError(\"Unknown variant index for %s: \" + str(index))\n", container)
		e.printf("        value = variant.deserialize_payload(deserializer)\n")
		e.printf("        deserializer.decrease_container_depth()\n")
		e.printf("        return value\n")
		e.encodingHelpers(name)
	}
	e.customCode("    ", qname)

	for _, v := range c.Variants {
		vname := qname.Child(v.Name)
		class := name + "__" + v.Name
		fields := containerFields(vname, v.Payload)

		e.printf("\n\n@dataclass(frozen=True)\n")
		e.printf("class %s(%s):\n", class, name)
		e.docstring("    ", vname)
		e.printf("    INDEX: typing.ClassVar[int] = %d\n", v.Index)
		for _, f := range fields {
			e.comments("    ", f.qname)
			e.printf("    %s: %s\n", f.name, e.annotation(f.format))
		}
		if e.serializing() {
			e.printf("\n")
			e.printf("    def serialize_payload(self, serializer: sb.BinarySerializer) -> None:\n")
			if len(fields) == 0 {
				e.printf("        pass\n")
			}
			e.serializeFields("        ", fields)
			e.printf("\n    @staticmethod\n")
			e.printf("    def deserialize_payload(deserializer: sb.BinaryDeserializer) -> %s:\n", name)
			e.construct("        ", class, fields)
			e.printf("        return value\n")
		}
		e.customCode("    ", vname)
	}

	e.printf("\n\n%s.VARIANTS_MAP = {\n", name)
	for _, v := range c.Variants {
		e.printf("    %d: %s__%s,\n", v.Index, name, v.Name)
	}
	e.printf("}\n")
}

// intEnum renders a C-style enum as an enum.IntEnum whose values are the
// variant indices.
func (e *emitter) intEnum(container string, qname codegen.QualifiedName, c format.Enum) {
	name := toPythonIdent(container)
	e.printf("class %s(enum.IntEnum):\n", name)
	e.docstring("    ", qname)
	for _, v := range c.Variants {
		e.comments("    ", qname.Child(v.Name))
		e.printf("    %s = %d\n", toPythonIdent(v.Name), v.Index)
	}
	if e.serializing() {
		e.printf("\n")
		e.printf("    def serialize(self, serializer: sb.BinarySerializer) -> None:\n")
		e.printf("        serializer.increase_container_depth()\n")
		e.printf("        serializer.serialize_variant_index(int(self))\n")
		e.printf("        serializer.decrease_container_depth()\n\n")
		e.printf("    @staticmethod\n")
		e.printf("    def deserialize(deserializer: sb.BinaryDeserializer) -> %s:\n", name)
		e.printf("        deserializer.increase_container_depth()\n")
		e.printf("        index = deserializer.deserialize_variant_index()\n")
		e.printf("        try:\n")
		e.printf("            value = %s(index)\n", name)
		e.printf("        except ValueError:\n")
		e.printf("            raise st.DeserializationError(\"Unknown variant index for %s: \" + str(index))\n", container)
		e.printf("        deserializer.decrease_container_depth()\n")
		e.printf("        return value\n")
		e.encodingHelpers(name)
	}
	e.customCode("    ", qname)
}

func (e *emitter) encodingHelpers(name string) {
	for _, enc := range e.cfg.Encodings() {
		rt := encodingRuntimes[enc]
		e.printf("\n")
		e.printf("    def %s_serialize(self) -> bytes:\n", rt.module)
		e.printf("        serializer = %s.%sSerializer()\n", rt.module, rt.class)
		e.printf("        self.serialize(serializer)\n")
		e.printf("        return serializer.get_bytes()\n\n")
		e.printf("    @staticmethod\n")
		e.printf("    def %s_deserialize(input: bytes) -> %s:\n", rt.module, name)
		e.printf("        deserializer = %s.%sDeserializer(input)\n", rt.module, rt.class)
		e.printf("        value = %s.deserialize(deserializer)\n", name)
		e.printf("        if deserializer.get_buffer_offset() < len(input):\n")
		e.printf("            raise st.DeserializationError(\"Some input bytes were not read\")\n")
		e.printf("        return value\n")
	}
}

// annotation renders the type hint for f.
func (e *emitter) annotation(f format.Format) string {
	switch f := f.(type) {
	case format.Primitive:
		return primitiveTypes[f.Kind()].annotation
	case format.TypeName:
		return toPythonIdent(f.Name)
	case format.Option:
		return "typing.Optional[" + e.annotation(f.Elem) + "]"
	case format.Seq:
		return "typing.Sequence[" + e.annotation(f.Elem) + "]"
	case format.Map:
		return "typing.Dict[" + e.annotation(f.Key) + ", " + e.annotation(f.Value) + "]"
	case format.Tuple:
		if len(f.Elems) == 0 {
			return "typing.Tuple[()]"
		}
		parts := make([]string, len(f.Elems))
		for i, elem := range f.Elems {
			parts[i] = e.annotation(elem)
		}
		return "typing.Tuple[" + strings.Join(parts, ", ") + "]"
	case format.TupleArray:
		return "typing.Sequence[" + e.annotation(f.Content) + "]"
	}
	return "typing.Any"
}

func lambdaVar(depth int) string {
	return fmt.Sprintf("x%d", depth)
}

// serializeExpr renders an expression writing value to serializer.
func (e *emitter) serializeExpr(f format.Format, value string, depth int) string {
	x := lambdaVar(depth)
	switch f := f.(type) {
	case format.Primitive:
		return fmt.Sprintf("serializer.serialize_%s(%s)", primitiveTypes[f.Kind()].method, value)
	case format.TypeName:
		return value + ".serialize(serializer)"
	case format.Option:
		return fmt.Sprintf("serializer.serialize_option(%s, lambda %s: %s)", value, x, e.serializeExpr(f.Elem, x, depth+1))
	case format.Seq:
		return fmt.Sprintf("serializer.serialize_seq(%s, lambda %s: %s)", value, x, e.serializeExpr(f.Elem, x, depth+1))
	case format.Map:
		return fmt.Sprintf("serializer.serialize_map(%s, lambda %s: %s, lambda %s: %s)", value,
			x, e.serializeExpr(f.Key, x, depth+1),
			x, e.serializeExpr(f.Value, x, depth+1))
	case format.Tuple:
		parts := make([]string, len(f.Elems))
		for i, elem := range f.Elems {
			parts[i] = fmt.Sprintf("lambda %s: %s", x, e.serializeExpr(elem, x, depth+1))
		}
		return fmt.Sprintf("serializer.serialize_tuple(%s, [%s])", value, strings.Join(parts, ", "))
	case format.TupleArray:
		return fmt.Sprintf("serializer.serialize_array(%s, %d, lambda %s: %s)", value, f.Size, x, e.serializeExpr(f.Content, x, depth+1))
	}
	return "None"
}

// deserializeExpr renders an expression reading one value from deserializer.
func (e *emitter) deserializeExpr(f format.Format, depth int) string {
	switch f := f.(type) {
	case format.Primitive:
		return fmt.Sprintf("deserializer.deserialize_%s()", primitiveTypes[f.Kind()].method)
	case format.TypeName:
		return toPythonIdent(f.Name) + ".deserialize(deserializer)"
	case format.Option:
		return fmt.Sprintf("deserializer.deserialize_option(lambda: %s)", e.deserializeExpr(f.Elem, depth+1))
	case format.Seq:
		return fmt.Sprintf("deserializer.deserialize_seq(lambda: %s)", e.deserializeExpr(f.Elem, depth+1))
	case format.Map:
		return fmt.Sprintf("deserializer.deserialize_map(lambda: %s, lambda: %s)",
			e.deserializeExpr(f.Key, depth+1), e.deserializeExpr(f.Value, depth+1))
	case format.Tuple:
		parts := make([]string, len(f.Elems))
		for i, elem := range f.Elems {
			parts[i] = "lambda: " + e.deserializeExpr(elem, depth+1)
		}
		return fmt.Sprintf("deserializer.deserialize_tuple([%s])", strings.Join(parts, ", "))
	case format.TupleArray:
		return fmt.Sprintf("deserializer.deserialize_array(%d, lambda: %s)", f.Size, e.deserializeExpr(f.Content, depth+1))
	}
	return "None"
}

// packageName turns a module name into an importable package name.
func packageName(module string) string {
	return util.ModuleIdent(module)
}
