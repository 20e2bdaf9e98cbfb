// Package rust installs generated Rust crates: one lib.rs with the registry's
// types in plan order, serde derives, per-encoding helpers and a Cargo.toml.
package rust

import (
	"fmt"
	"io"
	"strings"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/typegen/util"
)

// Rust keywords that need raw identifier prefix (r#)
var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true, "yield": true,
}

// Path keywords cannot be raw identifiers
var rustPathKeywords = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true,
}

// toRustIdent converts an identifier to a valid Rust identifier
// Adds r# prefix for Rust keywords, a trailing underscore for path keywords
func toRustIdent(s string) string {
	if rustPathKeywords[s] {
		return s + "_"
	}
	return util.EscapeReserved(s, rustKeywords, func(s string) string { return "r#" + s })
}

var primitiveTypes = map[format.Kind]string{
	format.KindUnit:  "()",
	format.KindBool:  "bool",
	format.KindI8:    "i8",
	format.KindI16:   "i16",
	format.KindI32:   "i32",
	format.KindI64:   "i64",
	format.KindI128:  "i128",
	format.KindU8:    "u8",
	format.KindU16:   "u16",
	format.KindU32:   "u32",
	format.KindU64:   "u64",
	format.KindU128:  "u128",
	format.KindF32:   "f32",
	format.KindF64:   "f64",
	format.KindChar:  "char",
	format.KindStr:   "String",
	format.KindBytes: "serde_bytes::ByteBuf",
}

// emitter renders one module. It is created per InstallModule call.
type emitter struct {
	plan *analyzer.Plan
	cfg  *codegen.Config
	// containers reachable from a map key, which derive Eq, Ord and Hash
	ordered map[string]bool
	sb      strings.Builder
}

// GenerateModule renders the lib.rs source for plan. It fails with
// ErrMalformedFormat when an enum's variant indices have gaps or a map key
// holds floating point values.
func GenerateModule(plan *analyzer.Plan, cfg *codegen.Config) (string, error) {
	ordered, err := checkPlan(plan)
	if err != nil {
		return "", err
	}
	e := &emitter{plan: plan, cfg: cfg, ordered: ordered}
	e.header()
	for _, name := range plan.Order() {
		c, _ := plan.Registry().Get(name)
		e.container(name, c)
	}
	return e.sb.String(), nil
}

// WriteModule writes the generated source to w.
func WriteModule(w io.Writer, plan *analyzer.Plan, cfg *codegen.Config) error {
	source, err := GenerateModule(plan, cfg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, source)
	return err
}

func (e *emitter) printf(tmpl string, args ...interface{}) {
	fmt.Fprintf(&e.sb, tmpl, args...)
}

func (e *emitter) header() {
	e.printf("// Code generated by wiregen. DO NOT EDIT.\n")
	e.printf("#![allow(unused_imports, clippy::all)]\n")
	if e.cfg.Serialization() {
		e.printf("use serde::{Deserialize, Serialize};\n")
	}
	for _, module := range e.cfg.ExternalModules() {
		names := e.cfg.ExternalNames(module)
		idents := make([]string, len(names))
		for i, name := range names {
			idents[i] = toRustIdent(name)
		}
		e.printf("use %s::{%s};\n", e.modulePath(module), strings.Join(idents, ", "))
	}
	e.printf("\n")
}

// modulePath applies the namespace override for an external module.
func (e *emitter) modulePath(module string) string {
	if path, ok := e.cfg.Namespace(module); ok {
		return path
	}
	return module
}

func (e *emitter) docs(indent string, name codegen.QualifiedName) {
	doc, ok := e.cfg.Comment(name)
	if !ok {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(doc, "\n"), "\n") {
		if line == "" {
			e.printf("%s///\n", indent)
		} else {
			e.printf("%s/// %s\n", indent, line)
		}
	}
}

func (e *emitter) derives(name string, cStyle bool) {
	traits := []string{"Clone", "Debug", "PartialEq", "PartialOrd"}
	switch {
	case cStyle:
		traits = []string{"Clone", "Copy", "Debug", "PartialEq", "Eq", "Hash", "PartialOrd", "Ord"}
	case e.ordered[name]:
		traits = []string{"Clone", "Debug", "PartialEq", "Eq", "Hash", "PartialOrd", "Ord"}
	}
	if e.cfg.Serialization() {
		traits = append(traits, "Serialize", "Deserialize")
	}
	e.printf("#[derive(%s)]\n", strings.Join(traits, ", "))
}

func (e *emitter) container(name string, c format.Container) {
	qname := e.cfg.QualifiedName(name)
	ident := toRustIdent(name)
	e.docs("", qname)

	switch c := c.(type) {
	case format.UnitStruct:
		e.derives(name, false)
		e.printf("pub struct %s;\n", ident)
	case format.NewTypeStruct:
		e.derives(name, false)
		e.printf("pub struct %s(pub %s);\n", ident, e.quote(name, c.Inner, false))
	case format.TupleStruct:
		e.derives(name, false)
		e.printf("pub struct %s(%s);\n", ident, e.tupleFields(name, c.Elems, "pub "))
	case format.Struct:
		e.derives(name, false)
		e.printf("pub struct %s {\n", ident)
		e.fields(name, qname, c.Fields, "    ", "pub ")
		e.printf("}\n")
	case format.Enum:
		e.enum(name, qname, c)
	}

	e.encodingHelpers(ident)
	if code, ok := e.cfg.CustomCode(qname); ok {
		e.printf("\n%s", code)
		if !strings.HasSuffix(code, "\n") {
			e.printf("\n")
		}
	}
	e.printf("\n")
}

func (e *emitter) enum(name string, qname codegen.QualifiedName, c format.Enum) {
	cStyle := e.cfg.CStyleEnums() && c.IsCStyle()
	e.derives(name, cStyle)
	if cStyle {
		e.printf("#[repr(u32)]\n")
	}
	e.printf("pub enum %s {\n", toRustIdent(name))
	for _, v := range c.Variants {
		vname := qname.Child(v.Name)
		variant := toRustIdent(v.Name)
		e.docs("    ", vname)
		switch p := v.Payload.(type) {
		case format.UnitVariant:
			if cStyle {
				e.printf("    %s = %d,\n", variant, v.Index)
			} else {
				e.printf("    %s,\n", variant)
			}
		case format.NewTypeVariant:
			e.printf("    %s(%s),\n", variant, e.quote(name, p.Inner, false))
		case format.TupleVariant:
			e.printf("    %s(%s),\n", variant, e.tupleFields(name, p.Elems, ""))
		case format.StructVariant:
			e.printf("    %s {\n", variant)
			e.fields(name, vname, p.Fields, "        ", "")
			e.printf("    },\n")
		}
	}
	e.printf("}\n")
}

func (e *emitter) fields(owner string, parent codegen.QualifiedName, fields []format.Named, indent, visibility string) {
	for _, f := range fields {
		e.docs(indent, parent.Child(f.Name))
		e.printf("%s%s%s: %s,\n", indent, visibility, toRustIdent(f.Name), e.quote(owner, f.Format, false))
	}
}

func (e *emitter) tupleFields(owner string, elems []format.Format, visibility string) string {
	parts := make([]string, len(elems))
	for i, f := range elems {
		parts[i] = visibility + e.quote(owner, f, false)
	}
	return strings.Join(parts, ", ")
}

// quote renders the Rust type of f as seen from owner. References that close
// a cycle are boxed unless a Vec or map already puts them on the heap.
func (e *emitter) quote(owner string, f format.Format, onHeap bool) string {
	switch f := f.(type) {
	case format.Primitive:
		return primitiveTypes[f.Kind()]
	case format.TypeName:
		ident := toRustIdent(f.Name)
		if e.plan.RequiresIndirection(owner, f.Name) && !onHeap {
			return "Box<" + ident + ">"
		}
		return ident
	case format.Option:
		return "Option<" + e.quote(owner, f.Elem, onHeap) + ">"
	case format.Seq:
		return "Vec<" + e.quote(owner, f.Elem, true) + ">"
	case format.Map:
		return fmt.Sprintf("std::collections::BTreeMap<%s, %s>", e.quote(owner, f.Key, true), e.quote(owner, f.Value, true))
	case format.Tuple:
		parts := make([]string, len(f.Elems))
		for i, elem := range f.Elems {
			parts[i] = e.quote(owner, elem, onHeap)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case format.TupleArray:
		return fmt.Sprintf("[%s; %d]", e.quote(owner, f.Content, onHeap), f.Size)
	}
	return "()"
}

func (e *emitter) encodingHelpers(name string) {
	if !e.cfg.Serialization() || len(e.cfg.Encodings()) == 0 {
		return
	}
	e.printf("\nimpl %s {\n", name)
	for i, enc := range e.cfg.Encodings() {
		if i > 0 {
			e.printf("\n")
		}
		switch enc {
		case codegen.Bincode:
			e.printf("    pub fn bincode_serialize(&self) -> Result<Vec<u8>, bincode::Error> {\n")
			e.printf("        bincode::serialize(self)\n")
			e.printf("    }\n\n")
			e.printf("    pub fn bincode_deserialize(input: &[u8]) -> Result<Self, bincode::Error> {\n")
			e.printf("        bincode::deserialize(input)\n")
			e.printf("    }\n")
		case codegen.BCS:
			e.printf("    pub fn bcs_serialize(&self) -> Result<Vec<u8>, bcs::Error> {\n")
			e.printf("        bcs::to_bytes(self)\n")
			e.printf("    }\n\n")
			e.printf("    pub fn bcs_deserialize(input: &[u8]) -> Result<Self, bcs::Error> {\n")
			e.printf("        bcs::from_bytes(input)\n")
			e.printf("    }\n")
		}
	}
	e.printf("}\n")
}

// crateName turns a module name into a valid crate/package name.
func crateName(module string) string {
	return util.ModuleIdent(module)
}
