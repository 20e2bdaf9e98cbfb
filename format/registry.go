package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/wiregen/errors"
)

// Registry maps container names to container formats. Iteration always
// follows canonical order: names sorted byte-wise.
type Registry struct {
	containers map[string]Container
	names      []string
}

// NewRegistry validates containers and returns an immutable registry holding
// a deep copy of them. Enum variants are sorted by discriminant.
func NewRegistry(containers map[string]Container) (*Registry, error) {
	r := &Registry{
		containers: make(map[string]Container, len(containers)),
		names:      make([]string, 0, len(containers)),
	}
	for name := range containers {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	for _, name := range r.names {
		if name == "" {
			return nil, malformed("", "empty container name")
		}
		c, err := cloneContainer(name, containers[name])
		if err != nil {
			return nil, err
		}
		r.containers[name] = c
	}
	return r, nil
}

// MustRegistry is NewRegistry for statically known input; it panics on error.
func MustRegistry(containers map[string]Container) *Registry {
	r, err := NewRegistry(containers)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of containers.
func (r *Registry) Len() int { return len(r.names) }

// Names returns container names in canonical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the container registered under name.
func (r *Registry) Get(name string) (Container, bool) {
	c, ok := r.containers[name]
	return c, ok
}

// Has reports whether name is defined in the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.containers[name]
	return ok
}

// Reference is one occurrence of a TypeName inside a container.
type Reference struct {
	// Target is the referenced container name.
	Target string
	// Member is the field or variant the reference sits under, empty for
	// newtype and tuple structs.
	Member string
}

// References lists every TypeName reachable from the named container
// without crossing into other containers, in declaration order: fields in
// order, enum variants by discriminant, nested formats depth-first.
// Duplicates are kept.
func (r *Registry) References(name string) []Reference {
	c, ok := r.containers[name]
	if !ok {
		return nil
	}
	var refs []Reference
	VisitContainer(c, func(member string, target string) {
		refs = append(refs, Reference{Target: target, Member: member})
	})
	return refs
}

// VisitContainer calls fn for every TypeName nested in c.
func VisitContainer(c Container, fn func(member, target string)) {
	switch c := c.(type) {
	case NewTypeStruct:
		VisitFormat(c.Inner, func(target string) { fn("", target) })
	case TupleStruct:
		for _, f := range c.Elems {
			VisitFormat(f, func(target string) { fn("", target) })
		}
	case Struct:
		visitFields(c.Fields, "", fn)
	case Enum:
		for _, v := range c.Variants {
			switch p := v.Payload.(type) {
			case NewTypeVariant:
				VisitFormat(p.Inner, func(target string) { fn(v.Name, target) })
			case TupleVariant:
				for _, f := range p.Elems {
					VisitFormat(f, func(target string) { fn(v.Name, target) })
				}
			case StructVariant:
				visitFields(p.Fields, v.Name, fn)
			}
		}
	}
}

func visitFields(fields []Named, prefix string, fn func(member, target string)) {
	for _, field := range fields {
		member := field.Name
		if prefix != "" {
			member = prefix + "." + field.Name
		}
		VisitFormat(field.Format, func(target string) { fn(member, target) })
	}
}

// VisitFormat calls fn for every TypeName inside f, depth-first.
func VisitFormat(f Format, fn func(target string)) {
	switch f := f.(type) {
	case TypeName:
		fn(f.Name)
	case Option:
		VisitFormat(f.Elem, fn)
	case Seq:
		VisitFormat(f.Elem, fn)
	case Map:
		VisitFormat(f.Key, fn)
		VisitFormat(f.Value, fn)
	case Tuple:
		for _, e := range f.Elems {
			VisitFormat(e, fn)
		}
	case TupleArray:
		VisitFormat(f.Content, fn)
	}
}

// WalkContainer calls fn for every format nested in c, each one before the
// formats it contains.
func WalkContainer(c Container, fn func(Format)) {
	switch c := c.(type) {
	case NewTypeStruct:
		WalkFormat(c.Inner, fn)
	case TupleStruct:
		for _, f := range c.Elems {
			WalkFormat(f, fn)
		}
	case Struct:
		for _, field := range c.Fields {
			WalkFormat(field.Format, fn)
		}
	case Enum:
		for _, v := range c.Variants {
			switch p := v.Payload.(type) {
			case NewTypeVariant:
				WalkFormat(p.Inner, fn)
			case TupleVariant:
				for _, f := range p.Elems {
					WalkFormat(f, fn)
				}
			case StructVariant:
				for _, field := range p.Fields {
					WalkFormat(field.Format, fn)
				}
			}
		}
	}
}

// WalkFormat calls fn for f and every format nested in it, pre-order.
func WalkFormat(f Format, fn func(Format)) {
	fn(f)
	switch f := f.(type) {
	case Option:
		WalkFormat(f.Elem, fn)
	case Seq:
		WalkFormat(f.Elem, fn)
	case Map:
		WalkFormat(f.Key, fn)
		WalkFormat(f.Value, fn)
	case Tuple:
		for _, e := range f.Elems {
			WalkFormat(e, fn)
		}
	case TupleArray:
		WalkFormat(f.Content, fn)
	}
}

// MalformedError reports a format value or registry document that does not
// fit the model.
type MalformedError struct {
	// Path is the dotted location, e.g. "Shape.Circle.radius".
	Path string
	// Line is the 1-based document line, zero when not decoded from a document.
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	b.WriteString("malformed format")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *MalformedError) Unwrap() error { return errors.ErrMalformedFormat }

func malformed(path, reason string, args ...interface{}) error {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(reason, args...)}
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func cloneContainer(path string, c Container) (Container, error) {
	switch c := c.(type) {
	case nil:
		return nil, malformed(path, "missing container format")
	case UnitStruct:
		return c, nil
	case NewTypeStruct:
		inner, err := cloneFormat(path, c.Inner)
		if err != nil {
			return nil, err
		}
		return NewTypeStruct{Inner: inner}, nil
	case TupleStruct:
		elems, err := cloneFormats(path, c.Elems)
		if err != nil {
			return nil, err
		}
		return TupleStruct{Elems: elems}, nil
	case Struct:
		fields, err := cloneFields(path, c.Fields)
		if err != nil {
			return nil, err
		}
		return Struct{Fields: fields}, nil
	case Enum:
		return cloneEnum(path, c)
	default:
		return nil, malformed(path, "unknown container type %T", c)
	}
}

func cloneEnum(path string, e Enum) (Container, error) {
	variants := make([]Variant, 0, len(e.Variants))
	indices := make(map[uint32]bool, len(e.Variants))
	names := make(map[string]bool, len(e.Variants))
	for _, v := range e.Variants {
		if v.Name == "" {
			return nil, malformed(path, "empty variant name at index %d", v.Index)
		}
		vpath := joinPath(path, v.Name)
		if indices[v.Index] {
			return nil, malformed(vpath, "duplicate variant index %d", v.Index)
		}
		if names[v.Name] {
			return nil, malformed(vpath, "duplicate variant name")
		}
		indices[v.Index] = true
		names[v.Name] = true

		payload, err := clonePayload(vpath, v.Payload)
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Index: v.Index, Name: v.Name, Payload: payload})
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Index < variants[j].Index })
	return Enum{Variants: variants}, nil
}

func clonePayload(path string, p Payload) (Payload, error) {
	switch p := p.(type) {
	case nil:
		return nil, malformed(path, "missing variant payload")
	case UnitVariant:
		return p, nil
	case NewTypeVariant:
		inner, err := cloneFormat(path, p.Inner)
		if err != nil {
			return nil, err
		}
		return NewTypeVariant{Inner: inner}, nil
	case TupleVariant:
		elems, err := cloneFormats(path, p.Elems)
		if err != nil {
			return nil, err
		}
		return TupleVariant{Elems: elems}, nil
	case StructVariant:
		fields, err := cloneFields(path, p.Fields)
		if err != nil {
			return nil, err
		}
		return StructVariant{Fields: fields}, nil
	default:
		return nil, malformed(path, "unknown variant payload %T", p)
	}
}

func cloneFields(path string, fields []Named) ([]Named, error) {
	out := make([]Named, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			return nil, malformed(path, "empty field name")
		}
		fpath := joinPath(path, field.Name)
		if seen[field.Name] {
			return nil, malformed(fpath, "duplicate field name")
		}
		seen[field.Name] = true
		f, err := cloneFormat(fpath, field.Format)
		if err != nil {
			return nil, err
		}
		out = append(out, Named{Name: field.Name, Format: f})
	}
	return out, nil
}

func cloneFormats(path string, formats []Format) ([]Format, error) {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		c, err := cloneFormat(path, f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func cloneFormat(path string, f Format) (Format, error) {
	switch f := f.(type) {
	case nil:
		return nil, malformed(path, "missing format")
	case Primitive:
		if !f.Kind().IsPrimitive() {
			return nil, malformed(path, "invalid primitive %d", uint8(f))
		}
		return f, nil
	case TypeName:
		if f.Name == "" {
			return nil, malformed(path, "empty type name")
		}
		return f, nil
	case Option:
		elem, err := cloneFormat(path, f.Elem)
		if err != nil {
			return nil, err
		}
		return Option{Elem: elem}, nil
	case Seq:
		elem, err := cloneFormat(path, f.Elem)
		if err != nil {
			return nil, err
		}
		return Seq{Elem: elem}, nil
	case Map:
		key, err := cloneFormat(path, f.Key)
		if err != nil {
			return nil, err
		}
		value, err := cloneFormat(path, f.Value)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: value}, nil
	case Tuple:
		elems, err := cloneFormats(path, f.Elems)
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	case TupleArray:
		if f.Size < 0 {
			return nil, malformed(path, "negative array size %d", f.Size)
		}
		content, err := cloneFormat(path, f.Content)
		if err != nil {
			return nil, err
		}
		return TupleArray{Content: content, Size: f.Size}, nil
	default:
		return nil, malformed(path, "unknown format type %T", f)
	}
}
