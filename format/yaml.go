package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/teranos/wiregen/errors"
)

// LoadRegistry reads a registry document from path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read registry %s", path)
	}
	r, err := DecodeRegistry(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode registry %s", path)
	}
	return r, nil
}

// ReadRegistry decodes a registry document from r.
func ReadRegistry(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry")
	}
	return DecodeRegistry(data)
}

// DecodeRegistry decodes a YAML (or JSON) registry document:
//
//	Point:
//	  STRUCT:
//	    - x: I64
//	    - y: I64
//	Shape:
//	  ENUM:
//	    0:
//	      Circle:
//	        STRUCT:
//	          - center: {TYPENAME: Point}
//	          - radius: U32
//	    1:
//	      Empty: UNIT
//
// An empty document decodes to an empty registry.
func DecodeRegistry(data []byte) (*Registry, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRegistry(nil)
		}
		return nil, errors.Mark(errors.Wrap(err, "invalid registry document"), errors.ErrMalformedFormat)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return NewRegistry(nil)
		}
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return NewRegistry(nil)
	}

	entries, err := mappingEntries("", root)
	if err != nil {
		return nil, err
	}
	containers := make(map[string]Container, len(entries))
	for _, e := range entries {
		c, err := decodeContainer(e.key, e.value)
		if err != nil {
			return nil, err
		}
		containers[e.key] = c
	}
	return NewRegistry(containers)
}

type entry struct {
	key   string
	value *yaml.Node
}

func nodeError(path string, n *yaml.Node, reason string, args ...interface{}) error {
	return &MalformedError{Path: path, Line: n.Line, Reason: fmt.Sprintf(reason, args...)}
}

// mappingEntries returns the pairs of a mapping node in document order,
// rejecting duplicate and non-scalar keys.
func mappingEntries(path string, n *yaml.Node) ([]entry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeError(path, n, "expected a mapping")
	}
	out := make([]entry, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, nodeError(path, k, "expected a scalar key")
		}
		if seen[k.Value] {
			return nil, nodeError(joinPath(path, k.Value), k, "duplicate key %q", k.Value)
		}
		seen[k.Value] = true
		out = append(out, entry{key: k.Value, value: v})
	}
	return out, nil
}

// tagged splits a single-key mapping such as {STRUCT: [...]} into its tag
// and value. A plain scalar is returned as a tag with a nil value.
func tagged(path string, n *yaml.Node) (string, *yaml.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, nil, nil
	case yaml.MappingNode:
		entries, err := mappingEntries(path, n)
		if err != nil {
			return "", nil, err
		}
		if len(entries) != 1 {
			return "", nil, nodeError(path, n, "expected exactly one tag, found %d", len(entries))
		}
		return entries[0].key, entries[0].value, nil
	default:
		return "", nil, nodeError(path, n, "expected a tag")
	}
}

func decodeContainer(path string, n *yaml.Node) (Container, error) {
	tag, value, err := tagged(path, n)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "UNITSTRUCT":
		if value != nil && !isNull(value) {
			return nil, nodeError(path, value, "UNITSTRUCT takes no value")
		}
		return UnitStruct{}, nil
	case "NEWTYPESTRUCT":
		inner, err := decodeFormat(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return NewTypeStruct{Inner: inner}, nil
	case "TUPLESTRUCT":
		elems, err := decodeFormats(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return TupleStruct{Elems: elems}, nil
	case "STRUCT":
		fields, err := decodeFields(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return Struct{Fields: fields}, nil
	case "ENUM":
		return decodeEnum(path, requireValue(value, n))
	default:
		return nil, nodeError(path, n, "unknown container tag %q", tag)
	}
}

func decodeEnum(path string, n *yaml.Node) (Container, error) {
	entries, err := mappingEntries(path, n)
	if err != nil {
		return nil, err
	}
	variants := make([]Variant, 0, len(entries))
	for _, e := range entries {
		index, err := strconv.ParseUint(e.key, 10, 32)
		if err != nil {
			return nil, nodeError(path, e.value, "invalid variant index %q", e.key)
		}
		name, value, err := tagged(path, e.value)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nodeError(path, e.value, "variant %d needs a name and a payload", index)
		}
		payload, err := decodePayload(joinPath(path, name), value)
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{Index: uint32(index), Name: name, Payload: payload})
	}
	return Enum{Variants: variants}, nil
}

func decodePayload(path string, n *yaml.Node) (Payload, error) {
	tag, value, err := tagged(path, n)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "UNIT":
		return UnitVariant{}, nil
	case "NEWTYPE":
		inner, err := decodeFormat(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return NewTypeVariant{Inner: inner}, nil
	case "TUPLE":
		elems, err := decodeFormats(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return TupleVariant{Elems: elems}, nil
	case "STRUCT":
		fields, err := decodeFields(path, requireValue(value, n))
		if err != nil {
			return nil, err
		}
		return StructVariant{Fields: fields}, nil
	default:
		return nil, nodeError(path, n, "unknown variant tag %q", tag)
	}
}

func decodeFields(path string, n *yaml.Node) ([]Named, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(path, n, "expected a list of fields")
	}
	fields := make([]Named, 0, len(n.Content))
	for _, item := range n.Content {
		name, value, err := tagged(path, item)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nodeError(path, item, "field %q has no format", name)
		}
		f, err := decodeFormat(joinPath(path, name), value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Named{Name: name, Format: f})
	}
	return fields, nil
}

func decodeFormats(path string, n *yaml.Node) ([]Format, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(path, n, "expected a list of formats")
	}
	out := make([]Format, 0, len(n.Content))
	for _, item := range n.Content {
		f, err := decodeFormat(path, item)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

var primitivesByName = func() map[string]Format {
	m := make(map[string]Format)
	for k := KindUnit; k <= KindBytes; k++ {
		m[k.String()] = Primitive(k)
	}
	return m
}()

func decodeFormat(path string, n *yaml.Node) (Format, error) {
	tag, value, err := tagged(path, n)
	if err != nil {
		return nil, err
	}
	if value == nil {
		if p, ok := primitivesByName[tag]; ok {
			return p, nil
		}
		return nil, nodeError(path, n, "unknown format %q", tag)
	}

	switch tag {
	case "TYPENAME":
		if value.Kind != yaml.ScalarNode || value.Value == "" {
			return nil, nodeError(path, value, "TYPENAME expects a container name")
		}
		return TypeName{Name: value.Value}, nil
	case "OPTION":
		elem, err := decodeFormat(path, value)
		if err != nil {
			return nil, err
		}
		return Option{Elem: elem}, nil
	case "SEQ":
		elem, err := decodeFormat(path, value)
		if err != nil {
			return nil, err
		}
		return Seq{Elem: elem}, nil
	case "MAP":
		parts, err := namedParts(path, value, "KEY", "VALUE")
		if err != nil {
			return nil, err
		}
		key, err := decodeFormat(path, parts["KEY"])
		if err != nil {
			return nil, err
		}
		val, err := decodeFormat(path, parts["VALUE"])
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: val}, nil
	case "TUPLE":
		elems, err := decodeFormats(path, value)
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	case "TUPLEARRAY":
		parts, err := namedParts(path, value, "CONTENT", "SIZE")
		if err != nil {
			return nil, err
		}
		content, err := decodeFormat(path, parts["CONTENT"])
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(parts["SIZE"].Value)
		if err != nil || size < 0 {
			return nil, nodeError(path, parts["SIZE"], "invalid array size %q", parts["SIZE"].Value)
		}
		return TupleArray{Content: content, Size: size}, nil
	default:
		return nil, nodeError(path, n, "unknown format tag %q", tag)
	}
}

// namedParts reads a mapping that must contain exactly the given keys.
func namedParts(path string, n *yaml.Node, keys ...string) (map[string]*yaml.Node, error) {
	entries, err := mappingEntries(path, n)
	if err != nil {
		return nil, err
	}
	parts := make(map[string]*yaml.Node, len(entries))
	for _, e := range entries {
		parts[e.key] = e.value
	}
	for _, k := range keys {
		if parts[k] == nil {
			return nil, nodeError(path, n, "missing %s", k)
		}
	}
	if len(parts) != len(keys) {
		return nil, nodeError(path, n, "unexpected keys, want %v", keys)
	}
	return parts, nil
}

func requireValue(value, parent *yaml.Node) *yaml.Node {
	if value == nil {
		// Report against the parent so the line number is meaningful.
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Line: parent.Line}
	}
	return value
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "")
}
