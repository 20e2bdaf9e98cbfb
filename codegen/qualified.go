package codegen

import (
	"sort"
	"strings"
)

// QualifiedName addresses a container ([module, Container]) or one of its
// members ([module, Container, member]). Equality is over the full sequence.
type QualifiedName []string

// ParseQualifiedName splits a dotted name such as "shapes.Shape.Circle".
func ParseQualifiedName(dotted string) QualifiedName {
	if dotted == "" {
		return nil
	}
	return QualifiedName(strings.Split(dotted, "."))
}

// Name builds a qualified name from segments.
func Name(segments ...string) QualifiedName {
	return append(QualifiedName(nil), segments...)
}

// Child returns a new name extended by segment; q is left untouched.
func (q QualifiedName) Child(segment string) QualifiedName {
	out := make(QualifiedName, len(q), len(q)+1)
	copy(out, q)
	return append(out, segment)
}

func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}

// Compare orders names segment by segment; a prefix sorts first.
func (q QualifiedName) Compare(other QualifiedName) int {
	for i := 0; i < len(q) && i < len(other); i++ {
		if c := strings.Compare(q[i], other[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(q) < len(other):
		return -1
	case len(q) > len(other):
		return 1
	}
	return 0
}

// Annotations is a sorted mapping from qualified names to text.
type Annotations struct {
	keys   []QualifiedName
	values []string
}

func newAnnotations(m map[string]annotation) Annotations {
	a := Annotations{
		keys:   make([]QualifiedName, 0, len(m)),
		values: make([]string, 0, len(m)),
	}
	entries := make([]annotation, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name.Compare(entries[j].name) < 0 })
	for _, e := range entries {
		a.keys = append(a.keys, e.name)
		a.values = append(a.values, e.text)
	}
	return a
}

type annotation struct {
	name QualifiedName
	text string
}

// Len returns the number of entries.
func (a Annotations) Len() int { return len(a.keys) }

// Get looks up the text attached to q.
func (a Annotations) Get(q QualifiedName) (string, bool) {
	i := sort.Search(len(a.keys), func(i int) bool { return a.keys[i].Compare(q) >= 0 })
	if i < len(a.keys) && a.keys[i].Compare(q) == 0 {
		return a.values[i], true
	}
	return "", false
}

// Keys returns the qualified names in sorted order.
func (a Annotations) Keys() []QualifiedName {
	out := make([]QualifiedName, len(a.keys))
	for i, k := range a.keys {
		out[i] = Name(k...)
	}
	return out
}

// mapKey is an injective encoding of a qualified name; segments never
// contain NUL.
func mapKey(q QualifiedName) string {
	return strings.Join(q, "\x00")
}

// NormalizeDoc trims surrounding whitespace and terminates the text with
// exactly one line break. Applying it twice gives the same result.
func NormalizeDoc(doc string) string {
	return strings.TrimSpace(doc) + "\n"
}
