package codegen

import (
	"sort"
	"strings"

	"github.com/teranos/wiregen/errors"
)

// Encoding is a binary serialization scheme generated code can target.
type Encoding uint8

const (
	// Bincode is the general-purpose fixed binary scheme.
	Bincode Encoding = iota + 1
	// BCS is the canonical deterministic scheme used for consensus data.
	BCS
)

// Encodings lists every supported encoding in canonical order.
func Encodings() []Encoding {
	return []Encoding{Bincode, BCS}
}

// Name returns the lower-case identifier used in file names, flags and
// generated method names.
func (e Encoding) Name() string {
	switch e {
	case Bincode:
		return "bincode"
	case BCS:
		return "bcs"
	}
	return "unknown"
}

func (e Encoding) String() string { return e.Name() }

// ParseEncoding resolves an encoding from its name, case-insensitively.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bincode":
		return Bincode, nil
	case "bcs":
		return BCS, nil
	}
	return 0, errors.WithHint(
		errors.NewInvalidConfigError("unknown encoding %q", name),
		"supported encodings: bincode, bcs")
}

// ParseEncodings resolves a list of names, dropping duplicates and returning
// them in canonical order.
func ParseEncodings(names []string) ([]Encoding, error) {
	out := make([]Encoding, 0, len(names))
	for _, name := range names {
		e, err := ParseEncoding(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return normalizeEncodings(out), nil
}

func normalizeEncodings(encodings []Encoding) []Encoding {
	seen := make(map[Encoding]bool, len(encodings))
	out := make([]Encoding, 0, len(encodings))
	for _, e := range encodings {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
