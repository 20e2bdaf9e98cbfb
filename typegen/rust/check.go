package rust

import (
	"fmt"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/typegen/util"
)

// checkPlan rejects registries whose Rust rendering would not match the
// wire format, and returns the containers that need a total order because
// they appear inside map keys.
//
// serde numbers enum variants by declaration position, so variant indices
// must run 0..n-1. BTreeMap keys need Ord, which floats cannot provide.
func checkPlan(plan *analyzer.Plan) (map[string]bool, error) {
	reg := plan.Registry()
	keyRoots := make(map[string]bool)

	for _, name := range plan.Order() {
		c, _ := reg.Get(name)
		if en, ok := c.(format.Enum); ok {
			for i, v := range en.Variants {
				if v.Index == uint32(i) {
					continue
				}
				return nil, errors.WithHintf(
					malformed(name+"."+v.Name, "variant index %d where %d was expected", v.Index, i),
					"rust enums encode the variant position; number the variants of %s 0..%d without gaps",
					name, len(en.Variants)-1)
			}
		}

		var keyErr error
		format.WalkContainer(c, func(f format.Format) {
			m, ok := f.(format.Map)
			if !ok {
				return
			}
			if keyErr == nil && hasFloat(m.Key) {
				keyErr = malformed(name, "map key holds a floating point value, which has no total order")
			}
			format.VisitFormat(m.Key, func(target string) { keyRoots[target] = true })
		})
		if keyErr != nil {
			return nil, keyErr
		}
	}

	ordered := make(map[string]bool)
	queue := util.SortedKeys(keyRoots)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		// externals are compiled elsewhere
		if ordered[name] || plan.Position(name) < 0 {
			continue
		}
		ordered[name] = true

		c, _ := reg.Get(name)
		floating := false
		format.WalkContainer(c, func(f format.Format) { floating = floating || isFloat(f) })
		if floating {
			return nil, malformed(name, "used in a map key but holds a floating point value, which has no total order")
		}
		queue = append(queue, plan.Dependencies(name)...)
	}
	return ordered, nil
}

func malformed(path, reason string, args ...interface{}) error {
	return &format.MalformedError{Path: path, Reason: fmt.Sprintf(reason, args...)}
}

func hasFloat(f format.Format) bool {
	found := false
	format.WalkFormat(f, func(f format.Format) { found = found || isFloat(f) })
	return found
}

func isFloat(f format.Format) bool {
	p, ok := f.(format.Primitive)
	return ok && (p.Kind() == format.KindF32 || p.Kind() == format.KindF64)
}
