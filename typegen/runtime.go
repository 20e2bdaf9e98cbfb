package typegen

import (
	"sort"
	"strings"

	"github.com/teranos/wiregen/errors"
)

// Runtime is an installable runtime library.
type Runtime string

const (
	RuntimeSerde   Runtime = "serde"
	RuntimeBincode Runtime = "bincode"
	RuntimeBCS     Runtime = "bcs"
)

var runtimeRank = map[Runtime]int{RuntimeSerde: 0, RuntimeBincode: 1, RuntimeBCS: 2}

// ParseRuntimes resolves runtime names, dropping duplicates. The result is
// in install order: serde first, then the encodings.
func ParseRuntimes(names []string) ([]Runtime, error) {
	seen := make(map[Runtime]bool)
	var out []Runtime
	for _, name := range names {
		rt := Runtime(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := runtimeRank[rt]; !ok {
			return nil, errors.WithHint(
				errors.NewInvalidConfigError("unknown runtime %q", name),
				"supported runtimes: serde, bincode, bcs")
		}
		if !seen[rt] {
			seen[rt] = true
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return runtimeRank[out[i]] < runtimeRank[out[j]] })
	return out, nil
}

// Install runs the installer operation for rt.
func (rt Runtime) Install(installer Installer) error {
	switch rt {
	case RuntimeSerde:
		return installer.InstallSerdeRuntime()
	case RuntimeBincode:
		return installer.InstallBincodeRuntime()
	case RuntimeBCS:
		return installer.InstallBCSRuntime()
	}
	return errors.NewInvalidConfigError("unknown runtime %q", string(rt))
}
