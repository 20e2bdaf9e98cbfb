// Package backends wires the built-in language installers into a registry.
package backends

import (
	"github.com/teranos/wiregen/typegen"
	"github.com/teranos/wiregen/typegen/python"
	"github.com/teranos/wiregen/typegen/rust"
)

// Default returns a registry holding every built-in backend.
func Default() *typegen.Registry {
	r := typegen.NewRegistry()
	// Registration only fails on duplicates, which would be a programming error
	for _, b := range []struct {
		language string
		factory  typegen.Factory
	}{
		{python.Language, python.New},
		{rust.Language, rust.New},
	} {
		if err := r.Register(b.language, b.factory); err != nil {
			panic(err)
		}
	}
	return r
}
