// Package codegen holds the generation settings every backend reads: module
// name, encodings, external definitions, namespaces, documentation and
// custom code keyed by qualified name, and the output switches.
//
// A Config is built once with NewConfig and never changes afterwards.
package codegen

import (
	"sort"
	"strings"

	"github.com/teranos/wiregen/errors"
)

// Config is the validated, read-only set of generation options.
type Config struct {
	moduleName      string
	serialization   bool
	encodings       []Encoding
	external        map[string]string // container -> module
	externalModules map[string][]string
	comments        Annotations
	customCode      Annotations
	namespaces      map[string]string
	cStyleEnums     bool
	packageManifest bool
}

type options struct {
	serialization   bool
	encodings       []Encoding
	external        map[string][]string
	comments        map[string]annotation
	customCode      map[string]annotation
	namespaces      map[string]string
	cStyleEnums     bool
	packageManifest bool
	err             error
}

// Option customizes a Config under construction.
type Option func(*options)

// WithSerialization toggles emission of (de)serialization methods. Default on.
func WithSerialization(enabled bool) Option {
	return func(o *options) { o.serialization = enabled }
}

// WithEncodings selects the encodings to emit specialized methods for.
// Repeated calls accumulate.
func WithEncodings(encodings ...Encoding) Option {
	return func(o *options) { o.encodings = append(o.encodings, encodings...) }
}

// WithExternalDefinitions declares containers provided by other modules,
// keyed by module. Repeated calls merge.
func WithExternalDefinitions(defs map[string][]string) Option {
	return func(o *options) {
		for module, names := range defs {
			o.external[module] = append(o.external[module], names...)
		}
	}
}

// WithComment attaches documentation to a qualified name. The text is
// normalized with NormalizeDoc; a later call for the same name wins.
func WithComment(name QualifiedName, doc string) Option {
	return func(o *options) {
		if len(name) == 0 {
			o.fail("empty qualified name for comment")
			return
		}
		o.comments[mapKey(name)] = annotation{name: Name(name...), text: NormalizeDoc(doc)}
	}
}

// WithCustomCode attaches a source fragment to a qualified name. The fragment
// is inserted verbatim by backends and is not checked in any way.
func WithCustomCode(name QualifiedName, code string) Option {
	return func(o *options) {
		if len(name) == 0 {
			o.fail("empty qualified name for custom code")
			return
		}
		o.customCode[mapKey(name)] = annotation{name: Name(name...), text: code}
	}
}

// WithNamespace maps a logical namespace (usually an external module name)
// to a target-language package path.
func WithNamespace(namespace, path string) Option {
	return func(o *options) {
		if namespace == "" {
			o.fail("empty namespace name")
			return
		}
		o.namespaces[namespace] = path
	}
}

// WithCStyleEnums emits enums whose variants are all unit variants as the
// target language's native enumeration. Default off.
func WithCStyleEnums(enabled bool) Option {
	return func(o *options) { o.cStyleEnums = enabled }
}

// WithPackageManifest toggles emission of a package manifest. Default on.
func WithPackageManifest(enabled bool) Option {
	return func(o *options) { o.packageManifest = enabled }
}

func (o *options) fail(reason string) {
	if o.err == nil {
		o.err = errors.NewInvalidConfigError("%s", reason)
	}
}

// NewConfig validates the options and returns an immutable Config. Keys of
// comments and custom code are not checked against any registry; a key that
// matches nothing is simply never used.
func NewConfig(moduleName string, opts ...Option) (*Config, error) {
	o := &options{
		serialization:   true,
		external:        make(map[string][]string),
		comments:        make(map[string]annotation),
		customCode:      make(map[string]annotation),
		namespaces:      make(map[string]string),
		packageManifest: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if strings.TrimSpace(moduleName) == "" {
		return nil, errors.NewInvalidConfigError("module name is required")
	}
	for _, e := range o.encodings {
		if e != Bincode && e != BCS {
			return nil, errors.NewInvalidConfigError("unknown encoding %d", uint8(e))
		}
	}

	external, modules, err := indexExternal(o.external)
	if err != nil {
		return nil, err
	}

	return &Config{
		moduleName:      moduleName,
		serialization:   o.serialization,
		encodings:       normalizeEncodings(o.encodings),
		external:        external,
		externalModules: modules,
		comments:        newAnnotations(o.comments),
		customCode:      newAnnotations(o.customCode),
		namespaces:      o.namespaces,
		cStyleEnums:     o.cStyleEnums,
		packageManifest: o.packageManifest,
	}, nil
}

// indexExternal builds the container -> module lookup. A container listed
// under several modules resolves to the lexicographically first module.
func indexExternal(defs map[string][]string) (map[string]string, map[string][]string, error) {
	modules := make([]string, 0, len(defs))
	for module := range defs {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	byName := make(map[string]string)
	byModule := make(map[string][]string, len(defs))
	for _, module := range modules {
		if module == "" {
			return nil, nil, errors.NewInvalidConfigError("external definitions: empty module name")
		}
		names := make([]string, 0, len(defs[module]))
		seen := make(map[string]bool)
		for _, name := range defs[module] {
			if name == "" {
				return nil, nil, errors.NewInvalidConfigError("external definitions: empty type name in module %s", module)
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
			if _, taken := byName[name]; !taken {
				byName[name] = module
			}
		}
		sort.Strings(names)
		byModule[module] = names
	}
	return byName, byModule, nil
}

// ModuleName is the name of the generated module or package.
func (c *Config) ModuleName() string { return c.moduleName }

// Serialization reports whether (de)serialization methods are emitted.
func (c *Config) Serialization() bool { return c.serialization }

// Encodings returns the selected encodings in canonical order.
func (c *Config) Encodings() []Encoding {
	out := make([]Encoding, len(c.encodings))
	copy(out, c.encodings)
	return out
}

// HasEncoding reports whether e was selected.
func (c *Config) HasEncoding(e Encoding) bool {
	for _, selected := range c.encodings {
		if selected == e {
			return true
		}
	}
	return false
}

// ExternalModule returns the module providing an external container.
func (c *Config) ExternalModule(name string) (string, bool) {
	module, ok := c.external[name]
	return module, ok
}

// IsExternal reports whether name is declared by an external module.
func (c *Config) IsExternal(name string) bool {
	_, ok := c.external[name]
	return ok
}

// ExternalModules returns the modules with external definitions, sorted.
func (c *Config) ExternalModules() []string {
	out := make([]string, 0, len(c.externalModules))
	for module := range c.externalModules {
		out = append(out, module)
	}
	sort.Strings(out)
	return out
}

// ExternalNames returns the containers provided by module, sorted.
func (c *Config) ExternalNames(module string) []string {
	names := c.externalModules[module]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Comment returns the normalized documentation attached to name.
func (c *Config) Comment(name QualifiedName) (string, bool) {
	return c.comments.Get(name)
}

// Comments returns every documentation entry.
func (c *Config) Comments() Annotations { return c.comments }

// CustomCode returns the fragment attached to name.
func (c *Config) CustomCode(name QualifiedName) (string, bool) {
	return c.customCode.Get(name)
}

// CustomCodeEntries returns every custom code entry.
func (c *Config) CustomCodeEntries() Annotations { return c.customCode }

// Namespace returns the target path for a logical namespace.
func (c *Config) Namespace(name string) (string, bool) {
	path, ok := c.namespaces[name]
	return path, ok
}

// Namespaces returns the namespace names, sorted.
func (c *Config) Namespaces() []string {
	out := make([]string, 0, len(c.namespaces))
	for name := range c.namespaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CStyleEnums reports whether unit-only enums use the native enum type.
func (c *Config) CStyleEnums() bool { return c.cStyleEnums }

// PackageManifest reports whether a package manifest is emitted.
func (c *Config) PackageManifest() bool { return c.packageManifest }

// QualifiedName returns [module, segments...].
func (c *Config) QualifiedName(segments ...string) QualifiedName {
	return append(Name(c.moduleName), segments...)
}
