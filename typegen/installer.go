// Package typegen connects analyzed registries to target-language backends.
//
// A backend implements Installer. Backends are looked up by language name in
// a Registry that callers build and pass around explicitly.
package typegen

import (
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
)

// Installer materializes generated code and runtime libraries for one
// target language. Every operation either succeeds or returns the
// underlying error (usually I/O) unchanged.
type Installer interface {
	// InstallModule writes the type declarations of plan, and their
	// serialization methods when cfg enables them.
	InstallModule(plan *analyzer.Plan, cfg *codegen.Config) error
	// InstallSerdeRuntime installs the base serialization runtime.
	InstallSerdeRuntime() error
	// InstallBincodeRuntime installs the bincode runtime.
	InstallBincodeRuntime() error
	// InstallBCSRuntime installs the BCS runtime.
	InstallBCSRuntime() error
}

// SourceWriter is implemented by backends that can render a module as a
// single source stream, used when no output directory is given.
type SourceWriter interface {
	WriteModule(w io.Writer, plan *analyzer.Plan, cfg *codegen.Config) error
}

// InstallerOptions are passed to every backend factory.
type InstallerOptions struct {
	// OutputDir is the root directory output is installed under.
	OutputDir string
	// PackageVersion is written to package manifests.
	PackageVersion string
	Logger         *zap.SugaredLogger
}

// Factory creates an installer for one language.
type Factory func(opts InstallerOptions) (Installer, error)

// Registry maps language names to installer factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a backend. Language names are case-insensitive and unique.
func (r *Registry) Register(language string, factory Factory) error {
	key := strings.ToLower(language)
	if key == "" || factory == nil {
		return errors.Newf("invalid backend registration %q", language)
	}
	if _, exists := r.factories[key]; exists {
		return errors.Newf("backend %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// New creates the installer for language.
func (r *Registry) New(language string, opts InstallerOptions) (Installer, error) {
	factory, ok := r.factories[strings.ToLower(language)]
	if !ok {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedLanguage, "%q", language),
			"available languages: %s", strings.Join(r.Languages(), ", "))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return factory(opts)
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
