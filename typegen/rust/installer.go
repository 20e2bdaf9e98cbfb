package rust

import (
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/typegen"
	"github.com/teranos/wiregen/typegen/util"
)

// Language is the name this backend registers under.
const Language = "rust"

// Installer writes crates under a root directory.
type Installer struct {
	root    string
	version string
	log     *zap.SugaredLogger
}

var (
	_ typegen.Installer    = (*Installer)(nil)
	_ typegen.SourceWriter = (*Installer)(nil)
)

// New creates a Rust installer; it is a typegen.Factory.
func New(opts typegen.InstallerOptions) (typegen.Installer, error) {
	version, err := util.PackageVersion(opts.PackageVersion)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Installer{root: opts.OutputDir, version: version, log: log}, nil
}

// InstallModule writes <root>/<crate>/src/lib.rs and, when enabled,
// <root>/<crate>/Cargo.toml.
func (i *Installer) InstallModule(plan *analyzer.Plan, cfg *codegen.Config) error {
	crate := crateName(cfg.ModuleName())

	source, err := GenerateModule(plan, cfg)
	if err != nil {
		return err
	}

	if cfg.PackageManifest() {
		manifest, err := Manifest(crate, i.version, cfg)
		if err != nil {
			return err
		}
		if err := util.WriteFile(i.log, i.root, filepath.Join(crate, "Cargo.toml"), manifest); err != nil {
			return err
		}
	}

	if err := util.WriteFile(i.log, i.root, filepath.Join(crate, "src", "lib.rs"), []byte(source)); err != nil {
		return err
	}
	i.log.Infow("Generated crate", "crate", crate, "count", len(plan.Order()))
	return nil
}

// WriteModule renders lib.rs to w.
func (i *Installer) WriteModule(w io.Writer, plan *analyzer.Plan, cfg *codegen.Config) error {
	return WriteModule(w, plan, cfg)
}

// The Rust runtimes are ordinary crates resolved by cargo from the manifest,
// so the runtime operations only record that nothing needs copying.

// InstallSerdeRuntime is a no-op: serde comes from crates.io.
func (i *Installer) InstallSerdeRuntime() error {
	i.log.Debugw("Runtime provided by cargo", "runtime", "serde")
	return nil
}

// InstallBincodeRuntime is a no-op: bincode comes from crates.io.
func (i *Installer) InstallBincodeRuntime() error {
	i.log.Debugw("Runtime provided by cargo", "runtime", "bincode")
	return nil
}

// InstallBCSRuntime is a no-op: bcs comes from crates.io.
func (i *Installer) InstallBCSRuntime() error {
	i.log.Debugw("Runtime provided by cargo", "runtime", "bcs")
	return nil
}

type cargoManifest struct {
	Package      cargoPackage               `toml:"package"`
	Dependencies map[string]cargoDependency `toml:"dependencies,omitempty"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type cargoDependency struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features,omitempty"`
}

// crate versions written to generated manifests
var crateVersions = map[string]string{
	"serde":       "1.0",
	"serde_bytes": "0.11",
	"bincode":     "1.3",
	"bcs":         "0.1.6",
}

// Manifest renders the Cargo.toml for a generated crate.
func Manifest(crate, version string, cfg *codegen.Config) ([]byte, error) {
	m := cargoManifest{
		Package: cargoPackage{Name: crate, Version: version, Edition: "2021"},
		// ByteBuf is used for BYTES fields even without serialization
		Dependencies: map[string]cargoDependency{
			"serde_bytes": {Version: crateVersions["serde_bytes"]},
		},
	}
	if cfg.Serialization() {
		m.Dependencies["serde"] = cargoDependency{Version: crateVersions["serde"], Features: []string{"derive"}}
		for _, enc := range cfg.Encodings() {
			m.Dependencies[enc.Name()] = cargoDependency{Version: crateVersions[enc.Name()]}
		}
	}
	out, err := toml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode Cargo.toml")
	}
	return out, nil
}
