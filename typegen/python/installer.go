package python

import (
	"embed"
	"io"
	"path"
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
const Language = "python"

//go:embed runtime/*.py
var runtimeFiles embed.FS

// Runtime packages, each installed as <root>/<name>/__init__.py.
const (
	serdeTypesPackage  = "serde_types"
	serdeBinaryPackage = "serde_binary"
	bincodePackage     = "bincode"
	bcsPackage         = "bcs"
)

// Installer writes Python packages under a root directory.
type Installer struct {
	root    string
	version string
	log     *zap.SugaredLogger
}

var (
	_ typegen.Installer    = (*Installer)(nil)
	_ typegen.SourceWriter = (*Installer)(nil)
)

// New creates a Python installer; it is a typegen.Factory.
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

// InstallModule writes <root>/<package>/__init__.py and, when enabled,
// <root>/pyproject.toml.
func (i *Installer) InstallModule(plan *analyzer.Plan, cfg *codegen.Config) error {
	pkg := packageName(cfg.ModuleName())

	if cfg.PackageManifest() {
		manifest, err := Manifest(pkg, i.version, cfg)
		if err != nil {
			return err
		}
		if err := util.WriteFile(i.log, i.root, "pyproject.toml", manifest); err != nil {
			return err
		}
	}

	source := GenerateModule(plan, cfg)
	if err := util.WriteFile(i.log, i.root, filepath.Join(pkg, "__init__.py"), []byte(source)); err != nil {
		return err
	}
	i.log.Infow("Generated package", "package", pkg, "count", len(plan.Order()))
	return nil
}

// WriteModule renders __init__.py to w.
func (i *Installer) WriteModule(w io.Writer, plan *analyzer.Plan, cfg *codegen.Config) error {
	return WriteModule(w, plan, cfg)
}

// InstallSerdeRuntime installs serde_types and serde_binary.
func (i *Installer) InstallSerdeRuntime() error {
	if err := i.installRuntime(serdeTypesPackage); err != nil {
		return err
	}
	return i.installRuntime(serdeBinaryPackage)
}

// InstallBincodeRuntime installs the bincode package.
func (i *Installer) InstallBincodeRuntime() error {
	return i.installRuntime(bincodePackage)
}

// InstallBCSRuntime installs the bcs package.
func (i *Installer) InstallBCSRuntime() error {
	return i.installRuntime(bcsPackage)
}

func (i *Installer) installRuntime(name string) error {
	content, err := RuntimeSource(name)
	if err != nil {
		return err
	}
	if err := util.WriteFile(i.log, i.root, filepath.Join(name, "__init__.py"), content); err != nil {
		return err
	}
	i.log.Debugw("Installed runtime", "runtime", name)
	return nil
}

// RuntimeSource returns the embedded source of a runtime package.
func RuntimeSource(name string) ([]byte, error) {
	content, err := runtimeFiles.ReadFile(path.Join("runtime", name+".py"))
	if err != nil {
		return nil, errors.Wrapf(err, "unknown python runtime %q", name)
	}
	return content, nil
}

type pyproject struct {
	Project pyprojectProject `toml:"project"`
	Tool    pyprojectTool    `toml:"tool"`
}

type pyprojectProject struct {
	Name           string `toml:"name"`
	Version        string `toml:"version"`
	RequiresPython string `toml:"requires-python"`
}

type pyprojectTool struct {
	Setuptools pyprojectSetuptools `toml:"setuptools"`
}

type pyprojectSetuptools struct {
	Packages []string `toml:"packages"`
}

// Manifest renders pyproject.toml. The package list covers the generated
// package and the runtimes it imports.
func Manifest(pkg, version string, cfg *codegen.Config) ([]byte, error) {
	packages := []string{pkg, serdeTypesPackage}
	if cfg.Serialization() {
		packages = append(packages, serdeBinaryPackage)
		for _, enc := range cfg.Encodings() {
			packages = append(packages, encodingRuntimes[enc].module)
		}
	}
	m := pyproject{
		Project: pyprojectProject{Name: pkg, Version: version, RequiresPython: ">=3.8"},
		Tool:    pyprojectTool{Setuptools: pyprojectSetuptools{Packages: packages}},
	}
	out, err := toml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode pyproject.toml")
	}
	return out, nil
}
