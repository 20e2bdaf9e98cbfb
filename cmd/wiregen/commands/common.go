package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/logger"
	"github.com/teranos/wiregen/settings"
	"github.com/teranos/wiregen/typegen"
	"github.com/teranos/wiregen/typegen/backends"
	"github.com/teranos/wiregen/typegen/util"
)

// flag name -> settings key, for flags that map one to one
var flagKeys = map[string]string{
	"language":        "language",
	"encodings":       "encodings",
	"with-runtimes":   "with_runtimes",
	"module-name":     "module_name",
	"target-dir":      "output_dir",
	"c-style-enums":   "c_style_enums",
	"manifest":        "manifest",
	"package-version": "package_version",
	"format-command":  "format_command",
}

func addGenerationFlags(fs *pflag.FlagSet) {
	fs.StringP("language", "l", "", "Target language (see 'wiregen languages')")
	fs.StringSlice("encodings", nil, "Encodings to support: bincode, bcs")
	fs.StringSlice("with-runtimes", nil, "Runtimes to install: serde, bincode, bcs")
	fs.String("module-name", "", "Module name (default: registry file name)")
	fs.StringP("target-dir", "o", "", "Output directory (default: stdout)")
	fs.Bool("skip-serialization", false, "Do not emit (de)serialization methods")
	fs.Bool("skip-package-manifest", false, "Do not emit a package manifest")
	fs.Bool("c-style-enums", false, "Emit enums without payloads as native enumerations")
	fs.String("manifest", "", "Generation manifest (comments, custom code, external definitions)")
	fs.String("package-version", "", "Version written to package manifests")
	fs.String("format-command", "", "Command run in the output directory after generation, e.g. \"cargo fmt\"")
}

// addAnalysisFlags registers the subset of flags that shape the plan.
func addAnalysisFlags(fs *pflag.FlagSet) {
	fs.String("module-name", "", "Module name (default: registry file name)")
	fs.String("manifest", "", "Generation manifest (external definitions are excluded from the plan)")
}

// loadSettings resolves settings from defaults, wiregen.toml, WIREGEN_* and
// the flags the user actually set.
func loadSettings(cmd *cobra.Command) (*settings.Settings, error) {
	v, err := settings.NewViper("")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "failed to bind --%s", name)
			}
		}
	}
	// Negated switches
	if skip, _ := flags.GetBool("skip-serialization"); skip {
		v.Set("serialization", false)
	}
	if skip, _ := flags.GetBool("skip-package-manifest"); skip {
		v.Set("package_manifest", false)
	}

	s, err := settings.LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger.ShouldOutput(verbosity, logger.OutputConfig) {
		logger.Debugw("Settings loaded", "settings", s.String())
	}
	return s, nil
}

// defaultModuleName derives a module name from the registry file name.
func defaultModuleName(registryPath string) string {
	base := filepath.Base(registryPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return util.ModuleIdent(base)
}

// stdinRegistry is the registry argument that reads from standard input
const stdinRegistry = "-"

// readRegistry loads the registry file, or decodes stdin for "-".
func readRegistry(registryPath string, stdin io.Reader) (*format.Registry, error) {
	if registryPath != stdinRegistry {
		return format.LoadRegistry(registryPath)
	}
	reg, err := format.ReadRegistry(stdin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry from stdin")
	}
	return reg, nil
}

// loadInputs reads the registry and builds the generation config.
func loadInputs(s *settings.Settings, registryPath string, stdin io.Reader) (*format.Registry, *codegen.Config, error) {
	reg, err := readRegistry(registryPath, stdin)
	if err != nil {
		return nil, nil, err
	}

	if s.ModuleName == "" && registryPath != stdinRegistry {
		s.ModuleName = defaultModuleName(registryPath)
	}

	var manifest *settings.Manifest
	if s.Manifest != "" {
		manifest, err = settings.LoadManifest(s.Manifest)
		if err != nil {
			return nil, nil, err
		}
	}

	cfg, err := settings.BuildConfig(s, manifest)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

// generate runs one generation into s.OutputDir, or stdout when it is empty.
func generate(ctx context.Context, s *settings.Settings, registryPath string, stdin io.Reader, stdout io.Writer) (*typegen.Result, error) {
	registry := backends.Default()
	if s.Language == "" {
		return nil, errors.WithHintf(
			errors.NewInvalidConfigError("no target language"),
			"pass --language (available: %s)", strings.Join(registry.Languages(), ", "))
	}

	reg, cfg, err := loadInputs(s, registryPath, stdin)
	if err != nil {
		return nil, err
	}
	runtimes, err := typegen.ParseRuntimes(s.WithRuntimes)
	if err != nil {
		return nil, err
	}

	return typegen.Run(ctx, registry, typegen.RunOptions{
		Language:       s.Language,
		Registry:       reg,
		Config:         cfg,
		OutputDir:      s.OutputDir,
		Stdout:         stdout,
		Runtimes:       runtimes,
		PackageVersion: s.PackageVersion,
		FormatCommand:  s.FormatCommand,
		Verbosity:      verbosity,
	}, logger.ComponentLogger("typegen").With(logger.FieldRegistry, registryPath))
}

// PrintError writes err and its hints to w.
func PrintError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	if verbosity >= logger.VerbosityDebug {
		for _, detail := range errors.GetAllDetails(err) {
			fmt.Fprintf(w, "  detail: %s\n", detail)
		}
	}
}
