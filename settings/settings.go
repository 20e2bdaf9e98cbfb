// Package settings loads wiregen CLI settings from wiregen.toml, WIREGEN_*
// environment variables and command-line flags, and the generation manifest
// that carries per-name documentation and custom code.
package settings

import "fmt"

// Settings represents the wiregen CLI configuration
type Settings struct {
	Language        string        `mapstructure:"language"`
	Encodings       []string      `mapstructure:"encodings"`
	ModuleName      string        `mapstructure:"module_name"`
	OutputDir       string        `mapstructure:"output_dir"`
	WithRuntimes    []string      `mapstructure:"with_runtimes"` // serde, bincode, bcs
	Serialization   bool          `mapstructure:"serialization"`
	CStyleEnums     bool          `mapstructure:"c_style_enums"`
	PackageManifest bool          `mapstructure:"package_manifest"`
	PackageVersion  string        `mapstructure:"package_version"`
	Manifest        string        `mapstructure:"manifest"`       // path of the generation manifest
	FormatCommand   string        `mapstructure:"format_command"` // e.g. "cargo fmt"
	Log             LogSettings   `mapstructure:"log"`
	Watch           WatchSettings `mapstructure:"watch"`
}

// LogSettings configures log output
type LogSettings struct {
	JSON bool `mapstructure:"json"`
}

// WatchSettings configures `wiregen watch`
type WatchSettings struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// String returns a string representation of the settings
func (s *Settings) String() string {
	return fmt.Sprintf("Settings{Language: %s, Module: %s, Encodings: %v, OutputDir: %s}",
		s.Language, s.ModuleName, s.Encodings, s.OutputDir)
}
