package settings

import "github.com/spf13/viper"

// ConfigFileName is the project settings file searched for from the working
// directory upwards.
const ConfigFileName = "wiregen.toml"

// EnvPrefix is the prefix of environment variable overrides (WIREGEN_LANGUAGE, ...)
const EnvPrefix = "WIREGEN"

// DefaultDebounceMS is the watch debounce when none is configured
const DefaultDebounceMS = 300

// SetDefaults configures default values for all settings. Every key gets a
// default so AutomaticEnv can resolve it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("language", "")
	v.SetDefault("encodings", []string{})
	v.SetDefault("module_name", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("with_runtimes", []string{})
	v.SetDefault("serialization", true)
	v.SetDefault("c_style_enums", false)
	v.SetDefault("package_manifest", true)
	v.SetDefault("package_version", "0.1.0")
	v.SetDefault("manifest", "")
	v.SetDefault("format_command", "")

	v.SetDefault("log.json", false)
	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}
