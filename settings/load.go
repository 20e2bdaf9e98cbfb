package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/wiregen/errors"
)

// NewViper returns a viper instance with defaults, WIREGEN_* environment
// overrides and, when one is found walking up from startDir, wiregen.toml.
// Precedence (lowest to highest): defaults < file < env vars < bound flags.
func NewViper(startDir string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path := FindProjectConfig(startDir); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return v, nil
}

// Load reads the settings that apply in startDir.
func Load(startDir string) (*Settings, error) {
	v, err := NewViper(startDir)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper loads settings using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal settings")
	}
	return &s, nil
}

// FindProjectConfig searches for wiregen.toml by walking up the directory
// tree from dir. Returns the path to the first file found, or empty string.
func FindProjectConfig(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
