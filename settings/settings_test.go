package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance, no files or env
	v := viper.New()
	SetDefaults(v)

	s, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.True(t, s.Serialization)
	assert.True(t, s.PackageManifest)
	assert.False(t, s.CStyleEnums)
	assert.Equal(t, "0.1.0", s.PackageVersion)
	assert.Equal(t, DefaultDebounceMS, s.Watch.DebounceMS)
	assert.Empty(t, s.Encodings)
	assert.NoError(t, s.Validate())
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`
language = "rust"
module_name = "shapes"
encodings = ["bcs", "bincode"]
with_runtimes = ["serde"]
serialization = false
package_version = "2.1"

[watch]
debounce_ms = 50

[log]
json = true
`), 0644))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "rust", s.Language)
	assert.Equal(t, "shapes", s.ModuleName)
	assert.Equal(t, []string{"bcs", "bincode"}, s.Encodings)
	assert.Equal(t, []string{"serde"}, s.WithRuntimes)
	assert.False(t, s.Serialization)
	assert.True(t, s.PackageManifest)
	assert.Equal(t, 50, s.Watch.DebounceMS)
	assert.True(t, s.Log.JSON)
}

func TestLoadBrokenProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("language = \"rust\n"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadFindsProjectConfigUpwards(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`module_name = "found"`), 0644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, filepath.Join(root, ConfigFileName), FindProjectConfig(nested))

	s, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "found", s.ModuleName)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`
module_name = "from_file"
[watch]
debounce_ms = 10
`), 0644))
	t.Setenv("WIREGEN_MODULE_NAME", "from_env")
	t.Setenv("WIREGEN_WATCH_DEBOUNCE_MS", "75")

	s, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "from_env", s.ModuleName)
	assert.Equal(t, 75, s.Watch.DebounceMS)
}

func TestValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{PackageVersion: "1.0.0"}
	}
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown encoding", func(s *Settings) { s.Encodings = []string{"protobuf"} }},
		{"unknown runtime", func(s *Settings) { s.WithRuntimes = []string{"serde", "json"} }},
		{"bad package version", func(s *Settings) { s.PackageVersion = "one" }},
		{"negative debounce", func(s *Settings) { s.Watch.DebounceMS = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			require.NoError(t, s.Validate())
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestBuildConfig(t *testing.T) {
	s := &Settings{
		ModuleName:      "shapes",
		Encodings:       []string{"BCS", "bincode", "bcs"},
		Serialization:   true,
		PackageManifest: false,
		CStyleEnums:     true,
	}
	m, err := DecodeManifest(`
[comments]
"shapes.Point" = "A point."

[external_definitions]
core = ["Address"]

[namespaces]
core = "core_types"
`)
	require.NoError(t, err)

	cfg, err := BuildConfig(s, m)
	require.NoError(t, err)
	assert.Equal(t, "shapes", cfg.ModuleName())
	assert.Equal(t, []codegen.Encoding{codegen.Bincode, codegen.BCS}, cfg.Encodings())
	assert.False(t, cfg.PackageManifest())
	assert.True(t, cfg.CStyleEnums())
	assert.True(t, cfg.IsExternal("Address"))

	doc, ok := cfg.Comment(codegen.Name("shapes", "Point"))
	require.True(t, ok)
	assert.Equal(t, "A point.\n", doc)

	ns, ok := cfg.Namespace("core")
	require.True(t, ok)
	assert.Equal(t, "core_types", ns)
}

func TestBuildConfigRequiresModuleName(t *testing.T) {
	_, err := BuildConfig(&Settings{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.Contains(t, errors.FlattenHints(err), "--module-name")
}
