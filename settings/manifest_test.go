package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
)

func TestDecodeManifestFlattensNestedKeys(t *testing.T) {
	m, err := DecodeManifest(`
[comments]
"shapes.Point" = "A point."
shapes.Point.x = "Horizontal offset."

[comments.geo.Shape]
Circle = "Round."

[custom_code]
"shapes.Point" = """
impl Point {}
"""
`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"shapes.Point":     "A point.",
		"shapes.Point.x":   "Horizontal offset.",
		"geo.Shape.Circle": "Round.",
	}, m.Comments)
	assert.Equal(t, "impl Point {}\n", m.CustomCode["shapes.Point"])
}

func TestDecodeManifestKeepsCase(t *testing.T) {
	m, err := DecodeManifest(`
[comments]
"mod.CamelCase.fieldName" = "kept"
`)
	require.NoError(t, err)

	cfg, err := codegen.NewConfig("mod", m.Options()...)
	require.NoError(t, err)
	doc, ok := cfg.Comment(codegen.Name("mod", "CamelCase", "fieldName"))
	require.True(t, ok)
	assert.Equal(t, "kept\n", doc)
}

func TestDecodeManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[comments\n"},
		{"unknown table", "[extras]\nfoo = \"bar\"\n"},
		{"non-string comment", "[comments]\n\"a.B\" = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[external_definitions]
core = ["Address", "Digest"]
`), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"core": {"Address", "Digest"}}, m.ExternalDefinitions)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestManifestOptionsRejectEmptyNames(t *testing.T) {
	m := &Manifest{Comments: map[string]string{"": "nobody"}}
	_, err := codegen.NewConfig("mod", m.Options()...)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}
