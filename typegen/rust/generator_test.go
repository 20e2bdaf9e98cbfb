package rust

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/wiregen/analyzer"
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/format"
	"github.com/teranos/wiregen/typegen"
)

// =============================================================================
// Test helpers
// =============================================================================

func plan(t *testing.T, containers map[string]format.Container, cfg *codegen.Config) *analyzer.Plan {
	t.Helper()
	p, err := analyzer.Analyze(format.MustRegistry(containers), cfg)
	require.NoError(t, err)
	return p
}

func generate(t *testing.T, p *analyzer.Plan, cfg *codegen.Config) string {
	t.Helper()
	src, err := GenerateModule(p, cfg)
	require.NoError(t, err)
	return src
}

func config(t *testing.T, opts ...codegen.Option) *codegen.Config {
	t.Helper()
	cfg, err := codegen.NewConfig("shapes", opts...)
	require.NoError(t, err)
	return cfg
}

var shapes = map[string]format.Container{
	"Point": format.Struct{Fields: []format.Named{
		format.Field("x", format.I64),
		format.Field("type", format.Str),
	}},
	"Shape": format.Enum{Variants: []format.Variant{
		{Index: 0, Name: "Empty", Payload: format.UnitVariant{}},
		{Index: 1, Name: "Circle", Payload: format.StructVariant{Fields: []format.Named{
			format.Field("center", format.Ref("Point")),
			format.Field("radius", format.U32),
		}}},
		{Index: 2, Name: "Poly", Payload: format.NewTypeVariant{Inner: format.SeqOf(format.Ref("Point"))}},
		{Index: 3, Name: "Pair", Payload: format.TupleVariant{Elems: []format.Format{format.Ref("Point"), format.Ref("Point")}}},
	}},
	"Unit":   format.UnitStruct{},
	"Name":   format.NewTypeStruct{Inner: format.Str},
	"Digest": format.TupleStruct{Elems: []format.Format{format.ArrayOf(format.U8, 32), format.Bytes}},
}

// =============================================================================
// Generation tests
// =============================================================================

func TestGenerateModuleDeclarations(t *testing.T) {
	cfg := config(t)
	src := generate(t, plan(t, shapes, cfg), cfg)

	assert.True(t, strings.HasPrefix(src, "// Code generated by wiregen. DO NOT EDIT.\n"))
	assert.Contains(t, src, "use serde::{Deserialize, Serialize};\n")
	assert.Contains(t, src, "#[derive(Clone, Debug, PartialEq, PartialOrd, Serialize, Deserialize)]\npub struct Point {\n    pub x: i64,\n    pub r#type: String,\n}\n")
	assert.Contains(t, src, "pub struct Unit;\n")
	assert.Contains(t, src, "pub struct Name(pub String);\n")
	assert.Contains(t, src, "pub struct Digest(pub [u8; 32], pub serde_bytes::ByteBuf);\n")
	assert.Contains(t, src, "pub enum Shape {\n    Empty,\n    Circle {\n        center: Point,\n        radius: u32,\n    },\n    Poly(Vec<Point>),\n    Pair(Point, Point),\n}\n")

	// plan order: Point before Shape
	assert.Less(t, strings.Index(src, "pub struct Point"), strings.Index(src, "pub enum Shape"))
	assert.NotContains(t, src, "impl ")
}

func TestGenerateModuleBoxesCycles(t *testing.T) {
	cfg := config(t)
	src := generate(t, plan(t, map[string]format.Container{
		"List": format.Struct{Fields: []format.Named{
			format.Field("next", format.OptionOf(format.Ref("List"))),
		}},
		"Tree": format.Struct{Fields: []format.Named{
			format.Field("children", format.SeqOf(format.Ref("Tree"))),
			format.Field("index", format.MapOf(format.Str, format.Ref("Tree"))),
			format.Field("pair", format.TupleOf(format.Ref("Tree"), format.U8)),
			format.Field("leaf", format.Ref("Leaf")),
		}},
		"Leaf": format.UnitStruct{},
	}, cfg), cfg)

	assert.Contains(t, src, "pub next: Option<Box<List>>,")
	assert.Contains(t, src, "pub children: Vec<Tree>,")
	assert.Contains(t, src, "pub index: std::collections::BTreeMap<String, Tree>,")
	assert.Contains(t, src, "pub pair: (Box<Tree>, u8),")
	assert.Contains(t, src, "pub leaf: Leaf,")
}

func TestGenerateModuleConfigSwitches(t *testing.T) {
	containers := map[string]format.Container{
		"Color": format.Enum{Variants: []format.Variant{
			{Index: 0, Name: "Red", Payload: format.UnitVariant{}},
			{Index: 1, Name: "Green", Payload: format.UnitVariant{}},
		}},
		"Account": format.Struct{Fields: []format.Named{
			format.Field("owner", format.Ref("Address")),
			format.Field("color", format.Ref("Color")),
		}},
	}
	cfg := config(t,
		codegen.WithEncodings(codegen.BCS, codegen.Bincode),
		codegen.WithCStyleEnums(true),
		codegen.WithExternalDefinitions(map[string][]string{"core": {"Address"}}),
		codegen.WithNamespace("core", "core_types::primitives"),
		codegen.WithComment(codegen.Name("shapes", "Color"), "  Display color.\n\nTwo lines."),
		codegen.WithComment(codegen.Name("shapes", "Account", "owner"), "Owner address"),
		codegen.WithComment(codegen.Name("shapes", "Nowhere"), "never used"),
		codegen.WithCustomCode(codegen.Name("shapes", "Account"), "impl Default for Account { }"),
	)
	src := generate(t, plan(t, containers, cfg), cfg)

	assert.Contains(t, src, "use core_types::primitives::{Address};\n")
	assert.Contains(t, src, "/// Display color.\n///\n/// Two lines.\n#[derive(Clone, Copy, Debug, PartialEq, Eq, Hash, PartialOrd, Ord, Serialize, Deserialize)]\n#[repr(u32)]\npub enum Color {\n    Red = 0,\n    Green = 1,\n}\n")
	assert.Contains(t, src, "    /// Owner address\n    pub owner: Address,\n")
	assert.Contains(t, src, "pub fn bincode_serialize(&self) -> Result<Vec<u8>, bincode::Error>")
	assert.Contains(t, src, "pub fn bcs_deserialize(input: &[u8]) -> Result<Self, bcs::Error>")
	assert.Less(t, strings.Index(src, "bincode_serialize"), strings.Index(src, "bcs_serialize"))
	assert.Contains(t, src, "\nimpl Default for Account { }\n")
	assert.NotContains(t, src, "never used")
}

func TestGenerateModuleWithoutSerialization(t *testing.T) {
	cfg := config(t, codegen.WithSerialization(false), codegen.WithEncodings(codegen.BCS))
	src := generate(t, plan(t, shapes, cfg), cfg)

	assert.NotContains(t, src, "serde::")
	assert.NotContains(t, src, "bcs_serialize")
	assert.Contains(t, src, "#[derive(Clone, Debug, PartialEq, PartialOrd)]\npub struct Unit;")
}

func TestGenerateModuleDeterministic(t *testing.T) {
	cfg := config(t, codegen.WithEncodings(codegen.Bincode))
	first := generate(t, plan(t, shapes, cfg), cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, generate(t, plan(t, shapes, cfg), cfg))
	}
}

func TestGenerateModuleRejectsIndexGaps(t *testing.T) {
	cfg := config(t, codegen.WithEncodings(codegen.Bincode))
	p := plan(t, map[string]format.Container{
		"Event": format.Enum{Variants: []format.Variant{
			{Index: 0, Name: "Started", Payload: format.UnitVariant{}},
			{Index: 5, Name: "Stopped", Payload: format.NewTypeVariant{Inner: format.U8}},
		}},
	}, cfg)

	_, err := GenerateModule(p, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
	assert.Contains(t, err.Error(), "Event.Stopped")
	assert.Contains(t, err.Error(), "variant index 5 where 1 was expected")
	assert.NotEmpty(t, errors.GetAllHints(err))

	// nothing is written for a registry the crate cannot encode faithfully
	root := t.TempDir()
	installer, err := New(typegen.InstallerOptions{OutputDir: root})
	require.NoError(t, err)
	assert.True(t, errors.IsMalformed(installer.InstallModule(p, cfg)))
	_, err = os.Stat(filepath.Join(root, "shapes"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateModuleOrdersMapKeys(t *testing.T) {
	cfg := config(t)
	src := generate(t, plan(t, map[string]format.Container{
		"Point": format.Struct{Fields: []format.Named{
			format.Field("x", format.I64),
			format.Field("tag", format.Ref("Tag")),
		}},
		"Tag":     format.NewTypeStruct{Inner: format.Str},
		"Measure": format.NewTypeStruct{Inner: format.F64},
		"Grid": format.Struct{Fields: []format.Named{
			format.Field("cells", format.MapOf(format.Ref("Point"), format.Ref("Measure"))),
		}},
	}, cfg), cfg)

	ordered := "#[derive(Clone, Debug, PartialEq, Eq, Hash, PartialOrd, Ord, Serialize, Deserialize)]\n"
	assert.Contains(t, src, ordered+"pub struct Point {")
	assert.Contains(t, src, ordered+"pub struct Tag(")
	// values only need the derives every container gets
	assert.Contains(t, src, "#[derive(Clone, Debug, PartialEq, PartialOrd, Serialize, Deserialize)]\npub struct Measure(")
	assert.Contains(t, src, "pub cells: std::collections::BTreeMap<Point, Measure>,")
}

func TestGenerateModuleRejectsFloatMapKeys(t *testing.T) {
	tests := map[string]map[string]format.Container{
		"float key": {
			"Table": format.NewTypeStruct{Inner: format.MapOf(format.F32, format.Str)},
		},
		"container key holding a float": {
			"Table": format.NewTypeStruct{Inner: format.MapOf(format.Ref("Weight"), format.Str)},
			"Weight": format.Struct{Fields: []format.Named{
				format.Field("kg", format.OptionOf(format.F64)),
			}},
		},
	}
	for name, containers := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config(t)
			_, err := GenerateModule(plan(t, containers, cfg), cfg)
			require.Error(t, err)
			assert.True(t, errors.IsMalformed(err))
			assert.Contains(t, err.Error(), "total order")
		})
	}
}

func TestGenerateModuleEscapesDeclarationNames(t *testing.T) {
	cfg := config(t)
	src := generate(t, plan(t, map[string]format.Container{
		"type": format.UnitStruct{},
		"Self": format.NewTypeStruct{Inner: format.Ref("type")},
		"Op": format.Enum{Variants: []format.Variant{
			{Index: 0, Name: "match", Payload: format.UnitVariant{}},
			{Index: 1, Name: "Wrap", Payload: format.NewTypeVariant{Inner: format.Ref("Self")}},
		}},
	}, cfg), cfg)

	assert.Contains(t, src, "pub struct r#type;\n")
	assert.Contains(t, src, "pub struct Self_(pub r#type);\n")
	assert.Contains(t, src, "pub enum Op {\n    r#match,\n    Wrap(Self_),\n}\n")
}

// =============================================================================
// Installer tests
// =============================================================================

func TestInstallModule(t *testing.T) {
	root := t.TempDir()
	installer, err := New(typegen.InstallerOptions{OutputDir: root, PackageVersion: "1.2", Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	cfg, err := codegen.NewConfig("my-shapes", codegen.WithEncodings(codegen.BCS))
	require.NoError(t, err)
	require.NoError(t, installer.InstallModule(plan(t, shapes, cfg), cfg))

	lib, err := os.ReadFile(filepath.Join(root, "my_shapes", "src", "lib.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(lib), "pub enum Shape")

	raw, err := os.ReadFile(filepath.Join(root, "my_shapes", "Cargo.toml"))
	require.NoError(t, err)
	var manifest cargoManifest
	require.NoError(t, toml.Unmarshal(raw, &manifest))
	assert.Equal(t, cargoPackage{Name: "my_shapes", Version: "1.2.0", Edition: "2021"}, manifest.Package)
	assert.Equal(t, []string{"derive"}, manifest.Dependencies["serde"].Features)
	assert.Contains(t, manifest.Dependencies, "bcs")
	assert.NotContains(t, manifest.Dependencies, "bincode")

	require.NoError(t, installer.InstallSerdeRuntime())
	require.NoError(t, installer.InstallBincodeRuntime())
	require.NoError(t, installer.InstallBCSRuntime())
}

func TestInstallModuleWithoutManifest(t *testing.T) {
	root := t.TempDir()
	installer, err := New(typegen.InstallerOptions{OutputDir: root, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	cfg := config(t, codegen.WithPackageManifest(false))
	require.NoError(t, installer.InstallModule(plan(t, shapes, cfg), cfg))

	_, err = os.Stat(filepath.Join(root, "shapes", "Cargo.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstallModuleReportsIOFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "shapes")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a directory"), 0644))

	installer, err := New(typegen.InstallerOptions{OutputDir: root, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	cfg := config(t)
	assert.Error(t, installer.InstallModule(plan(t, shapes, cfg), cfg))
}

func TestNewRejectsBadVersion(t *testing.T) {
	_, err := New(typegen.InstallerOptions{PackageVersion: "next", Logger: zap.NewNop().Sugar()})
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestWriteModule(t *testing.T) {
	installer, err := New(typegen.InstallerOptions{Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	cfg := config(t)
	p := plan(t, shapes, cfg)
	var buf bytes.Buffer
	require.NoError(t, installer.(typegen.SourceWriter).WriteModule(&buf, p, cfg))
	assert.Equal(t, generate(t, p, cfg), buf.String())
}
