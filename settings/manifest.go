package settings

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
)

// Manifest is the generation manifest: documentation and custom code keyed
// by dotted qualified names, external definitions and namespace overrides.
//
//	[comments]
//	"shapes.Point" = "A point."
//	shapes.Point.x = "Horizontal offset."  # nested tables are flattened
//
//	[external_definitions]
//	core = ["Address"]
//
// Keys are case-sensitive, which is why the manifest is decoded with
// BurntSushi/toml instead of viper.
type Manifest struct {
	Comments            map[string]string
	CustomCode          map[string]string
	ExternalDefinitions map[string][]string
	Namespaces          map[string]string
}

type rawManifest struct {
	Comments            map[string]interface{} `toml:"comments"`
	CustomCode          map[string]interface{} `toml:"custom_code"`
	ExternalDefinitions map[string][]string    `toml:"external_definitions"`
	Namespaces          map[string]string      `toml:"namespaces"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var raw rawManifest
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "failed to read manifest %s", path)
	}
	m, err := fromRaw(raw, md)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

// DecodeManifest parses manifest TOML from memory.
func DecodeManifest(data string) (*Manifest, error) {
	var raw rawManifest
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse manifest"), errors.ErrInvalidConfig)
	}
	return fromRaw(raw, md)
}

func fromRaw(raw rawManifest, md toml.MetaData) (*Manifest, error) {
	var unknown []string
	for _, key := range md.Undecoded() {
		// comments and custom_code are free-form tables
		if len(key) > 0 && (key[0] == "comments" || key[0] == "custom_code") {
			continue
		}
		unknown = append(unknown, key.String())
	}
	if len(unknown) > 0 {
		return nil, errors.WithHint(
			errors.NewInvalidConfigError("unknown manifest keys: %s", strings.Join(unknown, ", ")),
			"supported tables: comments, custom_code, external_definitions, namespaces")
	}

	m := &Manifest{
		Comments:            make(map[string]string),
		CustomCode:          make(map[string]string),
		ExternalDefinitions: raw.ExternalDefinitions,
		Namespaces:          raw.Namespaces,
	}
	if err := flatten("comments", "", raw.Comments, m.Comments); err != nil {
		return nil, err
	}
	if err := flatten("custom_code", "", raw.CustomCode, m.CustomCode); err != nil {
		return nil, err
	}
	return m, nil
}

// flatten joins nested tables into dotted keys. Leaves must be strings.
func flatten(table, prefix string, in map[string]interface{}, out map[string]string) error {
	for key, value := range in {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			if _, dup := out[name]; dup {
				return errors.NewInvalidConfigError("%s: %q is defined twice", table, name)
			}
			out[name] = v
		case map[string]interface{}:
			if err := flatten(table, name, v, out); err != nil {
				return err
			}
		default:
			return errors.NewInvalidConfigError("%s: %q must be a string, got %T", table, name, value)
		}
	}
	return nil
}

// Options converts the manifest into codegen options, in sorted key order so
// the result does not depend on map iteration.
func (m *Manifest) Options() []codegen.Option {
	var opts []codegen.Option
	if len(m.ExternalDefinitions) > 0 {
		opts = append(opts, codegen.WithExternalDefinitions(m.ExternalDefinitions))
	}
	for _, key := range sortedKeys(m.Comments) {
		opts = append(opts, codegen.WithComment(codegen.ParseQualifiedName(key), m.Comments[key]))
	}
	for _, key := range sortedKeys(m.CustomCode) {
		opts = append(opts, codegen.WithCustomCode(codegen.ParseQualifiedName(key), m.CustomCode[key]))
	}
	for _, ns := range sortedKeys(m.Namespaces) {
		opts = append(opts, codegen.WithNamespace(ns, m.Namespaces[ns]))
	}
	return opts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
