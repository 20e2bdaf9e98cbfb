package settings

import (
	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/typegen"
	"github.com/teranos/wiregen/typegen/util"
)

// Validate checks that the settings are usable for a generation run. The
// language is checked later against the backend registry.
func (s *Settings) Validate() error {
	if _, err := codegen.ParseEncodings(s.Encodings); err != nil {
		return errors.Wrap(err, "encodings")
	}
	if _, err := typegen.ParseRuntimes(s.WithRuntimes); err != nil {
		return errors.Wrap(err, "with_runtimes")
	}
	if _, err := util.PackageVersion(s.PackageVersion); err != nil {
		return errors.Wrap(err, "package_version")
	}

	// 0 = regenerate on every event, negative = invalid
	if s.Watch.DebounceMS < 0 {
		return errors.NewInvalidConfigError("watch.debounce_ms must be >= 0, got %d", s.Watch.DebounceMS)
	}
	return nil
}

// ConfigOptions converts the switches and encodings into codegen options.
func (s *Settings) ConfigOptions() ([]codegen.Option, error) {
	encodings, err := codegen.ParseEncodings(s.Encodings)
	if err != nil {
		return nil, err
	}
	return []codegen.Option{
		codegen.WithSerialization(s.Serialization),
		codegen.WithEncodings(encodings...),
		codegen.WithCStyleEnums(s.CStyleEnums),
		codegen.WithPackageManifest(s.PackageManifest),
	}, nil
}

// BuildConfig assembles the generation config from settings and an optional
// manifest. The module name is required.
func BuildConfig(s *Settings, m *Manifest) (*codegen.Config, error) {
	if s.ModuleName == "" {
		return nil, errors.WithHint(
			errors.NewInvalidConfigError("module name is required"),
			"pass --module-name or set module_name in wiregen.toml")
	}
	opts, err := s.ConfigOptions()
	if err != nil {
		return nil, err
	}
	if m != nil {
		opts = append(opts, m.Options()...)
	}
	return codegen.NewConfig(s.ModuleName, opts...)
}
