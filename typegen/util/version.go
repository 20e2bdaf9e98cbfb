package util

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/wiregen/errors"
)

// DefaultPackageVersion is used for package manifests when none is configured.
const DefaultPackageVersion = "0.1.0"

// PackageVersion validates a manifest version and returns it in canonical
// semantic-version form ("1.2" becomes "1.2.0"). Empty means the default.
func PackageVersion(v string) (string, error) {
	if v == "" {
		return DefaultPackageVersion, nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrapf(errors.ErrInvalidConfig, "package version %q: %v", v, err),
			"use a semantic version such as 1.0.0")
	}
	return parsed.String(), nil
}
