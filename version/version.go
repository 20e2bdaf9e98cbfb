// Package version reports build information injected through ldflags:
//
//	go build -ldflags "-X github.com/teranos/wiregen/version.Version=v0.3.0 \
//	    -X github.com/teranos/wiregen/version.CommitHash=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Release reports whether the binary carries a tagged semantic version.
func (i Info) Release() bool {
	_, err := semver.NewVersion(i.Version)
	return err == nil
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Release() {
		return fmt.Sprintf("wiregen %s (commit %s, built %s, %s)", i.Version, i.Short(), i.BuildTime, i.Platform)
	}
	return fmt.Sprintf("wiregen dev (commit %s, built %s, %s)", i.Short(), i.BuildTime, i.Platform)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
