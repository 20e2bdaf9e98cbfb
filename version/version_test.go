package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	dev := Info{CommitHash: "0123456789abcdef", BuildTime: "now", Version: "dev", Platform: "linux/amd64"}
	assert.False(t, dev.Release())
	assert.Equal(t, "wiregen dev (commit 0123456, built now, linux/amd64)", dev.String())

	tagged := dev
	tagged.Version = "v1.4.0"
	assert.True(t, tagged.Release())
	assert.Equal(t, "wiregen v1.4.0 (commit 0123456, built now, linux/amd64)", tagged.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
	assert.Equal(t, "abcdef1", Info{CommitHash: "abcdef1234"}.Short())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
