package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/wiregen/errors"
)

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(nil, time.Millisecond, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent", "registry.yaml")}, time.Millisecond, nil)
	assert.Error(t, err)
}

func TestWatcherDeliversDebouncedChanges(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "registry.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(registry, []byte("A: UNITSTRUCT\n"), 0644))

	w, err := New([]string{registry}, 20*time.Millisecond, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Equal(t, []string{registry}, w.Files())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var batches [][]string
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, changed)
			return errors.New("callback errors are logged, not fatal")
		})
	}()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(registry, []byte("A: UNITSTRUCT\nB: UNITSTRUCT\n"), 0644))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range batches {
		assert.Equal(t, []string{registry}, batch)
	}
}
