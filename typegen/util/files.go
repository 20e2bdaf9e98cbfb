package util

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/wiregen/errors"
)

// Directory and file permissions for generated output
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(log *zap.SugaredLogger, root, rel string, content []byte) error {
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", rel)
	}
	if err := os.WriteFile(path, content, FilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", rel)
	}
	log.Debugw("Wrote file", "file", path, "size", len(content))
	return nil
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
