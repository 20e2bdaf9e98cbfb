package typegen

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/wiregen/errors"
)

// CheckResult holds the result of comparing fresh output with a previously
// generated tree.
type CheckResult struct {
	UpToDate bool
	// Differences lists relative paths whose content differs.
	Differences []string
	// Missing lists relative paths produced by the fresh run but absent from
	// the existing tree.
	Missing []string
}

// CompareDirectories compares every file under generatedDir with the file at
// the same relative path under existingDir. Files that only exist in
// existingDir are ignored so hand-written siblings do not fail the check.
func CompareDirectories(generatedDir, existingDir string) (*CheckResult, error) {
	result := &CheckResult{}

	err := filepath.WalkDir(generatedDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != generatedDir && shouldSkip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldSkip(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(generatedDir, path)
		if err != nil {
			return err
		}
		different, err := filesAreDifferent(path, filepath.Join(existingDir, rel))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Missing = append(result.Missing, rel)
		case err != nil:
			return err
		case different:
			result.Differences = append(result.Differences, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compare %s with %s", generatedDir, existingDir)
	}

	sort.Strings(result.Differences)
	sort.Strings(result.Missing)
	result.UpToDate = len(result.Differences) == 0 && len(result.Missing) == 0
	return result, nil
}

// shouldSkip returns true for build artifacts that are never generated.
func shouldSkip(name string) bool {
	switch name {
	case "target", "__pycache__", "Cargo.lock", ".pytest_cache":
		return true
	}
	return false
}

func filesAreDifferent(generated, existing string) (bool, error) {
	want, err := os.ReadFile(generated)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", generated)
	}
	got, err := os.ReadFile(existing)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(want, got), nil
}
