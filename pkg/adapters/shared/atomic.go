package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks in-progress writes; the watcher never reports them.
const tempPrefix = ".blinknote-tmp-"

// replaceFile swaps the content of path in one rename, so a reader (or another
// instance watching the directory) sees either the old or the new collection.
func replaceFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	renamed = true
	return nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(filepath.Base(name), tempPrefix)
}
