package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNoSharedDir = errors.New("no shared directory configured")

// ProbeShared reports whether dir can host the shared backend: it must be
// configured, creatable and writable. A nil error means the shared backend is available.
func ProbeShared(dir string) error {
	if dir == "" {
		return errNoSharedDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("shared directory unavailable: %w", err)
	}
	f, err := os.CreateTemp(dir, ".blinknote-probe-*")
	if err != nil {
		return fmt.Errorf("shared directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// DefaultLocalPath returns the default database file of the local backend.
func DefaultLocalPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "blinknote", "local.db"), nil
}
