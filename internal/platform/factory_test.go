package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/introspection"

	"github.com/aretw0/blinknote/internal/platform"
	"github.com/aretw0/blinknote/pkg/adapters/memory"
	"github.com/aretw0/blinknote/pkg/core"
)

func backendType(t *testing.T, svc *core.Service) string {
	t.Helper()
	comp, ok := svc.Store().Backend().(introspection.Component)
	if !ok {
		t.Fatalf("backend %T does not report a component type", svc.Store().Backend())
	}
	return comp.ComponentType()
}

func TestNew(t *testing.T) {
	t.Run("Writable Shared Dir Selects Shared Backend", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "shared")
		svc, err := platform.New(
			platform.WithSharedDir(dir),
			platform.WithLocalPath(filepath.Join(t.TempDir(), "local.db")),
		)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer svc.Close()

		if got := backendType(t, svc); got != "shared" {
			t.Errorf("Expected shared backend, got %s", got)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Shared directory not created")
		}
	})

	t.Run("No Shared Dir Falls Back To Local", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "local.db")
		svc, err := platform.New(platform.WithLocalPath(path))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer svc.Close()

		if got := backendType(t, svc); got != "local" {
			t.Errorf("Expected local backend, got %s", got)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Local database not created: %v", err)
		}
	})

	t.Run("Unusable Shared Dir Falls Back To Local", func(t *testing.T) {
		base := t.TempDir()
		blocker := filepath.Join(base, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		svc, err := platform.New(
			platform.WithSharedDir(filepath.Join(blocker, "shared")),
			platform.WithLocalPath(filepath.Join(base, "local.db")),
		)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer svc.Close()

		if got := backendType(t, svc); got != "local" {
			t.Errorf("Expected local backend, got %s", got)
		}
	})

	t.Run("Injected Backend Wins", func(t *testing.T) {
		backend := memory.New()
		svc, err := platform.New(platform.WithBackend(backend), platform.WithSharedDir(t.TempDir()))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if svc.Store().Backend() != backend {
			t.Errorf("Expected the injected backend")
		}
	})

	t.Run("Forced Memory Adapter And Custom Key", func(t *testing.T) {
		svc, err := platform.New(platform.WithAdapter(platform.AdapterMemory), platform.WithKey("notes"))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if got := backendType(t, svc); got != "memory" {
			t.Errorf("Expected memory backend, got %s", got)
		}
		if svc.Store().Key() != "notes" {
			t.Errorf("Expected key notes, got %s", svc.Store().Key())
		}
	})

	t.Run("Unknown Adapter Fails", func(t *testing.T) {
		if _, err := platform.New(platform.WithAdapter("cloud")); err == nil {
			t.Error("Expected error for unknown adapter")
		}
	})

	t.Run("Clock And ID Generator Reach The Service", func(t *testing.T) {
		svc, err := platform.New(
			platform.WithAdapter(platform.AdapterMemory),
			platform.WithIDGenerator(func() string { return "fixed" }),
		)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		n, _, err := svc.Append(context.Background(), core.Draft{Content: "hello"})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if n.ID != "fixed" {
			t.Errorf("Expected id fixed, got %s", n.ID)
		}
	})
}

func TestNewSession(t *testing.T) {
	s, err := platform.NewSession(platform.WithAdapter(platform.AdapterMemory))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestProbeShared(t *testing.T) {
	if err := platform.ProbeShared(""); err == nil {
		t.Error("Expected error for empty directory")
	}

	dir := t.TempDir()
	if err := platform.ProbeShared(dir); err != nil {
		t.Fatalf("Expected writable dir to pass: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Probe left %d files behind", len(entries))
	}
}
