package attach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/binder/internal/errors"
)

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID failed: %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("id length = %d, want 26 (ULID)", len(id))
		}
		if seen[id] {
			t.Fatalf("id %s generated twice", id)
		}
		seen[id] = true
	}
}

func TestCopyIn(t *testing.T) {
	srcDir := t.TempDir()
	registry := NewRegistry(t.TempDir())

	srcPath := filepath.Join(srcDir, "scan.pdf")
	if err := os.WriteFile(srcPath, []byte("pdf bytes"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a, err := registry.CopyIn(srcPath)
	if err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}

	if a.OriginalFilename != "scan.pdf" {
		t.Errorf("OriginalFilename = %q, want %q", a.OriginalFilename, "scan.pdf")
	}
	if a.StoragePath != a.ID+".pdf" {
		t.Errorf("StoragePath = %q, want %q", a.StoragePath, a.ID+".pdf")
	}

	data, err := os.ReadFile(registry.Path(a.StoragePath))
	if err != nil {
		t.Fatalf("reading stored file failed: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("stored content = %q, want %q", data, "pdf bytes")
	}

	// No temp file left behind
	matches, _ := filepath.Glob(filepath.Join(registry.Dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestCopyIn_FreshIDPerCopy(t *testing.T) {
	srcDir := t.TempDir()
	registry := NewRegistry(t.TempDir())

	srcPath := filepath.Join(srcDir, "data.csv")
	if err := os.WriteFile(srcPath, []byte("a,b\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	first, err := registry.CopyIn(srcPath)
	if err != nil {
		t.Fatalf("first CopyIn failed: %v", err)
	}
	second, err := registry.CopyIn(srcPath)
	if err != nil {
		t.Fatalf("second CopyIn failed: %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("both copies share id %s, want distinct ids", first.ID)
	}
}

func TestCopyIn_MissingSource(t *testing.T) {
	registry := NewRegistry(t.TempDir())

	_, err := registry.CopyIn(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("CopyIn on missing source = %v, want ErrNotFound", err)
	}
}

func TestCopyIn_DirectorySource(t *testing.T) {
	registry := NewRegistry(t.TempDir())

	_, err := registry.CopyIn(t.TempDir())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("CopyIn on directory = %v, want ErrInvalidRequest", err)
	}
}

func TestRemove(t *testing.T) {
	srcDir := t.TempDir()
	registry := NewRegistry(t.TempDir())

	srcPath := filepath.Join(srcDir, "img.png")
	if err := os.WriteFile(srcPath, []byte{1, 2, 3}, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a, err := registry.CopyIn(srcPath)
	if err != nil {
		t.Fatalf("CopyIn failed: %v", err)
	}

	if err := registry.Remove(a.StoragePath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(registry.Path(a.StoragePath)); !os.IsNotExist(err) {
		t.Errorf("stored file still present after Remove")
	}
}
