package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer d.Close()

	var n int
	if err := d.QueryRow("SELECT COUNT(*) FROM request_log").Scan(&n); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty request_log, got %d rows", n)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "askhub.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path: got %q, want %q", d.Path(), path)
	}
}
