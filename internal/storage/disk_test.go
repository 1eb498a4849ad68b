package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiskUsageBytes_SingleFile(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "vectors.bin")
	writeFile(t, snapshot, 1024)

	n, err := DiskUsageBytes(snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1024 {
		t.Errorf("DiskUsageBytes = %d, want 1024", n)
	}
}

func TestDiskUsageBytes_DirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), 100)
	writeFile(t, filepath.Join(dir, "models", "b.onnx"), 200)

	n, err := DiskUsageBytes(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 300 {
		t.Errorf("DiskUsageBytes = %d, want 300", n)
	}
}

func TestDiskUsageBytes_SkipsMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "vectors.bin")
	writeFile(t, snapshot, 50)

	n, err := DiskUsageBytes("", filepath.Join(dir, "missing.bin"), snapshot)
	if err != nil {
		t.Fatal(err)
	}
	if n != 50 {
		t.Errorf("DiskUsageBytes = %d, want 50", n)
	}
}
