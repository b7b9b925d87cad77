package x86_64

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestResolveFilePath_NoArgs(t *testing.T) {
	_, err := resolveFilePath(nil)
	if err == nil {
		t.Fatal("expected error for missing file argument, got none")
	}
}

func TestResolveFilePath_EmptyArg(t *testing.T) {
	_, err := resolveFilePath([]string{""})
	if err == nil {
		t.Fatal("expected error for empty file argument, got none")
	}
}

func TestResolveFilePath_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	_, err := resolveFilePath([]string{"does-not-exist.bin"})
	if err == nil {
		t.Fatal("expected error for nonexistent file, got none")
	}
}

func TestResolveFilePath_Found(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	name := "image.bin"
	if err := os.WriteFile(filepath.Join(tmpDir, name), []byte{0x90}, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := resolveFilePath([]string{name})
	if err != nil {
		t.Fatalf("resolveFilePath: %v", err)
	}
	want := filepath.Join(tmpDir, name)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveBaseAddress_Default(t *testing.T) {
	base, err := resolveBaseAddress([]string{"file.bin"})
	if err != nil {
		t.Fatalf("resolveBaseAddress: %v", err)
	}
	if base != 0 {
		t.Errorf("got base %d, want 0", base)
	}
}

func TestResolveBaseAddress_Hex(t *testing.T) {
	base, err := resolveBaseAddress([]string{"file.bin", "0x400000"})
	if err != nil {
		t.Fatalf("resolveBaseAddress: %v", err)
	}
	if base != 0x400000 {
		t.Errorf("got base 0x%x, want 0x400000", base)
	}
}

func TestResolveBaseAddress_Decimal(t *testing.T) {
	base, err := resolveBaseAddress([]string{"file.bin", "4194304"})
	if err != nil {
		t.Fatalf("resolveBaseAddress: %v", err)
	}
	if base != 4194304 {
		t.Errorf("got base %d, want 4194304", base)
	}
}

func TestResolveBaseAddress_Invalid(t *testing.T) {
	_, err := resolveBaseAddress([]string{"file.bin", "not-a-number"})
	if err == nil {
		t.Fatal("expected error for invalid base address, got none")
	}
}

func TestMapFileReadOnly_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := mapFileReadOnly(path)
	if err == nil {
		t.Fatal("expected error mapping an empty file, got none")
	}
}

func TestMapFileReadOnly_ReadsContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "image.bin")
	want := []byte{0x90, 0xC3}
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mem, err := mapFileReadOnly(path)
	if err != nil {
		t.Fatalf("mapFileReadOnly: %v", err)
	}
	defer unmapOrFail(t, mem)

	if len(mem) != len(want) || mem[0] != want[0] || mem[1] != want[1] {
		t.Errorf("got %v, want %v", mem, want)
	}
}

func unmapOrFail(t *testing.T, mem []byte) {
	t.Helper()
	if err := unix.Munmap(mem); err != nil {
		t.Fatalf("munmap: %v", err)
	}
}

// chdir switches the process to dir for the duration of the test and
// restores the original working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
