package iox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type spyCloser struct{ closed bool }

func (s *spyCloser) Close() error { s.closed = true; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current.tmp")

	if err := RemoveStale(path); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveStale(path); err != nil {
		t.Fatalf("RemoveStale: %v", err)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
}

func TestRemoveStale_DanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link.tmp")
	if err := os.Symlink(filepath.Join(dir, "gone"), path); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := RemoveStale(path); err != nil {
		t.Fatalf("RemoveStale: %v", err)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("symlink still present: %v", err)
	}
}
