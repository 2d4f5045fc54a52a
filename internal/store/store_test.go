package store

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Bolt, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return s, path
}

func TestLoadWithoutToken(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	token, ok, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok || token != "" {
		t.Errorf("Load() = %q, %v; want empty, false", token, ok)
	}
}

func TestTokenSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Save("t1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	token, ok, err := reopened.Load()
	if err != nil || !ok || token != "t1" {
		t.Errorf("Load() = %q, %v, %v; want t1, true, nil", token, ok, err)
	}
}

func TestClear(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	if err := s.Save("t1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := s.Load(); ok {
		t.Errorf("token still present after Clear()")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	if err := s.Save(""); err == nil {
		t.Errorf("Save(\"\") should fail")
	}
}
