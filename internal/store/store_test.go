package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	if v, _ := s.Get(KeyAccessToken); v != "" {
		t.Fatalf("missing key should read empty, got %q", v)
	}
	if err := s.Set(KeyAccessToken, "tok"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(KeyAccessToken); v != "tok" {
		t.Fatalf("got %q", v)
	}
	if err := s.Delete(KeyAccessToken); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(KeyAccessToken); v != "" {
		t.Fatalf("deleted key should read empty, got %q", v)
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)
	if err := s.Set(KeyUser, `{"id":"u1"}`); err != nil {
		t.Fatal(err)
	}

	// A second store over the same file sees the value.
	again := NewFileStore(path)
	if v, _ := again.Get(KeyUser); v != `{"id":"u1"}` {
		t.Fatalf("got %q", v)
	}
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if v, err := s.Get(KeyAccessToken); err != nil || v != "" {
		t.Fatalf("corrupt file should read as empty store, got %q err %v", v, err)
	}
	if err := s.Set(KeyAccessToken, "tok"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(KeyAccessToken); v != "tok" {
		t.Fatalf("got %q", v)
	}
}
