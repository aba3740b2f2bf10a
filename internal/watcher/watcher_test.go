package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE users (id INT)"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)

	changes := make(chan []byte, 4)
	w.OnChange(func(content []byte) { changes <- content })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	want := "CREATE TABLE users (id INT, email TEXT)"
	if err := os.WriteFile(path, []byte(want), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if string(got) != want {
			t.Errorf("content = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	if string(w.Content()) != want {
		t.Errorf("Content() = %q", w.Content())
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(path, []byte("openapi: 3.0.0"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(10 * time.Millisecond)

	changes := make(chan []byte, 1)
	w.OnChange(func(content []byte) { changes <- content })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		t.Errorf("unexpected change: %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.proto")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE users (id INT)"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
