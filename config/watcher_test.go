package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherFiltersAndReports(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "mixes.yml"), "mixes: []\n")

	select {
	case name := <-w.Events:
		if filepath.Base(name) != "mixes.yml" {
			t.Fatalf("unexpected event for %s", name)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the yaml event")
	}
}

func TestWatcherReportsBurstOnceAfterQuiet(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "mixes.yaml")
	for i := range 5 {
		writeFile(t, path, strings.Repeat("#", i+1)+"\nmixes: []\n")
		time.Sleep(10 * time.Millisecond)
	}
	lastWrite := time.Now()

	select {
	case name := <-w.Events:
		if filepath.Base(name) != "mixes.yaml" {
			t.Fatalf("unexpected event for %s", name)
		}
		if quiet := time.Since(lastWrite); quiet < debounce-10*time.Millisecond {
			t.Fatalf("event reported %v after the last write, want at least %v", quiet, debounce)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the yaml event")
	}

	select {
	case name := <-w.Events:
		t.Fatalf("burst must be reported once, got a second event for %s", name)
	case <-time.After(3 * debounce):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatal("Events must be closed")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixes.yaml")
	writeFile(t, path, "mixes: []\n")

	m, clips := foxModel()
	table := animator.NewMixTable()

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Reload(ctx, w, path, table, ClipLookup(m), nil)
	}()

	waitFor := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %s", what)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}

	writeFile(t, path, "mixes:\n  - {from: walk, to: run, duration: 0.3}\n")
	waitFor("walk→run to load", func() bool {
		_, ok := table.Mixing(clips["walk"], clips["run"])
		return ok
	})

	// A broken edit keeps the previous table.
	time.Sleep(2 * debounce)
	writeFile(t, path, "mixes:\n  - {from: walk, to: swim, duration: 1}\n")
	time.Sleep(4 * debounce)
	if d, ok := table.Mixing(clips["walk"], clips["run"]); !ok || d != 0.3 {
		t.Fatalf("broken reload must keep walk→run, got %v, %v", d, ok)
	}

	time.Sleep(2 * debounce)
	writeFile(t, path, "mixes:\n  - {from: run, to: idle, duration: 0.5}\n")
	waitFor("run→idle to replace walk→run", func() bool {
		_, gone := table.Mixing(clips["walk"], clips["run"])
		_, ok := table.Mixing(clips["run"], clips["idle"])
		return ok && !gone
	})

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Reload did not stop after cancel")
	}
}
