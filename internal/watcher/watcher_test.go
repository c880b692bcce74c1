package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, nil)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestForGoalsDirDebounces(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	fired := make(chan struct{}, 10)
	w, err := ForGoalsDir(dir, func() {
		calls.Add(1)
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	startWatcher(t, w)

	path := filepath.Join(dir, "1-launch.md")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	waitFor(t, fired)
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one debounced call, got %d", n)
	}
}

func TestFilterIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 10)
	w, err := ForGoalsDir(dir, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)
	startWatcher(t, w)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-fired:
		t.Fatal("unexpected notification for non-goal file")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(dir, "2-x.md"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, fired)
}

func TestForDatabase(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "goalplan.db")
	fired := make(chan struct{}, 10)
	w, err := ForDatabase(db, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)
	startWatcher(t, w)

	if err := os.WriteFile(db+"-journal", []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, fired)
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New([]string{filepath.Join(t.TempDir(), "missing")}, nil, func() {}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
