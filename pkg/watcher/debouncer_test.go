package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return ChangeEvent{}
}

func TestDebouncerFoldsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan ChangeEvent, 10)
	d := NewDebouncer(in, 50*time.Millisecond, time.Second)
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeRemove, Path: "a.toml", Count: 1}
	in <- ChangeEvent{Type: ChangeTypeWrite, Path: "a.toml", Count: 1}
	in <- ChangeEvent{Type: ChangeTypeWrite, Path: "a.toml", Count: 1}

	ev := receive(t, d.Output())
	if ev.Count != 3 {
		t.Errorf("count = %d, want 3", ev.Count)
	}
	if ev.Type != ChangeTypeWrite {
		t.Errorf("type = %s, want write", ev.Type)
	}

	select {
	case ev := <-d.Output():
		t.Errorf("unexpected extra event %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 200*time.Millisecond, 100*time.Millisecond)
	d.Start(ctx)

	in <- ChangeEvent{Type: ChangeTypeWrite, Path: "a.toml", Count: 1}

	start := time.Now()
	receive(t, d.Output())
	if elapsed := time.Since(start); elapsed > 190*time.Millisecond {
		t.Errorf("flush took %v, max wait not honoured", elapsed)
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeTypeWrite, Path: "a.toml", Count: 1}
	close(in)

	if ev := receive(t, d.Output()); ev.Path != "a.toml" {
		t.Errorf("path = %q", ev.Path)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("output not closed")
	}
}

func TestFileWatcherSeesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.toml")
	if err := os.WriteFile(path, []byte("name = \"a\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(path)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Writes to siblings are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name = \"b\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := receive(t, fw.Events())
	if ev.Path != fw.Path() || ev.Type != ChangeTypeWrite {
		t.Errorf("event = %+v", ev)
	}

	cancel()
	for range fw.Events() {
	}
}
