package statefile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewRuntimeStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRuntimeStore() error = %v", err)
	}
	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("Load(empty) = ok %v err %v, want ok false err nil", ok, err)
	}
	want := RuntimeState{UpdateOffset: 812, BotID: 42, UpdatedAt: time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v err %v", ok, err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	info, err := os.Stat(filepath.Join(store.Dir(), runtimeStateFile))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != filePerm {
		t.Fatalf("file perm = %v, want %v", info.Mode().Perm(), os.FileMode(filePerm))
	}
}

func TestRuntimeStoreRejectsBadState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, _ := NewRuntimeStore(dir)
	if err := store.Save(RuntimeState{UpdateOffset: -1}); err == nil {
		t.Fatalf("Save(negative offset) error = nil")
	}
	path := filepath.Join(dir, runtimeStateFile)
	for _, raw := range []string{
		`{"update_offset":1,"extra":true}`,
		`{"update_offset":1}{}`,
		`{"update_offset":-5}`,
		`not json`,
	} {
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, _, err := store.Load(); !errors.Is(err, ErrDecodeFailed) {
			t.Fatalf("Load(%s) error = %v, want ErrDecodeFailed", raw, err)
		}
	}
}

func TestAcquireIsExclusive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locks", "serve.lck")
	first, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := Acquire(ctx, path); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("second Acquire() error = %v, want ErrLockTimeout", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	again, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandHome("~/.anonbot"); got != filepath.Join(home, ".anonbot") {
		t.Fatalf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/var/lib/anonbot"); got != "/var/lib/anonbot" {
		t.Fatalf("ExpandHome(abs) = %q", got)
	}
}
