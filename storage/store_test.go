package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "champions")),
		"sqlite": NewSQLiteStore(filepath.Join(dir, "champions.db")),
	}
	for kind, store := range stores {
		if err := store.Init(context.Background()); err != nil {
			t.Fatalf("init %s: %v", kind, err)
		}
		t.Cleanup(func() {
			_ = CloseIfSupported(store)
		})
	}
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for kind, store := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			if _, ok, err := store.LoadBrain(ctx, "pong"); err != nil || ok {
				t.Fatalf("load before save = %v, %v; want miss", ok, err)
			}

			first := Record{Name: "pong", Generation: 3, Rating: 7.5, SavedAt: savedAt, Data: []byte{1, 2, 3}}
			second := Record{Name: "pong", Generation: 9, Rating: 12.25, SavedAt: savedAt.Add(time.Minute), Data: []byte{4, 5, 6, 7}}
			for _, rec := range []Record{first, second} {
				if err := store.SaveBrain(ctx, rec); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			got, ok, err := store.LoadBrain(ctx, "pong")
			if err != nil || !ok {
				t.Fatalf("load = %v, %v", ok, err)
			}
			if got.Generation != 9 || got.Rating != 12.25 || !bytes.Equal(got.Data, second.Data) {
				t.Errorf("loaded %+v, want latest save", got)
			}
			if !got.SavedAt.Equal(second.SavedAt) {
				t.Errorf("saved at = %v, want %v", got.SavedAt, second.SavedAt)
			}

			history, err := store.History(ctx, "pong")
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if len(history) != 2 || history[0].Generation != 3 || history[1].Generation != 9 {
				t.Fatalf("unexpected history: %+v", history)
			}
			if history[0].Data != nil {
				t.Error("history carries brain data")
			}

			if _, ok, _ := store.LoadBrain(ctx, "breakout"); ok {
				t.Error("unexpected record for unsaved name")
			}
		})
	}
}

func TestStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	for kind, store := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			data := []byte{9, 9, 9}
			if err := store.SaveBrain(ctx, Record{Name: "pong", Data: data, SavedAt: time.Now()}); err != nil {
				t.Fatal(err)
			}
			data[0] = 0

			got, _, err := store.LoadBrain(ctx, "pong")
			if err != nil {
				t.Fatal(err)
			}
			if got.Data[0] != 9 {
				t.Error("store aliases caller's data")
			}
		})
	}
}

func TestStoreNotInitialized(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(t.TempDir()),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")),
	}
	for kind, store := range stores {
		if err := store.SaveBrain(ctx, Record{Name: "pong", Data: []byte{1}}); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: save err = %v, want ErrNotInitialized", kind, err)
		}
	}
}

func TestFileStoreRejectsPathNames(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "..", "a/b", "../escape"} {
		if err := store.SaveBrain(context.Background(), Record{Name: name, Data: []byte{1}}); err == nil {
			t.Errorf("name %q accepted", name)
		}
	}
}

func TestFileStoreDetectsTruncatedBlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveBrain(ctx, Record{Name: "pong", Data: []byte{1, 2, 3, 4}}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pong.brain"), []byte{1, 2}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.LoadBrain(ctx, "pong"); err == nil {
		t.Error("expected error for truncated brain file")
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "champions.db")

	store := NewSQLiteStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveBrain(ctx, Record{Name: "pong", Generation: 4, Rating: 2, Data: []byte{7}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Init(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	rec, ok, err := reopened.LoadBrain(ctx, "pong")
	if err != nil || !ok || rec.Generation != 4 {
		t.Fatalf("reopened load = %+v, %v, %v", rec, ok, err)
	}
}

func TestSQLiteStoreSchemaVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "champions.db")

	store := NewSQLiteStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	// Second Init on an open store is a no-op
	if err := store.Init(ctx); err != nil {
		t.Fatalf("repeat init: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != len(championMigrations) {
		t.Errorf("user_version = %d, want %d", version, len(championMigrations))
	}

	// A database from a newer build is refused rather than modified
	if _, err := db.ExecContext(ctx, `PRAGMA user_version = 99`); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if err := NewSQLiteStore(path).Init(ctx); err == nil {
		t.Error("expected error for newer schema")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewStore(t *testing.T) {
	for _, kind := range []string{"", "memory", "file", "sqlite"} {
		store, err := NewStore(kind, t.TempDir())
		if err != nil || store == nil {
			t.Errorf("NewStore(%q) = %v, %v", kind, store, err)
		}
	}
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
}
