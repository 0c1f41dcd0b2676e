package wizard_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/objects"
	"github.com/goliatone/go-formbind/pkg/wizard"
)

func exerciseStorage(t *testing.T, store wizard.Storage) {
	t.Helper()
	ctx := context.Background()

	if state, err := store.Load(ctx, "missing"); err != nil || state != nil {
		t.Fatalf("Load(missing) = %v, %v", state, err)
	}

	saved := &wizard.State{
		Current: "billing",
		Data: map[string]map[string]any{
			"account": {"username": "ada", "plan": "pro"},
		},
	}
	if err := store.Save(ctx, "s1", saved); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	// loaded copies must not alias the stored state
	loaded.Data["account"]["plan"] = "basic"
	again, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if again.Data["account"]["plan"] != "pro" {
		t.Fatal("mutating a loaded state leaked into storage")
	}

	saved.Current = "confirm"
	if err := store.Save(ctx, "s1", saved); err != nil {
		t.Fatalf("Save() overwrite returned error: %v", err)
	}
	updated, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if updated.Current != "confirm" {
		t.Fatalf("Current = %q, want confirm", updated.Current)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if state, err := store.Load(ctx, "s1"); err != nil || state != nil {
		t.Fatalf("Load() after delete = %v, %v", state, err)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, wizard.NewMemoryStorage())
}

func TestSQLiteStorage(t *testing.T) {
	db, err := objects.Open(filepath.Join(t.TempDir(), "wizard.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := wizard.NewSQLiteStorage(context.Background(), db)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() returned error: %v", err)
	}
	exerciseStorage(t, store)
}
