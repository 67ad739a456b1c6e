package template_test

import (
	"path/filepath"
	"testing"

	"github.com/mharris/quotly/internal/storage/sqlite"
	"github.com/mharris/quotly/internal/template"
)

func setupManager(t *testing.T) *template.Manager {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "quotly.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return template.New(store)
}

func TestAddItem(t *testing.T) {
	t.Run("appends and bumps version", func(t *testing.T) {
		mgr := setupManager(t)

		tmpl, err := mgr.AddItem("Deep Work", "focus block")
		if err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		if tmpl.Version != 2 {
			t.Errorf("version after add = %d, want 2", tmpl.Version)
		}
		if len(tmpl.Items) != 4 {
			t.Fatalf("got %d items, want 4", len(tmpl.Items))
		}
		last := tmpl.Items[len(tmpl.Items)-1]
		if last.Label != "Deep Work" || last.DefaultWhy != "focus block" {
			t.Errorf("appended item = %+v", last)
		}

		// The change persisted.
		reloaded, err := mgr.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if reloaded.Version != 2 || len(reloaded.Items) != 4 {
			t.Error("AddItem did not persist")
		}
	})

	t.Run("duplicate label rejected", func(t *testing.T) {
		mgr := setupManager(t)
		if _, err := mgr.AddItem("Progress", ""); err == nil {
			t.Error("expected error adding a duplicate label")
		}
	})

	t.Run("empty label rejected", func(t *testing.T) {
		mgr := setupManager(t)
		if _, err := mgr.AddItem("", "why"); err == nil {
			t.Error("expected error adding an empty label")
		}
	})
}

func TestRemoveItem(t *testing.T) {
	mgr := setupManager(t)

	tmpl, err := mgr.RemoveItem("Maintenance")
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if tmpl.Version != 2 {
		t.Errorf("version after remove = %d, want 2", tmpl.Version)
	}
	if len(tmpl.Items) != 2 {
		t.Errorf("got %d items, want 2", len(tmpl.Items))
	}
	if tmpl.IndexOf("Maintenance") >= 0 {
		t.Error("removed item still present")
	}

	if _, err := mgr.RemoveItem("Maintenance"); err == nil {
		t.Error("expected error removing a missing label")
	}
}

func TestReorderItems(t *testing.T) {
	t.Run("complete permutation applies", func(t *testing.T) {
		mgr := setupManager(t)

		tmpl, err := mgr.ReorderItems([]string{"Maintenance", "Progress", "Care/Connection"})
		if err != nil {
			t.Fatalf("ReorderItems failed: %v", err)
		}
		if tmpl.Items[0].Label != "Maintenance" || tmpl.Items[2].Label != "Care/Connection" {
			t.Errorf("order after reorder: %s, %s, %s",
				tmpl.Items[0].Label, tmpl.Items[1].Label, tmpl.Items[2].Label)
		}
		if tmpl.Version != 2 {
			t.Errorf("version after reorder = %d, want 2", tmpl.Version)
		}
	})

	t.Run("partial or bogus orders rejected", func(t *testing.T) {
		mgr := setupManager(t)

		for _, labels := range [][]string{
			{"Progress"},
			{"Progress", "Progress", "Maintenance"},
			{"Progress", "Care/Connection", "Nonexistent"},
		} {
			if _, err := mgr.ReorderItems(labels); err == nil {
				t.Errorf("ReorderItems(%v) succeeded, want error", labels)
			}
		}

		// Failed reorders leave the template untouched.
		tmpl, err := mgr.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if tmpl.Version != 1 {
			t.Errorf("version after failed reorders = %d, want 1", tmpl.Version)
		}
	})
}

func TestEditItem(t *testing.T) {
	t.Run("rename and rewhy", func(t *testing.T) {
		mgr := setupManager(t)

		newLabel := "Forward Motion"
		newWhy := "ship something"
		tmpl, err := mgr.EditItem("Progress", &newLabel, &newWhy)
		if err != nil {
			t.Fatalf("EditItem failed: %v", err)
		}
		if tmpl.IndexOf("Forward Motion") != 0 {
			t.Error("renamed item not at original position")
		}
		if tmpl.Items[0].DefaultWhy != "ship something" {
			t.Errorf("default why = %q, want ship something", tmpl.Items[0].DefaultWhy)
		}
	})

	t.Run("nil fields left unchanged", func(t *testing.T) {
		mgr := setupManager(t)

		newWhy := "connection first"
		tmpl, err := mgr.EditItem("Care/Connection", nil, &newWhy)
		if err != nil {
			t.Fatalf("EditItem failed: %v", err)
		}
		idx := tmpl.IndexOf("Care/Connection")
		if idx < 0 {
			t.Fatal("label changed despite nil newLabel")
		}
		if tmpl.Items[idx].DefaultWhy != "connection first" {
			t.Errorf("default why = %q, want connection first", tmpl.Items[idx].DefaultWhy)
		}
	})

	t.Run("rename collision rejected", func(t *testing.T) {
		mgr := setupManager(t)

		collide := "Maintenance"
		if _, err := mgr.EditItem("Progress", &collide, nil); err == nil {
			t.Error("expected error renaming onto an existing label")
		}
	})
}
