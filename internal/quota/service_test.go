package quota_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/quota"
	"github.com/mharris/quotly/internal/storage"
	"github.com/mharris/quotly/internal/storage/sqlite"
	"github.com/mharris/quotly/internal/template"
)

func setupService(t *testing.T) (*quota.Service, *template.Manager) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "quotly.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return quota.New(store), template.New(store)
}

func TestEnsureDay(t *testing.T) {
	t.Run("creates from current template", func(t *testing.T) {
		svc, _ := setupService(t)

		day, err := svc.EnsureDay("2026-08-26")
		if err != nil {
			t.Fatalf("EnsureDay failed: %v", err)
		}
		if day.Status != models.DayStatusOpen {
			t.Errorf("new day status = %s, want open", day.Status)
		}
		if day.TemplateVersion != 1 {
			t.Errorf("new day template version = %d, want 1", day.TemplateVersion)
		}
		if len(day.Items) != 3 {
			t.Fatalf("new day has %d items, want 3 from the default template", len(day.Items))
		}
		if day.Items[0].Label != "Progress" {
			t.Errorf("first item = %s, want Progress", day.Items[0].Label)
		}
		if day.Items[0].Why == "" {
			t.Error("item why not seeded from the template default")
		}
	})

	t.Run("existing day returned unchanged", func(t *testing.T) {
		svc, _ := setupService(t)

		first, err := svc.EnsureDay("2026-08-26")
		if err != nil {
			t.Fatalf("EnsureDay failed: %v", err)
		}
		second, err := svc.EnsureDay("2026-08-26")
		if err != nil {
			t.Fatalf("second EnsureDay failed: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("second EnsureDay created a new day: %s != %s", second.ID, first.ID)
		}
	})

	t.Run("invalid date rejected", func(t *testing.T) {
		svc, _ := setupService(t)

		for _, date := range []string{"08/26/2026", "2026-13-01", "tomorrow", ""} {
			if _, err := svc.EnsureDay(date); err == nil {
				t.Errorf("EnsureDay(%q) succeeded, want error", date)
			}
		}
	})
}

func TestSnapshotIsolation(t *testing.T) {
	svc, mgr := setupService(t)

	before, err := svc.EnsureDay("2026-08-25")
	if err != nil {
		t.Fatalf("EnsureDay failed: %v", err)
	}

	if _, err := mgr.AddItem("Deep Work", "focus block"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	after, err := svc.EnsureDay("2026-08-26")
	if err != nil {
		t.Fatalf("EnsureDay after template edit failed: %v", err)
	}
	if len(after.Items) != 4 {
		t.Errorf("day created after edit has %d items, want 4", len(after.Items))
	}
	if after.TemplateVersion != 2 {
		t.Errorf("day created after edit has template version %d, want 2", after.TemplateVersion)
	}

	// The earlier day keeps its snapshot.
	reloaded, err := svc.GetDay("2026-08-25")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if len(reloaded.Items) != len(before.Items) {
		t.Errorf("template edit leaked into an existing day: %d items, want %d",
			len(reloaded.Items), len(before.Items))
	}
	if reloaded.TemplateVersion != before.TemplateVersion {
		t.Errorf("existing day's template version changed: %d, want %d",
			reloaded.TemplateVersion, before.TemplateVersion)
	}
}

func TestToggleItem(t *testing.T) {
	t.Run("evidence round trip", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")

		item, err := svc.ToggleItem(day.ID, day.Items[0].ID, "  finished chapter draft  ", "writing habit")
		if err != nil {
			t.Fatalf("ToggleItem failed: %v", err)
		}
		if !item.Completed {
			t.Error("item not completed")
		}
		if item.Evidence != "finished chapter draft" {
			t.Errorf("evidence = %q, want trimmed submitted text", item.Evidence)
		}
		if item.Why != "writing habit" {
			t.Errorf("why = %q, want writing habit", item.Why)
		}
		if item.CompletedAt == nil {
			t.Error("completed_at not recorded")
		}
	})

	t.Run("empty evidence rejected", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")

		for _, evidence := range []string{"", "   ", "\t\n"} {
			_, err := svc.ToggleItem(day.ID, day.Items[0].ID, evidence, "")
			if !errors.Is(err, quota.ErrEmptyEvidence) {
				t.Errorf("ToggleItem(%q) error = %v, want ErrEmptyEvidence", evidence, err)
			}
		}

		// The failed attempts left no partial state behind.
		reloaded, _ := svc.GetDay("2026-08-26")
		if reloaded.Items[0].Completed {
			t.Error("item completed despite rejected evidence")
		}
	})

	t.Run("uncheck clears completion", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")

		if _, err := svc.ToggleItem(day.ID, day.Items[0].ID, "done", ""); err != nil {
			t.Fatalf("ToggleItem failed: %v", err)
		}
		item, err := svc.UncheckItem(day.ID, day.Items[0].ID)
		if err != nil {
			t.Fatalf("UncheckItem failed: %v", err)
		}
		if item.Completed || item.Evidence != "" || item.CompletedAt != nil {
			t.Error("uncheck left completion state behind")
		}
	})
}

func TestCloseDay(t *testing.T) {
	t.Run("closed day rejects edits", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")

		if _, err := svc.CloseDay("2026-08-26"); err != nil {
			t.Fatalf("CloseDay failed: %v", err)
		}

		_, err := svc.ToggleItem(day.ID, day.Items[0].ID, "too late", "")
		if !errors.Is(err, storage.ErrDayClosed) {
			t.Errorf("ToggleItem on closed day error = %v, want ErrDayClosed", err)
		}
		_, err = svc.UncheckItem(day.ID, day.Items[0].ID)
		if !errors.Is(err, storage.ErrDayClosed) {
			t.Errorf("UncheckItem on closed day error = %v, want ErrDayClosed", err)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.EnsureDay("2026-08-26")

		first, err := svc.CloseDay("2026-08-26")
		if err != nil {
			t.Fatalf("CloseDay failed: %v", err)
		}
		second, err := svc.CloseDay("2026-08-26")
		if err != nil {
			t.Fatalf("second CloseDay failed: %v", err)
		}
		if !second.Closed() {
			t.Error("day not closed after second CloseDay")
		}
		if !second.ClosedAt.Equal(*first.ClosedAt) {
			t.Error("second CloseDay moved closed_at")
		}
	})

	t.Run("close preserves completed evidence", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")

		if _, err := svc.ToggleItem(day.ID, day.Items[1].ID, "called mom", ""); err != nil {
			t.Fatalf("ToggleItem failed: %v", err)
		}
		closed, err := svc.CloseDay("2026-08-26")
		if err != nil {
			t.Fatalf("CloseDay failed: %v", err)
		}

		item := closed.Item(day.Items[1].ID)
		if item == nil || !item.Completed || item.Evidence != "called mom" {
			t.Error("closing the day disturbed a completed item")
		}
	})

	t.Run("close of missing day fails", func(t *testing.T) {
		svc, _ := setupService(t)
		if _, err := svc.CloseDay("2026-01-01"); !errors.Is(err, storage.ErrDayNotFound) {
			t.Errorf("CloseDay on missing date error = %v, want ErrDayNotFound", err)
		}
	})
}

func TestReopenDay(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.EnsureDay("2026-08-26")
		svc.CloseDay("2026-08-26")

		_, err := svc.ReopenDay("2026-08-26", false)
		if !errors.Is(err, quota.ErrConfirmationRequired) {
			t.Errorf("unconfirmed ReopenDay error = %v, want ErrConfirmationRequired", err)
		}

		day, err := svc.GetDay("2026-08-26")
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		if !day.Closed() {
			t.Error("unconfirmed reopen changed the day status")
		}
	})

	t.Run("confirmed reopen restores editability", func(t *testing.T) {
		svc, _ := setupService(t)
		day, _ := svc.EnsureDay("2026-08-26")
		svc.CloseDay("2026-08-26")

		reopened, err := svc.ReopenDay("2026-08-26", true)
		if err != nil {
			t.Fatalf("ReopenDay failed: %v", err)
		}
		if reopened.Closed() || reopened.ClosedAt != nil {
			t.Error("day still closed after confirmed reopen")
		}

		if _, err := svc.ToggleItem(day.ID, day.Items[0].ID, "second wind", ""); err != nil {
			t.Errorf("ToggleItem after reopen failed: %v", err)
		}
	})

	t.Run("reopen of open day is a no-op", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.EnsureDay("2026-08-26")

		day, err := svc.ReopenDay("2026-08-26", false)
		if err != nil {
			t.Fatalf("ReopenDay on open day failed: %v", err)
		}
		if day.Closed() {
			t.Error("open day reported closed")
		}
	})
}

func TestListDays(t *testing.T) {
	svc, _ := setupService(t)

	for _, date := range []string{"2026-08-01", "2026-08-15", "2026-08-31"} {
		day, err := svc.EnsureDay(date)
		if err != nil {
			t.Fatalf("EnsureDay(%s) failed: %v", date, err)
		}
		if _, err := svc.ToggleItem(day.ID, day.Items[0].ID, "evidence for "+date, ""); err != nil {
			t.Fatalf("ToggleItem failed: %v", err)
		}
	}
	svc.CloseDay("2026-08-01")

	summaries, err := svc.ListDays("2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}
	if summaries[0].Status != models.DayStatusClosed {
		t.Errorf("first summary status = %s, want closed", summaries[0].Status)
	}
	for _, s := range summaries {
		if s.DoneCount != 1 || s.ItemCount != 3 {
			t.Errorf("summary %s counts = %d/%d, want 1/3", s.Date, s.DoneCount, s.ItemCount)
		}
	}
}

// TestDailyWorkflow walks one day end to end: create, complete with
// evidence, close, fail a late edit, reopen, edit again, close again.
func TestDailyWorkflow(t *testing.T) {
	svc, _ := setupService(t)

	day, err := svc.EnsureDay("2026-08-26")
	if err != nil {
		t.Fatalf("EnsureDay failed: %v", err)
	}

	for i, item := range day.Items {
		if i == 2 {
			break // leave one incomplete
		}
		if _, err := svc.ToggleItem(day.ID, item.ID, "did "+item.Label, ""); err != nil {
			t.Fatalf("ToggleItem(%s) failed: %v", item.Label, err)
		}
	}

	closed, err := svc.CloseDay("2026-08-26")
	if err != nil {
		t.Fatalf("CloseDay failed: %v", err)
	}
	if !closed.Closed() {
		t.Fatal("day not closed")
	}

	if _, err := svc.ToggleItem(day.ID, day.Items[2].ID, "sneaky", ""); !errors.Is(err, storage.ErrDayClosed) {
		t.Fatalf("late edit error = %v, want ErrDayClosed", err)
	}

	if _, err := svc.ReopenDay("2026-08-26", true); err != nil {
		t.Fatalf("ReopenDay failed: %v", err)
	}
	if _, err := svc.ToggleItem(day.ID, day.Items[2].ID, "finished after all", ""); err != nil {
		t.Fatalf("ToggleItem after reopen failed: %v", err)
	}

	final, err := svc.CloseDay("2026-08-26")
	if err != nil {
		t.Fatalf("final CloseDay failed: %v", err)
	}
	done := 0
	for _, item := range final.Items {
		if item.Completed {
			done++
		}
	}
	if done != 3 {
		t.Errorf("final day has %d completed items, want 3", done)
	}
}
