package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// openTestStore opens a fresh database file in a temp dir.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "teleflow.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDraftNoteEmptyByDefault(t *testing.T) {
	store := openTestStore(t)

	got, err := store.DraftNote(context.Background())
	if err != nil {
		t.Fatalf("DraftNote: %v", err)
	}
	if got != "" {
		t.Errorf("DraftNote = %q, want empty", got)
	}
}

func TestDraftNoteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, note := range []string{"draft text", "Khách hàng quan tâm gói Pro", "line 1\nline 2"} {
		if err := store.SaveDraftNote(ctx, note); err != nil {
			t.Fatalf("SaveDraftNote(%q): %v", note, err)
		}
		got, err := store.DraftNote(ctx)
		if err != nil {
			t.Fatalf("DraftNote: %v", err)
		}
		if got != note {
			t.Errorf("DraftNote = %q, want %q", got, note)
		}
	}
}

func TestClearDraftNote(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveDraftNote(ctx, "something"); err != nil {
		t.Fatalf("SaveDraftNote: %v", err)
	}
	if err := store.ClearDraftNote(ctx); err != nil {
		t.Fatalf("ClearDraftNote: %v", err)
	}
	got, err := store.DraftNote(ctx)
	if err != nil {
		t.Fatalf("DraftNote: %v", err)
	}
	if got != "" {
		t.Errorf("DraftNote after clear = %q, want empty", got)
	}

	// Clearing an absent draft is fine.
	if err := store.ClearDraftNote(ctx); err != nil {
		t.Fatalf("second ClearDraftNote: %v", err)
	}
}

func TestDraftNoteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "teleflow.sqlite")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveDraftNote(ctx, "persisted"); err != nil {
		t.Fatalf("SaveDraftNote: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.DraftNote(ctx)
	if err != nil {
		t.Fatalf("DraftNote: %v", err)
	}
	if got != "persisted" {
		t.Errorf("DraftNote = %q, want %q", got, "persisted")
	}
}

func TestArchiveCallAppends(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	first, err := store.ArchiveCall(ctx, CallRecord{Notes: "first", CompletedStages: []string{"intro"}, Duration: 42})
	if err != nil {
		t.Fatalf("ArchiveCall: %v", err)
	}
	second, err := store.ArchiveCall(ctx, CallRecord{Notes: "second"})
	if err != nil {
		t.Fatalf("ArchiveCall: %v", err)
	}

	if first.ID != fixed.UnixMilli() {
		t.Errorf("first.ID = %d, want %d", first.ID, fixed.UnixMilli())
	}
	// Same clock reading must still yield a distinct, larger id.
	if second.ID != first.ID+1 {
		t.Errorf("second.ID = %d, want %d", second.ID, first.ID+1)
	}
	if !first.Date.Equal(fixed) {
		t.Errorf("first.Date = %v, want %v", first.Date, fixed)
	}

	history, err := store.CallHistory(ctx, 0)
	if err != nil {
		t.Fatalf("CallHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d records, want 2", len(history))
	}
	if history[0].Notes != "second" || history[1].Notes != "first" {
		t.Errorf("history order = %q, %q; want newest first", history[0].Notes, history[1].Notes)
	}
	if history[1].Duration != 42 {
		t.Errorf("Duration = %d, want 42", history[1].Duration)
	}
	if len(history[1].CompletedStages) != 1 || history[1].CompletedStages[0] != "intro" {
		t.Errorf("CompletedStages = %v, want [intro]", history[1].CompletedStages)
	}
	if !history[1].Date.Equal(fixed) {
		t.Errorf("stored Date = %v, want %v", history[1].Date, fixed)
	}
}

func TestArchiveCallSnapshotIsolation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stages := []string{"intro", "kyc"}
	rec, err := store.ArchiveCall(ctx, CallRecord{Notes: "n", CompletedStages: stages})
	if err != nil {
		t.Fatalf("ArchiveCall: %v", err)
	}

	stages[0] = "mutated"

	if rec.CompletedStages[0] != "intro" {
		t.Errorf("returned record changed with caller slice: %v", rec.CompletedStages)
	}
	stored, err := store.CallRecordByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("CallRecordByID: %v", err)
	}
	if len(stored.CompletedStages) != 2 || stored.CompletedStages[0] != "intro" {
		t.Errorf("stored CompletedStages = %v, want [intro kyc]", stored.CompletedStages)
	}
}

func TestCallHistoryLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.ArchiveCall(ctx, CallRecord{Notes: fmt.Sprintf("call %d", i)}); err != nil {
			t.Fatalf("ArchiveCall %d: %v", i, err)
		}
	}

	history, err := store.CallHistory(ctx, 3)
	if err != nil {
		t.Fatalf("CallHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d records, want 3", len(history))
	}
	if history[0].Notes != "call 4" {
		t.Errorf("newest = %q, want %q", history[0].Notes, "call 4")
	}
}

func TestCallRecordByIDNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.CallRecordByID(context.Background(), 12345)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestConcurrentArchiveProducesUniqueIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := store.ArchiveCall(ctx, CallRecord{Notes: fmt.Sprintf("c%d", i)})
			if err != nil {
				t.Errorf("ArchiveCall: %v", err)
				return
			}
			ids <- rec.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d unique ids, want %d", len(seen), n)
	}
}

func TestClosedStoreReportsStorageUnavailable(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "teleflow.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.Close()
	ctx := context.Background()

	checks := map[string]error{
		"save":  store.SaveDraftNote(ctx, "x"),
		"clear": store.ClearDraftNote(ctx),
	}
	_, checks["read"] = store.DraftNote(ctx)
	_, checks["archive"] = store.ArchiveCall(ctx, CallRecord{Notes: "x"})
	_, checks["history"] = store.CallHistory(ctx, 0)

	for op, err := range checks {
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("%s: err = %v, want ErrStorageUnavailable", op, err)
		}
		var se *StorageError
		if !errors.As(err, &se) {
			t.Errorf("%s: err %T is not a *StorageError", op, err)
		}
	}
}

func TestOpenInMemory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveDraftNote(ctx, "mem"); err != nil {
		t.Fatalf("SaveDraftNote: %v", err)
	}
	got, err := store.DraftNote(ctx)
	if err != nil {
		t.Fatalf("DraftNote: %v", err)
	}
	if got != "mem" {
		t.Errorf("DraftNote = %q, want mem", got)
	}
}
