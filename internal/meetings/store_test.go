package meetings_test

import (
	"os"
	"path/filepath"
	"testing"

	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

func openTestStore(t *testing.T, dir string) *meetings.Store {
	t.Helper()
	store, err := meetings.Open(filepath.Join(dir, "meetings.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestStoreUpsertIsIdempotent(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	rec := meetings.Record{
		ID:           "abc123",
		Jurisdiction: "Denver",
		Title:        "City Council Meeting",
		Date:         "2024-03-03",
		Source:       meetings.SourceChannel,
	}
	if err := store.Upsert(rec); err != nil {
		t.Fatalf("first Upsert returned error: %v", err)
	}

	rec.Title = "City Council Meeting (updated)"
	rec.Processed = true
	if err := store.Upsert(rec); err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}

	if got := store.Count(); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
	stored, ok := store.Get("abc123")
	if !ok {
		t.Fatal("Get returned no record for abc123")
	}
	if stored.Title != "City Council Meeting (updated)" {
		t.Errorf("Title = %q, want updated value", stored.Title)
	}
	if !stored.Processed {
		t.Error("Processed = false, want true after second upsert")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meetings.json")

	store, err := meetings.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Upsert(meetings.Record{ID: "granicus_42", Jurisdiction: "Aurora", Date: "2024-01-15"}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := meetings.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	rec, ok := reopened.Get("granicus_42")
	if !ok {
		t.Fatal("record missing after reopen")
	}
	if rec.Jurisdiction != "Aurora" {
		t.Errorf("Jurisdiction = %q, want Aurora", rec.Jurisdiction)
	}
}

func TestStoreCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meetings.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := meetings.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open returned error for corrupt file: %v", err)
	}
	defer store.Close()

	if got := store.Count(); got != 0 {
		t.Fatalf("Count = %d, want 0 after corrupt load", got)
	}
	if err := store.Upsert(meetings.Record{ID: "fresh", Jurisdiction: "Boulder"}); err != nil {
		t.Fatalf("Upsert after corrupt load returned error: %v", err)
	}
}

func TestStoreListFilters(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	seed := []meetings.Record{
		{ID: "a", Jurisdiction: "Denver", Date: "2024-03-01", Processed: true, AnalysisPath: "/x"},
		{ID: "b", Jurisdiction: "Denver", Date: "2024-04-01"},
		{ID: "c", Jurisdiction: "Aurora", Date: "2024-02-01"},
	}
	for _, rec := range seed {
		if err := store.Upsert(rec); err != nil {
			t.Fatalf("Upsert(%s) returned error: %v", rec.ID, err)
		}
	}

	denver := store.ListByJurisdiction("denver")
	if len(denver) != 2 {
		t.Fatalf("ListByJurisdiction(denver) = %d records, want 2", len(denver))
	}
	if denver[0].ID != "b" {
		t.Errorf("expected newest-first ordering, got %s first", denver[0].ID)
	}

	unprocessed := store.ListUnprocessed()
	if len(unprocessed) != 2 {
		t.Fatalf("ListUnprocessed = %d records, want 2", len(unprocessed))
	}
	for _, rec := range unprocessed {
		if rec.Processed {
			t.Errorf("unprocessed list contains processed record %s", rec.ID)
		}
	}

	if got := len(store.All()); got != 3 {
		t.Fatalf("All = %d records, want 3", got)
	}
}

func TestStoreRejectsEmptyID(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	if err := store.Upsert(meetings.Record{Jurisdiction: "Denver"}); err == nil {
		t.Fatal("Upsert with empty ID succeeded, want error")
	}
}
