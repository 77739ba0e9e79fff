package testsupport

import (
	"testing"

	"civicintel/internal/config"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

// MustOpenStore opens the meetings store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *meetings.Store {
	t.Helper()

	store, err := meetings.Open(cfg.Paths.StorePath, logging.NewNop())
	if err != nil {
		t.Fatalf("meetings.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord inserts a record into the store, failing the test on error.
func SeedRecord(t testing.TB, store *meetings.Store, rec meetings.Record) {
	t.Helper()

	if err := store.Upsert(rec); err != nil {
		t.Fatalf("store.Upsert(%s): %v", rec.ID, err)
	}
}
