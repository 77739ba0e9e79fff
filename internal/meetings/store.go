package meetings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"civicintel/internal/fileutil"
	"civicintel/internal/logging"
)

// Store is a JSON-file-backed database of meeting records keyed by ID.
//
// Every Upsert rewrites the whole document atomically (temp file + rename).
// That makes each write O(total records) of I/O, which is acceptable for
// the single-digit-thousands record counts this system sees; revisit the
// format before relying on it for more.
type Store struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.RWMutex
	records map[string]Record
}

// Open loads the store at path, creating parent directories as needed. A
// corrupt store file is not fatal: the store logs a warning and starts
// empty, because losing the discovery index is preferable to blocking all
// ingestion. A sibling lock file serializes writers across processes.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "store")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}

	s := &Store{
		path:    path,
		logger:  logger,
		lock:    lock,
		records: make(map[string]Record),
	}
	if err := s.load(); err != nil {
		logger.Warn("corrupt meetings store, starting fresh",
			logging.String(logging.FieldEventType, "store_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "previously discovered records will be re-discovered"))
		s.records = make(map[string]Record)
	}
	return s, nil
}

// Close releases the cross-process lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Get returns the record with the given ID, if present.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Upsert writes or overwrites the record under its ID and persists the
// entire store. Calling it twice with the same ID leaves one entry, with
// the second call's values winning.
func (s *Store) Upsert(rec Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return errors.New("record id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	if err := s.save(); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	s.logger.Debug("record saved",
		logging.String(logging.FieldMeetingID, rec.ID),
		logging.String(logging.FieldJurisdiction, rec.Jurisdiction),
		logging.Bool("processed", rec.Processed))
	return nil
}

// ListByJurisdiction returns all records for a jurisdiction, sorted by
// date descending then ID for deterministic output.
func (s *Store) ListByJurisdiction(jurisdiction string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records {
		if strings.EqualFold(rec.Jurisdiction, jurisdiction) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out
}

// ListUnprocessed returns all records not yet in the terminal processed state.
func (s *Store) ListUnprocessed() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records {
		if !rec.Processed {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out
}

// All returns every record in the store.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sortRecords(out)
	return out
}

// Count returns the number of records in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ID < records[j].ID
	})
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse store file: %w", err)
	}

	s.records = make(map[string]Record, len(raw))
	for id, rec := range raw {
		if strings.TrimSpace(id) == "" {
			continue
		}
		rec.ID = id
		s.records[id] = rec
	}

	s.logger.Debug("loaded meetings store",
		logging.Int("record_count", len(s.records)),
		logging.String("path", s.path))
	return nil
}

// save writes the store to disk atomically. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	return fileutil.WriteFileAtomic(s.path, data, 0o644)
}
