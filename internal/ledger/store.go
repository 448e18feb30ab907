package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/cleared-dev/gastos/internal/id"
	"github.com/cleared-dev/gastos/internal/logger"
	"github.com/cleared-dev/gastos/internal/model"
	"github.com/cleared-dev/gastos/internal/slot"
)

// DefaultKey is the slot key holding the serialized record set.
const DefaultKey = "boat-expenses-v1"

// maxIDAttempts bounds retries when a generator keeps returning taken ids.
const maxIDAttempts = 16

var (
	// ErrIDExhausted is returned when the generator keeps producing taken ids.
	ErrIDExhausted = errors.New("could not generate a unique id")
	// ErrImportCancelled wraps the context error of an import that gave up
	// waiting for the one in flight.
	ErrImportCancelled = errors.New("import cancelled while waiting for another import")
)

// Options configures a Store. Zero values pick the defaults.
type Options struct {
	Key    string
	IDs    id.Generator
	Now    func() time.Time
	Logger *zerolog.Logger
}

// Store holds the full expense record set, most recent first, and mirrors
// every mutation to a durable slot. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	slot     slot.Slot
	key      string
	ids      id.Generator
	now      func() time.Time
	log      zerolog.Logger
	records  []model.Expense
	degraded bool

	imports *semaphore.Weighted
}

// New creates an empty Store. Call Load to restore persisted records.
func New(s slot.Slot, opts Options) *Store {
	st := &Store{
		slot:    s,
		key:     opts.Key,
		ids:     opts.IDs,
		now:     opts.Now,
		log:     logger.Nop(),
		imports: semaphore.NewWeighted(1),
	}
	if st.key == "" {
		st.key = DefaultKey
	}
	if st.ids == nil {
		st.ids = id.UUID{}
	}
	if st.now == nil {
		st.now = time.Now
	}
	if opts.Logger != nil {
		st.log = logger.Component(*opts.Logger, "ledger")
	}
	return st
}

// Load restores the record set from the slot. Missing or unreadable content
// is replaced by the seed records; seeded reports whether that happened.
func (s *Store) Load(ctx context.Context) (seeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, slot.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", s.key).Msg("persisted ledger unreadable, using seed data")
		}
		s.records = Seed(s.now(), s.ids)
		s.save(ctx)
		return true
	}

	s.records = records
	if s.repairIDs() {
		s.save(ctx)
	}
	s.log.Debug().Int("records", len(records)).Msg("ledger loaded")
	return false
}

func (s *Store) read(ctx context.Context) ([]model.Expense, error) {
	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var records []model.Expense
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}
	if records == nil {
		return nil, errors.New("decoding ledger: not an array")
	}
	return records, nil
}

// repairIDs gives fresh ids to persisted records with an empty or repeated id.
func (s *Store) repairIDs() bool {
	seen := make(map[string]bool, len(s.records))
	changed := false
	for i := range s.records {
		e := &s.records[i]
		if e.ID == "" || seen[e.ID] {
			old := e.ID
			e.ID = s.uniqueID(seen)
			s.log.Warn().Str("old_id", old).Str("new_id", e.ID).Msg("repaired persisted record id")
			changed = true
		}
		seen[e.ID] = true
	}
	return changed
}

// save overwrites the slot with the current records. Failures are logged and
// leave the store running in memory only.
func (s *Store) save(ctx context.Context) {
	data, err := json.Marshal(s.records)
	if err == nil {
		err = s.slot.Put(ctx, s.key, data)
	}
	if err != nil {
		if !s.degraded {
			s.log.Error().Err(err).Str("key", s.key).Msg("persisting ledger failed, continuing in memory")
		}
		s.degraded = true
		return
	}
	s.degraded = false
}

// Degraded reports whether the last write to the slot failed.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Add validates candidate, assigns it a fresh id, prepends it and persists.
func (s *Store) Add(ctx context.Context, candidate model.Expense) (model.Expense, error) {
	if err := candidate.Validate(); err != nil {
		return model.Expense{}, err
	}
	if candidate.Category == "" {
		candidate.Category = model.DefaultCategory()
	}
	if candidate.JobType == "" {
		candidate.JobType = model.DefaultJobType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate.ID = s.uniqueID(s.idSet())
	if candidate.ID == "" {
		return model.Expense{}, ErrIDExhausted
	}
	s.records = append([]model.Expense{candidate}, s.records...)
	s.save(ctx)

	s.log.Info().Str("id", candidate.ID).Str("category", string(candidate.Category)).
		Str("amount", candidate.Amount.String()).Msg("expense added")
	return candidate, nil
}

// Remove deletes the record with the given id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, recordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.records {
		if e.ID != recordID {
			continue
		}
		s.records = append(s.records[:i:i], s.records[i+1:]...)
		s.save(ctx)
		s.log.Info().Str("id", recordID).Msg("expense removed")
		return true
	}
	return false
}

// Regeneration records an imported id replaced because it was empty or taken.
type Regeneration struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MergeResult describes the outcome of Merge.
type MergeResult struct {
	Added       int
	Regenerated []Regeneration
}

// Merge prepends imported records, keeping their order. Records whose id is
// empty or already present get a fresh id; existing records are never replaced.
func (s *Store) Merge(ctx context.Context, imported []model.Expense) (MergeResult, error) {
	if len(imported) == 0 {
		return MergeResult{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := s.idSet()
	incoming := make([]model.Expense, len(imported))
	var res MergeResult
	for i, e := range imported {
		if e.ID == "" || seen[e.ID] {
			fresh := s.uniqueID(seen)
			if fresh == "" {
				return MergeResult{}, ErrIDExhausted
			}
			if e.ID != "" {
				res.Regenerated = append(res.Regenerated, Regeneration{From: e.ID, To: fresh})
				s.log.Warn().Str("id", e.ID).Str("new_id", fresh).Msg("imported id collides, regenerated")
			}
			e.ID = fresh
		}
		seen[e.ID] = true
		incoming[i] = e
	}

	s.records = append(incoming, s.records...)
	s.save(ctx)
	res.Added = len(incoming)

	s.log.Info().Int("added", res.Added).Int("regenerated", len(res.Regenerated)).Msg("records merged")
	return res, nil
}

// Import runs parse and merges its records. Imports are serialized: a second
// caller waits until the first finishes or ctx is done.
func (s *Store) Import(ctx context.Context, parse func(ctx context.Context) ([]model.Expense, error)) (MergeResult, error) {
	if err := s.imports.Acquire(ctx, 1); err != nil {
		return MergeResult{}, fmt.Errorf("%w: %w", ErrImportCancelled, err)
	}
	defer s.imports.Release(1)

	records, err := parse(ctx)
	if err != nil {
		return MergeResult{}, fmt.Errorf("parsing import: %w", err)
	}
	return s.Merge(ctx, records)
}

// All returns a copy of every record, most recent first.
func (s *Store) All() []model.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Expense(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(recordID string) (model.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.records {
		if e.ID == recordID {
			return e, true
		}
	}
	return model.Expense{}, false
}

// View is a filtered record set with its aggregation.
type View struct {
	Filter  Filter
	Records []model.Expense
	Summary Summary
}

// View filters the current records and summarizes the result.
func (s *Store) View(f Filter) View {
	records := Apply(s.All(), f)
	return View{Filter: f, Records: records, Summary: Summarize(records)}
}

func (s *Store) idSet() map[string]bool {
	seen := make(map[string]bool, len(s.records))
	for _, e := range s.records {
		seen[e.ID] = true
	}
	return seen
}

// uniqueID returns an id not in taken, or "" after maxIDAttempts.
func (s *Store) uniqueID(taken map[string]bool) string {
	for n := 0; n < maxIDAttempts; n++ {
		if candidate := s.ids.NewID(); candidate != "" && !taken[candidate] {
			return candidate
		}
	}
	return ""
}
