package attendance

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/workbook"
)

// DefaultCacheKey is the slot the workbook is cached under.
const DefaultCacheKey = "attendanceWorkbook"

// Cache is the durable key-value slot the store writes through to.
// Implemented by cache.Cache (SQLite) and by in-memory fakes in tests.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
}

// Store is the aggregate root owning the attendee table, the event table and
// the attendance matrix.
//
// Lifecycle: New returns an uninitialized store; Reset, Import or Hydrate
// load it; Close flushes it to the cache. Until loaded, every operation
// returns ErrNoData.
//
// Every successful mutation re-encodes the workbook and writes it to the
// cache before returning. If that write fails the mutation still stands and
// a *CacheWriteError is returned.
//
// Getters return copies; callers never hold live references to the tables.
type Store struct {
	mu     sync.Mutex
	cache  Cache
	key    string
	logger *slog.Logger

	loaded    bool
	attendees []roster.Attendee
	events    []roster.Event
	matrix    *roster.Matrix
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// WithCacheKey overrides DefaultCacheKey.
func WithCacheKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// New creates an uninitialized store. cache may be nil for a memory-only store.
func New(cache Cache, opts ...StoreOption) *Store {
	s := &Store{
		cache:  cache,
		key:    DefaultCacheKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loaded reports whether the store holds data.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Reset replaces the contents with empty tables and persists them.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(workbook.New())
	return s.persistLocked(ctx)
}

// Load replaces the contents with wb, repairing referential integrity.
// The returned warnings describe every repair. The new contents are persisted.
func (s *Store) Load(ctx context.Context, wb *workbook.Workbook) ([]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings := s.loadLocked(wb)
	return warnings, s.persistLocked(ctx)
}

// Import decodes an xlsx workbook from r and loads it. Decode warnings and
// repair warnings are both collected in the returned report.
func (s *Store) Import(ctx context.Context, r io.Reader) (*workbook.DecodeReport, error) {
	wb, report, err := workbook.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	repairs, err := s.Load(ctx, wb)
	report.Warnings = append(report.Warnings, repairs...)
	for _, w := range report.Warnings {
		s.logger.Warn("import warning", "warning", w)
	}
	s.logger.Info("workbook imported",
		"attendees", len(wb.Attendees),
		"events", len(wb.Events),
		"warnings", len(report.Warnings))
	return report, err
}

// Hydrate loads the store from the cache. It reports false, leaving the
// store uninitialized, when the cache slot is empty.
func (s *Store) Hydrate(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	value, ok, err := s.cache.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("hydrate: %w", err)
	}
	if !ok || value == "" {
		s.logger.Debug("cache empty", "key", s.key)
		return false, nil
	}

	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return false, fmt.Errorf("hydrate: decode base64: %w", err)
	}
	wb, report, err := workbook.Unmarshal(data)
	if err != nil {
		return false, fmt.Errorf("hydrate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	repairs := s.loadLocked(wb)
	for _, w := range append(report.Warnings, repairs...) {
		s.logger.Warn("hydrate warning", "warning", w)
	}
	s.logger.Debug("store hydrated", "key", s.key, "attendees", len(s.attendees), "events", len(s.events))
	return true, nil
}

// Export writes the store as an xlsx workbook.
func (s *Store) Export(w io.Writer) error {
	wb, err := s.Workbook()
	if err != nil {
		return err
	}
	return workbook.Encode(w, wb)
}

// Workbook returns a snapshot of all three tables.
func (s *Store) Workbook() (*workbook.Workbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	return s.snapshotLocked(), nil
}

// Flush writes the current contents to the cache.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.persistLocked(ctx)
}

// Close flushes the store. The store stays usable afterwards.
func (s *Store) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// mutate runs fn under the lock on a loaded store and persists on success.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNoData
	}
	if err := fn(); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

func (s *Store) snapshotLocked() *workbook.Workbook {
	wb := &workbook.Workbook{
		Attendees: make([]roster.Attendee, len(s.attendees)),
		Events:    make([]roster.Event, len(s.events)),
		Matrix:    s.matrix.Clone(),
	}
	copy(wb.Attendees, s.attendees)
	copy(wb.Events, s.events)
	return wb
}

func (s *Store) loadLocked(wb *workbook.Workbook) []error {
	attendees, events, matrix, warnings := reconcile(wb)
	s.attendees = attendees
	s.events = events
	s.matrix = matrix
	s.loaded = true
	return warnings
}

// persistLocked writes the encoded workbook to the cache as base64.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	data, err := workbook.Marshal(s.snapshotLocked())
	if err != nil {
		s.logger.Error("encode workbook for cache", "error", err)
		return &CacheWriteError{Key: s.key, Err: err}
	}
	if err := s.cache.Put(ctx, s.key, base64.StdEncoding.EncodeToString(data)); err != nil {
		s.logger.Error("cache write failed, in-memory state kept", "key", s.key, "error", err)
		return &CacheWriteError{Key: s.key, Err: err}
	}
	s.logger.Debug("cache written", "key", s.key, "bytes", len(data))
	return nil
}
