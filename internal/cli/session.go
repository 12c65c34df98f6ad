package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/cache"
)

// SelectedEventKey is the cache slot remembering the event "mark" defaults to.
const SelectedEventKey = "tickAttendanceSelectedEventId"

// session is one command's view of the cache and the store hydrated from it.
type session struct {
	cache *cache.Cache
	store *attendance.Store
	// hydrated is false when the cache held no workbook.
	hydrated bool
}

// openSession opens the cache file and hydrates a store from it.
// Failures to open or read the cache are command errors.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	slog.Debug("opening cache", "path", opts.Database)
	c, err := cache.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache", err)
	}

	var storeOpts []attendance.StoreOption
	storeOpts = append(storeOpts, attendance.WithLogger(slog.Default()))
	if opts.CacheKey != "" {
		storeOpts = append(storeOpts, attendance.WithCacheKey(opts.CacheKey))
	}
	st := attendance.New(c, storeOpts...)

	ok, err := st.Hydrate(ctx)
	if err != nil {
		c.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read cache", err)
	}
	return &session{cache: c, store: st, hydrated: ok}, nil
}

// close releases the cache file. Mutations are already written through.
func (s *session) close() {
	if err := s.cache.Close(); err != nil {
		slog.Error("error closing cache", "error", err)
	}
}

// selectedEvent returns the remembered event ID, or "" when none is set.
func (s *session) selectedEvent(ctx context.Context) (string, error) {
	id, _, err := s.cache.Get(ctx, SelectedEventKey)
	return id, err
}

// selectEvent remembers id. An empty id clears the selection.
func (s *session) selectEvent(ctx context.Context, id string) error {
	if id == "" {
		return s.cache.Delete(ctx, SelectedEventKey)
	}
	return s.cache.Put(ctx, SelectedEventKey, id)
}

// withSession runs fn against an open session and reports its error.
func withSession(ctx context.Context, opts *RootOptions, f *OutputFormatter, fn func(*session) error) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = f.Error(ErrCodeGeneric, exitErr.Error(), nil)
			exitErr.Reported = true
		}
		return err
	}
	defer s.close()

	if err := fn(s); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return f.Fail(err)
	}
	return nil
}
