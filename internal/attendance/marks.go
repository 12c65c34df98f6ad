package attendance

import (
	"context"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/summary"
)

// errSkip aborts a mutation without error and without persisting.
type errSkip struct{}

func (errSkip) Error() string { return "skip" }

// MarkAttendance records mark for (attendeeID, eventID). The attendee's
// matrix row is created on first use. Marking Unset clears the cell.
//
// An event without a matrix column is ignored: applied is false and err is
// nil. An unknown attendee is a *NotFoundError.
func (s *Store) MarkAttendance(ctx context.Context, attendeeID, eventID string, mark roster.Mark) (applied bool, err error) {
	attendeeID, eventID = roster.CleanText(attendeeID), roster.CleanText(eventID)
	err = s.mutate(ctx, func() error {
		if s.attendeeIndex(attendeeID) < 0 {
			return &NotFoundError{Kind: KindAttendee, ID: attendeeID}
		}
		if !s.matrix.Set(attendeeID, eventID, mark) {
			s.logger.Debug("mark ignored, no such event column", "attendee", attendeeID, "event", eventID)
			return errSkip{}
		}
		s.logger.Debug("attendance marked", "attendee", attendeeID, "event", eventID, "mark", mark.String())
		return nil
	})
	if _, skipped := err.(errSkip); skipped {
		return false, nil
	}
	return err == nil || IsCacheWriteError(err), err
}

// Mark returns the mark of one cell.
func (s *Store) Mark(attendeeID, eventID string) (roster.Mark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return roster.Unset, ErrNoData
	}
	return s.matrix.Get(roster.CleanText(attendeeID), roster.CleanText(eventID)), nil
}

// Matrix returns a copy of the attendance matrix.
func (s *Store) Matrix() (*roster.Matrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	return s.matrix.Clone(), nil
}

// Summary computes per-attendee attendance over the events in ids, or over
// all events when ids is nil.
func (s *Store) Summary(ids summary.EventSet) ([]summary.AttendeeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	return summary.Compute(s.attendees, s.matrix, ids), nil
}

// FilteredSummary computes per-attendee attendance over the events passing f.
func (s *Store) FilteredSummary(f summary.EventFilter) ([]summary.AttendeeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	var ids summary.EventSet
	if !f.IsZero() {
		ids = f.Select(s.events)
	}
	return summary.Compute(s.attendees, s.matrix, ids), nil
}

// EventRates computes the attendance rate of every event.
func (s *Store) EventRates() ([]summary.EventRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	return summary.EventRates(s.matrix), nil
}
