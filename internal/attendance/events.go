package attendance

import (
	"context"
	"time"

	"github.com/roach88/rollcall/internal/roster"
)

// EventUpdate lists the fields to change. Nil fields are left as they are.
// The event ID cannot change: it keys a matrix column.
type EventUpdate struct {
	Name *string
	Type *string
	From *time.Time
	To   *time.Time
}

// Events returns a copy of the event table.
func (s *Store) Events() ([]roster.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	out := make([]roster.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Event returns the event with the given ID.
func (s *Store) Event(id string) (roster.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return roster.Event{}, ErrNoData
	}
	i := s.eventIndex(id)
	if i < 0 {
		return roster.Event{}, &NotFoundError{Kind: KindEvent, ID: id}
	}
	return s.events[i], nil
}

// NextEventID proposes an ID for a new event.
func (s *Store) NextEventID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", ErrNoData
	}
	ids := make([]string, len(s.events))
	for i, e := range s.events {
		ids[i] = e.ID
	}
	return roster.NewID(ids), nil
}

// AddEvent appends an event and gives it a matrix column, extending every
// existing row with an unset cell. Text fields are stored trimmed and
// NFC-normalized, times in UTC.
func (s *Store) AddEvent(ctx context.Context, e roster.Event) error {
	e = e.Normalized()
	return s.mutate(ctx, func() error {
		if e.ID == "" {
			return ErrInvalidID
		}
		if err := roster.CheckText(e.ID, e.Name, e.Type); err != nil {
			return err
		}
		if s.eventIndex(e.ID) >= 0 {
			return &DuplicateIDError{Kind: KindEvent, ID: e.ID}
		}
		s.events = append(s.events, e)
		added := s.matrix.AddColumn(e.ID)
		s.logger.Debug("event added", "id", e.ID, "column_added", added)
		return nil
	})
}

// UpdateEvent changes the fields set in upd.
func (s *Store) UpdateEvent(ctx context.Context, id string, upd EventUpdate) error {
	return s.mutate(ctx, func() error {
		i := s.eventIndex(id)
		if i < 0 {
			return &NotFoundError{Kind: KindEvent, ID: id}
		}
		e := s.events[i]
		if upd.Name != nil {
			e.Name = *upd.Name
		}
		if upd.Type != nil {
			e.Type = *upd.Type
		}
		if upd.From != nil {
			e.From = *upd.From
		}
		if upd.To != nil {
			e.To = *upd.To
		}
		e = e.Normalized()
		if err := roster.CheckText(e.Name, e.Type); err != nil {
			return err
		}
		s.events[i] = e
		s.logger.Debug("event updated", "id", e.ID)
		return nil
	})
}

// DeleteEvent removes the event and its matrix column.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.mutate(ctx, func() error {
		i := s.eventIndex(id)
		if i < 0 {
			return &NotFoundError{Kind: KindEvent, ID: id}
		}
		key := s.events[i].ID
		s.events = append(s.events[:i], s.events[i+1:]...)
		s.matrix.RemoveColumn(key)
		s.logger.Debug("event deleted", "id", key)
		return nil
	})
}

// eventIndex looks id up in its cleaned form.
func (s *Store) eventIndex(id string) int {
	id = roster.CleanText(id)
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
