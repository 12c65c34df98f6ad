package attendance

import (
	"context"

	"github.com/roach88/rollcall/internal/roster"
)

// AttendeeUpdate lists the fields to change. Nil fields are left as they are.
type AttendeeUpdate struct {
	ID       *string
	FullName *string
	NickName *string
}

// Attendees returns a copy of the attendee table.
func (s *Store) Attendees() ([]roster.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNoData
	}
	out := make([]roster.Attendee, len(s.attendees))
	copy(out, s.attendees)
	return out, nil
}

// Attendee returns the attendee with the given ID.
func (s *Store) Attendee(id string) (roster.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return roster.Attendee{}, ErrNoData
	}
	i := s.attendeeIndex(id)
	if i < 0 {
		return roster.Attendee{}, &NotFoundError{Kind: KindAttendee, ID: id}
	}
	return s.attendees[i], nil
}

// NextAttendeeID proposes an ID for a new attendee.
func (s *Store) NextAttendeeID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", ErrNoData
	}
	ids := make([]string, len(s.attendees))
	for i, a := range s.attendees {
		ids[i] = a.ID
	}
	return roster.NewID(ids), nil
}

// AddAttendee appends an attendee. IDs and names are stored trimmed and
// NFC-normalized. The matrix row is created lazily on the first mark.
func (s *Store) AddAttendee(ctx context.Context, a roster.Attendee) error {
	a = a.Normalized()
	return s.mutate(ctx, func() error {
		if a.ID == "" {
			return ErrInvalidID
		}
		if err := roster.CheckText(a.ID, a.FullName, a.NickName); err != nil {
			return err
		}
		if s.attendeeIndex(a.ID) >= 0 {
			return &DuplicateIDError{Kind: KindAttendee, ID: a.ID}
		}
		s.attendees = append(s.attendees, a)
		s.logger.Debug("attendee added", "id", a.ID)
		return nil
	})
}

// UpdateAttendee changes the fields set in upd. Changing the ID rekeys the
// attendee's matrix row in place, keeping its marks.
func (s *Store) UpdateAttendee(ctx context.Context, id string, upd AttendeeUpdate) error {
	return s.mutate(ctx, func() error {
		i := s.attendeeIndex(id)
		if i < 0 {
			return &NotFoundError{Kind: KindAttendee, ID: id}
		}
		old := s.attendees[i]
		a := old
		if upd.ID != nil {
			a.ID = *upd.ID
		}
		if upd.FullName != nil {
			a.FullName = *upd.FullName
		}
		if upd.NickName != nil {
			a.NickName = *upd.NickName
		}
		a = a.Normalized()

		if a.ID == "" {
			return ErrInvalidID
		}
		if err := roster.CheckText(a.ID, a.FullName, a.NickName); err != nil {
			return err
		}
		if a.ID != old.ID {
			if s.attendeeIndex(a.ID) >= 0 || !s.matrix.RenameRow(old.ID, a.ID) {
				return &DuplicateIDError{Kind: KindAttendee, ID: a.ID}
			}
		}
		s.attendees[i] = a
		s.logger.Debug("attendee updated", "id", old.ID, "new_id", a.ID)
		return nil
	})
}

// DeleteAttendee removes the attendee and its matrix row, if any.
func (s *Store) DeleteAttendee(ctx context.Context, id string) error {
	return s.mutate(ctx, func() error {
		i := s.attendeeIndex(id)
		if i < 0 {
			return &NotFoundError{Kind: KindAttendee, ID: id}
		}
		key := s.attendees[i].ID
		s.attendees = append(s.attendees[:i], s.attendees[i+1:]...)
		s.matrix.DeleteRow(key)
		s.logger.Debug("attendee deleted", "id", key)
		return nil
	})
}

// attendeeIndex looks id up in its cleaned form.
func (s *Store) attendeeIndex(id string) int {
	id = roster.CleanText(id)
	for i, a := range s.attendees {
		if a.ID == id {
			return i
		}
	}
	return -1
}
