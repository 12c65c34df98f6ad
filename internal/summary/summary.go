// Package summary derives attendance statistics from the attendance tables.
//
// Every function here is pure: it reads snapshots and never mutates them, so
// a summary can be recomputed at any time from the Attendee table, the
// attendance Matrix and an optional event filter.
package summary

import (
	"math"
	"strconv"

	"github.com/roach88/rollcall/internal/roster"
)

// EventSet is a set of event IDs. A nil EventSet passed to Compute means
// "all events".
type EventSet map[string]struct{}

// NewEventSet builds a set from ids.
func NewEventSet(ids ...string) EventSet {
	s := make(EventSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s EventSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// AttendeeSummary is the attendance record of one attendee.
type AttendeeSummary struct {
	AttendeeID string `json:"attendee_id"`
	FullName   string `json:"full_name"`
	NickName   string `json:"nick_name,omitempty"`
	// Total counts the selected events for which the attendee has a mark.
	Total int `json:"total"`
	// Present counts the Present marks among them.
	Present int `json:"present"`
	// Percent is Present/Total rounded to a whole percent, 0 when Total is 0.
	Percent int `json:"percent"`
}

// PercentLabel renders Percent for display, "-" when nothing was marked.
func (s AttendeeSummary) PercentLabel() string {
	if s.Total == 0 {
		return "-"
	}
	return strconv.Itoa(s.Percent) + "%"
}

// Compute returns one summary per attendee, in attendee table order.
//
// Only columns whose event is in filter are considered (all columns when
// filter is nil), and among those only cells holding a Present or Absent
// mark count toward Total. Unmarked cells are ignored.
func Compute(attendees []roster.Attendee, m *roster.Matrix, filter EventSet) []AttendeeSummary {
	var columns []string
	if m != nil {
		columns = m.Columns()
	}
	selected := make([]bool, len(columns))
	for i, id := range columns {
		selected[i] = filter == nil || filter.Contains(id)
	}

	out := make([]AttendeeSummary, 0, len(attendees))
	for _, a := range attendees {
		s := AttendeeSummary{AttendeeID: a.ID, FullName: a.FullName, NickName: a.NickName}
		if m != nil {
			if marks, ok := m.Row(a.ID); ok {
				for i, mk := range marks {
					if !selected[i] || !mk.IsSet() {
						continue
					}
					s.Total++
					if mk == roster.Present {
						s.Present++
					}
				}
			}
		}
		s.Percent = Percent(s.Present, s.Total)
		out = append(out, s)
	}
	return out
}

// Percent returns present/total as a whole percent rounded half away from
// zero, or 0 when total is 0.
func Percent(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) * 100 / float64(total)))
}
