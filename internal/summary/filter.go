package summary

import (
	"time"

	"github.com/roach88/rollcall/internal/roster"
)

// EventFilter selects events for a summary. Zero-valued fields do not filter.
type EventFilter struct {
	// Type and Name match exactly (case-sensitive).
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
	// From and To bound Event.From inclusively. Events without a start time
	// are not excluded by the range.
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// IsZero reports whether the filter selects every event.
func (f EventFilter) IsZero() bool {
	return f.Type == "" && f.Name == "" && f.From.IsZero() && f.To.IsZero()
}

// Match reports whether e passes the filter.
func (f EventFilter) Match(e roster.Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Name != "" && e.Name != f.Name {
		return false
	}
	if e.From.IsZero() {
		return true
	}
	if !f.From.IsZero() && e.From.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.From.After(f.To) {
		return false
	}
	return true
}

// Select returns the IDs of the events passing the filter.
func (f EventFilter) Select(events []roster.Event) EventSet {
	set := make(EventSet)
	for _, e := range events {
		if f.Match(e) {
			set[e.ID] = struct{}{}
		}
	}
	return set
}
