package summary

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rollcall/internal/roster"
)

// EventRate is the attendance rate of a single event across all attendees.
type EventRate struct {
	EventID string `json:"event_id"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
	// Percent is nil when nobody has been marked for the event yet.
	Percent *int `json:"percent"`
}

// EventRates computes the rate of every matrix column, in column order.
func EventRates(m *roster.Matrix) []EventRate {
	if m == nil {
		return nil
	}
	columns := m.Columns()
	rates := make([]EventRate, len(columns))
	for i, id := range columns {
		rates[i].EventID = id
	}
	for _, row := range m.Rows() {
		for i, mk := range row.Marks {
			if !mk.IsSet() {
				continue
			}
			rates[i].Total++
			if mk == roster.Present {
				rates[i].Present++
			}
		}
	}
	for i := range rates {
		if rates[i].Total > 0 {
			p := Percent(rates[i].Present, rates[i].Total)
			rates[i].Percent = &p
		}
	}
	return rates
}

// DistinctTypes returns the non-empty event types in first-seen order.
func DistinctTypes(events []roster.Event) []string {
	return distinct(events, func(e roster.Event) string { return e.Type })
}

// DistinctNames returns the non-empty event names in first-seen order.
func DistinctNames(events []roster.Event) []string {
	return distinct(events, func(e roster.Event) string { return e.Name })
}

func distinct(events []roster.Event, field func(roster.Event) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		v := field(e)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SortByFromDesc returns a copy of events ordered by start time, most recent
// first. Events without a start time go last; ties keep table order.
func SortByFromDesc(events []roster.Event) []roster.Event {
	out := make([]roster.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].From, out[j].From
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})
	return out
}

// Search keeps the summaries whose full name or nick name contains query,
// ignoring case. Both sides are NFC-normalized first. An empty query keeps
// everything.
func Search(rows []AttendeeSummary, query string) []AttendeeSummary {
	q := fold(query)
	if q == "" {
		return rows
	}
	var out []AttendeeSummary
	for _, r := range rows {
		if strings.Contains(fold(r.FullName), q) || strings.Contains(fold(r.NickName), q) {
			out = append(out, r)
		}
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
