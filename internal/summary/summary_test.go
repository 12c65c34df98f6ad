package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/roster"
)

func day(d int) time.Time {
	return time.Date(2025, time.July, d, 9, 0, 0, 0, time.UTC)
}

func fixture() ([]roster.Attendee, []roster.Event, *roster.Matrix) {
	attendees := []roster.Attendee{
		{ID: "A1", FullName: "Ann Lee", NickName: "Annie"},
		{ID: "A2", FullName: "Bob Stone"},
		{ID: "A3", FullName: "Chloé Martin", NickName: "Clo"},
	}
	events := []roster.Event{
		{ID: "E1", Name: "Kickoff", Type: "Meeting", From: day(1)},
		{ID: "E2", Name: "Go basics", Type: "Workshop", From: day(8)},
		{ID: "E3", Name: "Retro", Type: "Meeting", From: day(15)},
		{ID: "E4", Name: "Unscheduled", Type: "Workshop"},
	}
	m := roster.NewMatrix("E1", "E2", "E3", "E4")
	m.SetRow("A1", []roster.Mark{roster.Present, roster.Absent, roster.Present, roster.Unset})
	m.SetRow("A2", []roster.Mark{roster.Unset, roster.Present, roster.Unset, roster.Unset})
	return attendees, events, m
}

func byID(rows []AttendeeSummary) map[string]AttendeeSummary {
	out := make(map[string]AttendeeSummary, len(rows))
	for _, r := range rows {
		out[r.AttendeeID] = r
	}
	return out
}

func TestCompute_AllEvents(t *testing.T) {
	attendees, _, m := fixture()

	rows := Compute(attendees, m, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "A1", rows[0].AttendeeID, "attendee table order")

	got := byID(rows)
	assert.Equal(t, 3, got["A1"].Total)
	assert.Equal(t, 2, got["A1"].Present)
	assert.Equal(t, 67, got["A1"].Percent)
	assert.Equal(t, "67%", got["A1"].PercentLabel())

	assert.Equal(t, 1, got["A2"].Total, "unmarked cells do not count")
	assert.Equal(t, 100, got["A2"].Percent)

	assert.Equal(t, 0, got["A3"].Total, "no row at all")
	assert.Equal(t, 0, got["A3"].Percent)
	assert.Equal(t, "-", got["A3"].PercentLabel())
}

func TestCompute_FilteredSet(t *testing.T) {
	attendees, _, m := fixture()

	got := byID(Compute(attendees, m, NewEventSet("E1", "E3")))
	assert.Equal(t, 2, got["A1"].Total)
	assert.Equal(t, 2, got["A1"].Present)
	assert.Equal(t, 100, got["A1"].Percent)
	assert.Equal(t, 0, got["A2"].Total)

	empty := byID(Compute(attendees, m, NewEventSet()))
	assert.Equal(t, 0, empty["A1"].Total, "an empty set selects nothing")
}

func TestCompute_NilMatrix(t *testing.T) {
	attendees, _, _ := fixture()
	rows := Compute(attendees, nil, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Total)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 13, Percent(1, 8), "12.5 rounds up")
	assert.Equal(t, 100, Percent(4, 4))
}

func TestEventFilter(t *testing.T) {
	_, events, _ := fixture()

	tests := []struct {
		name   string
		filter EventFilter
		want   EventSet
	}{
		{"zero", EventFilter{}, NewEventSet("E1", "E2", "E3", "E4")},
		{"type", EventFilter{Type: "Meeting"}, NewEventSet("E1", "E3")},
		{"type is case-sensitive", EventFilter{Type: "meeting"}, NewEventSet()},
		{"name", EventFilter{Name: "Retro"}, NewEventSet("E3")},
		{"range inclusive", EventFilter{From: day(8), To: day(15)}, NewEventSet("E2", "E3", "E4")},
		{"open end", EventFilter{From: day(9)}, NewEventSet("E3", "E4")},
		{"type and range", EventFilter{Type: "Workshop", To: day(7)}, NewEventSet("E4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Select(events))
		})
	}

	assert.True(t, EventFilter{}.IsZero())
	assert.False(t, EventFilter{Name: "x"}.IsZero())
}

func TestEventRates(t *testing.T) {
	_, _, m := fixture()

	rates := EventRates(m)
	require.Len(t, rates, 4)

	assert.Equal(t, "E1", rates[0].EventID)
	assert.Equal(t, 1, rates[0].Total)
	require.NotNil(t, rates[0].Percent)
	assert.Equal(t, 100, *rates[0].Percent)

	assert.Equal(t, 2, rates[1].Total)
	assert.Equal(t, 1, rates[1].Present)
	assert.Equal(t, 50, *rates[1].Percent)

	assert.Nil(t, rates[3].Percent, "nobody marked")
	assert.Nil(t, EventRates(nil))
}

func TestDistinct(t *testing.T) {
	_, events, _ := fixture()
	events = append(events, roster.Event{ID: "E5", Name: "Kickoff", Type: " "})

	assert.Equal(t, []string{"Meeting", "Workshop"}, DistinctTypes(events))
	assert.Equal(t, []string{"Kickoff", "Go basics", "Retro", "Unscheduled"}, DistinctNames(events))
}

func TestSortByFromDesc(t *testing.T) {
	_, events, _ := fixture()

	sorted := SortByFromDesc(events)
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"E3", "E2", "E1", "E4"}, ids)
	assert.Equal(t, "E1", events[0].ID, "input untouched")
}

func TestSearch(t *testing.T) {
	attendees, _, m := fixture()
	rows := Compute(attendees, m, nil)

	assert.Len(t, Search(rows, ""), 3)
	assert.Len(t, Search(rows, "ANN"), 1)
	assert.Len(t, Search(rows, "clo"), 1, "matches nick name")

	// "é" typed as e + combining acute accent.
	decomposed := Search(rows, "CHLOE\u0301")
	require.Len(t, decomposed, 1)
	assert.Equal(t, "A3", decomposed[0].AttendeeID)

	assert.Empty(t, Search(rows, "zzz"))
}
