package attendance

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/testutil"
	"github.com/roach88/rollcall/internal/workbook"
)

func TestStore_ExportImportRoundTrip(t *testing.T) {
	s, _ := newLoadedStore(t)
	seed(t, s)
	mark(t, s, "A1", "E1", roster.Present)
	mark(t, s, "A1", "E3", roster.Absent)
	mark(t, s, "A2", "E2", roster.Present)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))

	other := New(testutil.NewMemCache())
	report, err := other.Import(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, report.OK(), "warnings: %v", report.Warnings)

	want, err := s.Workbook()
	require.NoError(t, err)
	got, err := other.Workbook()
	require.NoError(t, err)

	assert.Equal(t, want.Attendees, got.Attendees)
	require.Len(t, got.Events, len(want.Events))
	for i := range want.Events {
		assert.Equal(t, want.Events[i].ID, got.Events[i].ID)
		assert.True(t, want.Events[i].From.Equal(got.Events[i].From))
		assert.True(t, want.Events[i].To.Equal(got.Events[i].To))
	}
	assert.Equal(t, want.Matrix.Columns(), got.Matrix.Columns())
	assert.Equal(t, want.Matrix.Rows(), got.Matrix.Rows())
}

func TestStore_ImportReconciles(t *testing.T) {
	wb := workbook.New()
	wb.Attendees = []roster.Attendee{
		{ID: "A1", FullName: "Ann"},
		{ID: "A1", FullName: "Ann again"},
		{ID: "A2", FullName: "Bob"},
	}
	wb.Events = []roster.Event{{ID: "E1"}, {ID: "E2"}}
	wb.Matrix = roster.NewMatrix("E1", "E9")
	wb.Matrix.SetRow("A1", []roster.Mark{roster.Present, roster.Absent})
	wb.Matrix.SetRow("A7", []roster.Mark{roster.Present})
	wb.Matrix.SetRow("A2", []roster.Mark{roster.Unset, roster.Present})

	var buf bytes.Buffer
	require.NoError(t, workbook.Encode(&buf, wb))

	s := New(nil)
	report, err := s.Import(context.Background(), &buf)
	require.NoError(t, err)

	attendees, _ := s.Attendees()
	require.Len(t, attendees, 2)
	assert.Equal(t, "Ann", attendees[0].FullName, "first occurrence wins")

	m, _ := s.Matrix()
	assert.Equal(t, []string{"E1", "E2"}, m.Columns(), "orphan column dropped, missing one added")
	assert.False(t, m.HasRow("A7"), "orphan row dropped")
	assert.False(t, m.HasRow("A2"), "row left without marks is pruned")
	row, _ := m.Row("A1")
	assert.Equal(t, []roster.Mark{roster.Present, roster.Unset}, row)

	// duplicate attendee, dropped column, added column, dropped row
	assert.Len(t, report.Warnings, 4)
	for _, w := range report.Warnings {
		var mwe *workbook.MalformedWorkbookError
		assert.True(t, errors.As(w, &mwe))
	}
}

func TestStore_ImportPartialWorkbook(t *testing.T) {
	wb := workbook.New()
	wb.Attendees = []roster.Attendee{{ID: "A1", FullName: "Ann"}}

	var buf bytes.Buffer
	require.NoError(t, workbook.Encode(&buf, wb))

	s := New(nil)
	_, err := s.Import(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, s.Loaded())

	events, err := s.Events()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_ImportGarbage(t *testing.T) {
	s := New(nil)
	_, err := s.Import(context.Background(), strings.NewReader("garbage"))
	require.ErrorIs(t, err, workbook.ErrInvalidFormat)
	assert.False(t, s.Loaded())
}

func TestStore_ImportPersists(t *testing.T) {
	c := testutil.NewMemCache()
	s := New(c)

	var buf bytes.Buffer
	require.NoError(t, workbook.Encode(&buf, workbook.Template(workbook.TemplateOptions{Attendees: 5, Events: 4, Seed: 7})))
	_, err := s.Import(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Puts())
	fresh := New(c)
	ok, err := fresh.Hydrate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	attendees, _ := fresh.Attendees()
	assert.Len(t, attendees, 5)
}

func TestStore_TextIsCleanedOnWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newLoadedStore(t)
	seed(t, s)

	err := s.AddAttendee(ctx, roster.Attendee{ID: "A1 ", FullName: "Another Ann"})
	require.ErrorIs(t, err, ErrDuplicateID, "trailing space does not make a new ID")

	decomposed, composed := "Ame\u0301lie", "Am\u00e9lie"
	require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: decomposed, FullName: "  " + decomposed + " Durand "}))
	a, err := s.Attendee(composed)
	require.NoError(t, err)
	assert.Equal(t, roster.Attendee{ID: composed, FullName: composed + " Durand"}, a)

	mark(t, s, decomposed, " E1", roster.Present)
	got, err := s.Mark(composed, "E1")
	require.NoError(t, err)
	assert.Equal(t, roster.Present, got)

	require.NoError(t, s.UpdateAttendee(ctx, decomposed, AttendeeUpdate{NickName: strPtr(" Ami ")}))
	a, _ = s.Attendee(composed)
	assert.Equal(t, "Ami", a.NickName)

	err = s.UpdateAttendee(ctx, "A2", AttendeeUpdate{ID: strPtr("  ")})
	assert.ErrorIs(t, err, ErrInvalidID)

	long := strings.Repeat("x", roster.MaxTextLen+1)
	err = s.AddAttendee(ctx, roster.Attendee{ID: "A9", FullName: long})
	assert.ErrorIs(t, err, roster.ErrTextTooLong)
	err = s.UpdateEvent(ctx, "E1", EventUpdate{Name: &long})
	assert.ErrorIs(t, err, roster.ErrTextTooLong)
	e, _ := s.Event("E1")
	assert.Equal(t, "Event E1", e.Name, "rejected update leaves the event alone")
	_, err = s.Attendee("A9")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteEvent(ctx, "E1 "))
	m, _ := s.Matrix()
	assert.Equal(t, []string{"E2", "E3"}, m.Columns())
	require.NoError(t, s.DeleteAttendee(ctx, decomposed))
	m, _ = s.Matrix()
	assert.False(t, m.HasRow(composed))
}

func TestStore_RoundTripEdgeCases(t *testing.T) {
	ctx := context.Background()
	paris := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name  string
		setup func(t *testing.T, s *Store)
	}{
		{
			name: "surrounding whitespace",
			setup: func(t *testing.T, s *Store) {
				require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: " A1 ", FullName: " Ann Lee ", NickName: "Ann\t"}))
				require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: "A2", FullName: "Bob"}))
				require.NoError(t, s.AddEvent(ctx, roster.Event{ID: "E1 ", Name: " Kickoff", Type: "Meeting "}))
				mark(t, s, "A1", "E1", roster.Present)
				mark(t, s, "A2 ", " E1", roster.Absent)
			},
		},
		{
			name: "decomposed unicode",
			setup: func(t *testing.T, s *Store) {
				require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: "Ame\u0301lie", FullName: "Ame\u0301lie Durand"}))
				require.NoError(t, s.AddEvent(ctx, roster.Event{ID: "Cafe\u0301", Name: "Cafe\u0301 cre\u0300me"}))
				mark(t, s, "Ame\u0301lie", "Cafe\u0301", roster.Absent)
			},
		},
		{
			name: "non-UTC and sub-minute times",
			setup: func(t *testing.T, s *Store) {
				require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: "A1"}))
				require.NoError(t, s.AddEvent(ctx, roster.Event{
					ID:   "E1",
					From: time.Date(2025, time.July, 2, 9, 0, 0, 0, paris),
					To:   time.Date(2025, time.July, 2, 10, 30, 15, 500, paris),
				}))
				mark(t, s, "A1", "E1", roster.Present)
			},
		},
		{
			name: "cell at the length limit",
			setup: func(t *testing.T, s *Store) {
				require.NoError(t, s.AddAttendee(ctx, roster.Attendee{ID: "A1", FullName: strings.Repeat("\u00e9", roster.MaxTextLen)}))
				require.NoError(t, s.AddEvent(ctx, roster.Event{ID: "E1", Type: strings.Repeat("t", roster.MaxTextLen)}))
				mark(t, s, "A1", "E1", roster.Present)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newLoadedStore(t)
			tt.setup(t, s)

			var buf bytes.Buffer
			require.NoError(t, s.Export(&buf))
			other := New(testutil.NewMemCache())
			report, err := other.Import(ctx, &buf)
			require.NoError(t, err)
			assert.True(t, report.OK(), "warnings: %v", report.Warnings)

			want, err := s.Workbook()
			require.NoError(t, err)
			got, err := other.Workbook()
			require.NoError(t, err)

			assert.Equal(t, want.Attendees, got.Attendees)
			require.Len(t, got.Events, len(want.Events))
			for i := range want.Events {
				w, g := want.Events[i], got.Events[i]
				assert.Equal(t, [3]string{w.ID, w.Name, w.Type}, [3]string{g.ID, g.Name, g.Type})
				assert.True(t, w.From.Equal(g.From), "from %v != %v", w.From, g.From)
				assert.True(t, w.To.Equal(g.To), "to %v != %v", w.To, g.To)
				assert.Equal(t, time.UTC, g.From.Location())
			}
			assert.Equal(t, want.Matrix.Columns(), got.Matrix.Columns())
			assert.Equal(t, want.Matrix.Rows(), got.Matrix.Rows())
		})
	}
}

func TestStore_LoadCleansMatrixKeys(t *testing.T) {
	wb := workbook.New()
	wb.Attendees = []roster.Attendee{{ID: "A1 "}}
	wb.Events = []roster.Event{{ID: " E1"}}
	wb.Matrix = roster.NewMatrix(" E1")
	wb.Matrix.SetRow("A1 ", []roster.Mark{roster.Absent})

	s := New(nil)
	warnings, err := s.Load(context.Background(), wb)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got, err := s.Mark("A1", "E1")
	require.NoError(t, err)
	assert.Equal(t, roster.Absent, got)
}
