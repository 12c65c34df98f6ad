package workbook

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/rollcall/internal/roster"
)

func at(day, hour int) time.Time {
	return time.Date(2025, time.July, day, hour, 0, 0, 0, time.UTC)
}

func sampleWorkbook() *Workbook {
	wb := New()
	wb.Attendees = []roster.Attendee{
		{ID: "A001", FullName: "John Smith", NickName: "John"},
		{ID: "A002", FullName: "Jane Johnson"},
		{ID: "A003", FullName: "Michael Williams", NickName: "Mike"},
	}
	wb.Events = []roster.Event{
		{ID: "E001", Name: "Seminar 1", Type: "Seminar", From: at(2, 9), To: at(2, 10)},
		{ID: "E002", Name: "Workshop 2", Type: "Workshop", From: at(3, 9), To: at(3, 10)},
	}
	wb.Matrix = roster.NewMatrix("E001", "E002")
	wb.Matrix.SetRow("A001", []roster.Mark{roster.Present, roster.Absent})
	wb.Matrix.SetRow("A003", []roster.Mark{roster.Unset, roster.Present})
	return wb
}

// saveSheets writes raw grids into an xlsx buffer for decode tests.
func saveSheets(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, grid := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, writeGrid(f, name, grid))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	original := sampleWorkbook()

	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, report, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, report.OK(), "warnings: %v", report.Warnings)

	assert.Equal(t, original.Attendees, decoded.Attendees)
	require.Len(t, decoded.Events, 2)
	for i := range original.Events {
		assert.Equal(t, original.Events[i].ID, decoded.Events[i].ID)
		assert.Equal(t, original.Events[i].Name, decoded.Events[i].Name)
		assert.Equal(t, original.Events[i].Type, decoded.Events[i].Type)
		assert.True(t, original.Events[i].From.Equal(decoded.Events[i].From))
		assert.True(t, original.Events[i].To.Equal(decoded.Events[i].To))
	}
	assert.Equal(t, original.Matrix.Columns(), decoded.Matrix.Columns())
	assert.Equal(t, original.Matrix.Rows(), decoded.Matrix.Rows())
}

func TestRoundTrip_TextIsCleaned(t *testing.T) {
	tests := []struct {
		name string
		in   roster.Attendee
	}{
		{"already clean", roster.Attendee{ID: "A1", FullName: "Ann Lee", NickName: "Ann"}},
		{"surrounding whitespace", roster.Attendee{ID: " A1 ", FullName: "Ann Lee\t", NickName: " Ann"}},
		{"decomposed unicode", roster.Attendee{ID: "Ame\u0301lie", FullName: "Ame\u0301lie Durand"}},
		{"cell at the length limit", roster.Attendee{ID: "A1", FullName: strings.Repeat("x", roster.MaxTextLen)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := New()
			wb.Attendees = []roster.Attendee{tt.in}

			data, err := Marshal(wb)
			require.NoError(t, err)
			decoded, _, err := Unmarshal(data)
			require.NoError(t, err)

			require.Len(t, decoded.Attendees, 1)
			assert.Equal(t, tt.in.Normalized(), decoded.Attendees[0])
		})
	}
}

func TestRoundTrip_ZonedTimes(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	from := time.Date(2025, time.July, 2, 11, 0, 0, 0, zone)

	wb := New()
	wb.Events = []roster.Event{{ID: "E1", From: from, To: from.Add(90*time.Minute + 15*time.Second)}}
	data, err := Marshal(wb)
	require.NoError(t, err)
	decoded, _, err := Unmarshal(data)
	require.NoError(t, err)

	require.Len(t, decoded.Events, 1)
	assert.True(t, from.Equal(decoded.Events[0].From))
	assert.True(t, wb.Events[0].To.Equal(decoded.Events[0].To))
	assert.Equal(t, wb.Events[0].Normalized(), decoded.Events[0].Normalized())
}

func TestEncode_SheetLayout(t *testing.T) {
	data, err := Marshal(sampleWorkbook())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAttendee, SheetEvent, SheetAttendance}, f.GetSheetList())

	rows, err := f.GetRows(SheetAttendee)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Full Name", "Nick Name"}, rows[0])

	rows, err = f.GetRows(SheetEvent)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Event Name", "Event Type", "Datetime From", "Datetime To"}, rows[0])
	assert.Equal(t, []string{"E001", "Seminar 1", "Seminar", "2025-07-02T09:00", "2025-07-02T10:00"}, rows[1])

	rows, err = f.GetRows(SheetAttendance)
	require.NoError(t, err)
	assert.Equal(t, []string{"Attendee ID", "E001", "E002"}, rows[0])
	assert.Equal(t, []string{"A001", "Present", "Absent"}, rows[1])
	assert.Equal(t, "A003", rows[2][0])
	assert.Equal(t, "Present", rows[2][2])
}

func TestEncode_PrunesEmptyRows(t *testing.T) {
	wb := sampleWorkbook()
	wb.Matrix.SetRow("A002", []roster.Mark{roster.Unset, roster.Unset})

	data, err := Marshal(wb)
	require.NoError(t, err)

	decoded, _, err := Unmarshal(data)
	require.NoError(t, err)
	assert.False(t, decoded.Matrix.HasRow("A002"))
	assert.True(t, wb.Matrix.HasRow("A002"), "encode must not modify its input")
}

func TestDecode_MissingSheets(t *testing.T) {
	data := saveSheets(t, map[string][][]string{
		SheetAttendee: {{"ID", "Full Name", "Nick Name"}, {"A1", "Ann Lee", "Ann"}},
	})

	wb, report, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, wb.Attendees, 1)
	assert.Empty(t, wb.Events)
	assert.Empty(t, wb.Matrix.Columns())
	assert.Equal(t, 0, wb.Matrix.Len())
}

func TestDecode_LegacyTokensAndShortRows(t *testing.T) {
	data := saveSheets(t, map[string][][]string{
		SheetAttendance: {
			{"Attendee ID", "E1", "E2", "E3"},
			{"A1", "Yes", "否"},
			{"A2", "", "", "no"},
		},
	})

	wb, report, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, report.OK())

	assert.Equal(t, roster.Present, wb.Matrix.Get("A1", "E1"))
	assert.Equal(t, roster.Absent, wb.Matrix.Get("A1", "E2"))
	assert.Equal(t, roster.Unset, wb.Matrix.Get("A1", "E3"))
	assert.Equal(t, roster.Absent, wb.Matrix.Get("A2", "E3"))
}

func TestDecode_MalformedDegrades(t *testing.T) {
	data := saveSheets(t, map[string][][]string{
		SheetEvent: {
			{"ID", "Event Name", "Event Type", "Datetime From", "Datetime To"},
			{"E1", "Kickoff", "Meeting", "not a date", "2025-07-01T10:00"},
		},
		SheetAttendance: {
			{"Who", "E1"},
			{"A1", "Present"},
		},
	})

	wb, report, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, wb.Events, 1)
	assert.True(t, wb.Events[0].From.IsZero())
	assert.Equal(t, at(1, 10), wb.Events[0].To)
	assert.Empty(t, wb.Matrix.Columns())

	require.Len(t, report.Warnings, 2)
	var mwe *MalformedWorkbookError
	require.True(t, errors.As(report.Warnings[0], &mwe))
	assert.Equal(t, SheetEvent, mwe.Sheet)
	assert.Equal(t, 2, mwe.Row)
}

func TestDecode_DuplicatesKeepFirst(t *testing.T) {
	data := saveSheets(t, map[string][][]string{
		SheetAttendance: {
			{"Attendee ID", "E1", "E1", "E2"},
			{"A1", "Present", "Absent", "Absent"},
			{"A1", "Absent", "", ""},
			{"A2", "maybe", "", "Present"},
		},
	})

	wb, report, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"E1", "E2"}, wb.Matrix.Columns())
	assert.Equal(t, 2, wb.Matrix.Len())
	assert.Equal(t, roster.Present, wb.Matrix.Get("A1", "E1"))
	assert.Equal(t, roster.Absent, wb.Matrix.Get("A1", "E2"))
	assert.Equal(t, roster.Unset, wb.Matrix.Get("A2", "E1"))
	assert.Equal(t, roster.Present, wb.Matrix.Get("A2", "E2"))
	assert.Len(t, report.Warnings, 3)
}

func TestDecode_NotAWorkbook(t *testing.T) {
	_, _, err := Unmarshal([]byte("definitely not a zip file"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTimeFormat(t *testing.T) {
	assert.Equal(t, "", FormatTime(time.Time{}))
	assert.Equal(t, "2025-07-02T09:00", FormatTime(at(2, 9)))

	withSeconds := time.Date(2025, 7, 2, 9, 0, 30, 0, time.UTC)
	assert.Equal(t, "2025-07-02T09:00:30Z", FormatTime(withSeconds))

	for _, s := range []string{"2025-07-02T09:00", "2025-07-02 09:00:00", "2025-07-02T09:00:00Z"} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.True(t, at(2, 9).Equal(got), s)
	}

	day, err := ParseTime("2025-07-02")
	require.NoError(t, err)
	assert.Equal(t, at(2, 0), day)

	zero, err := ParseTime("  ")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseTime("tomorrow")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	end, err := EndOfDay("2025-07-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 31, 23, 59, 59, 999999999, time.UTC), end)

	exact, err := EndOfDay("2025-07-31T12:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 31, 12, 0, 0, 0, time.UTC), exact)

	zero, err := EndOfDay("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = EndOfDay("end of july")
	assert.Error(t, err)
}

func TestTemplate(t *testing.T) {
	wb := Template(TemplateOptions{Attendees: 10, Events: 8, Month: at(1, 0), Seed: 42})

	require.Len(t, wb.Attendees, 10)
	require.Len(t, wb.Events, 8)
	assert.Equal(t, "A001", wb.Attendees[0].ID)
	assert.Equal(t, "John Smith", wb.Attendees[0].FullName)
	assert.Equal(t, "E008", wb.Events[7].ID)
	assert.Equal(t, "Seminar", wb.Events[0].Type)
	assert.Equal(t, "Workshop", wb.Events[1].Type)
	assert.Equal(t, 10, wb.Matrix.Len())

	full, _ := wb.Matrix.Row("A001")
	for _, mk := range full {
		assert.Equal(t, roster.Present, mk)
	}
	none, _ := wb.Matrix.Row("A002")
	for _, mk := range none {
		assert.Equal(t, roster.Absent, mk)
	}

	again := Template(TemplateOptions{Attendees: 10, Events: 8, Month: at(1, 0), Seed: 42})
	assert.Equal(t, wb.Matrix.Rows(), again.Matrix.Rows(), "same seed, same workbook")
}
