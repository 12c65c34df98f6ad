package attendance

import (
	"fmt"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/workbook"
)

// reconcile copies wb into fresh tables that satisfy the store invariants:
//   - IDs and names are cleaned as by AddAttendee and AddEvent
//   - attendee and event IDs are unique (first occurrence wins)
//   - every matrix column belongs to an event, every event has a column
//   - every matrix row belongs to an attendee
//   - no row is without a Present/Absent mark
//
// Each repair is returned as a warning.
func reconcile(wb *workbook.Workbook) ([]roster.Attendee, []roster.Event, *roster.Matrix, []error) {
	var warnings []error
	warn := func(sheet, format string, args ...any) {
		warnings = append(warnings, &workbook.MalformedWorkbookError{
			Sheet:  sheet,
			Reason: fmt.Sprintf(format, args...),
		})
	}

	attendeeIDs := make(map[string]bool)
	attendees := make([]roster.Attendee, 0, len(wb.Attendees))
	for _, a := range wb.Attendees {
		a = a.Normalized()
		if attendeeIDs[a.ID] {
			warn(workbook.SheetAttendee, "duplicate attendee %q dropped", a.ID)
			continue
		}
		attendeeIDs[a.ID] = true
		attendees = append(attendees, a)
	}

	eventIDs := make(map[string]bool)
	events := make([]roster.Event, 0, len(wb.Events))
	for _, e := range wb.Events {
		e = e.Normalized()
		if eventIDs[e.ID] {
			warn(workbook.SheetEvent, "duplicate event %q dropped", e.ID)
			continue
		}
		eventIDs[e.ID] = true
		events = append(events, e)
	}

	src := wb.Matrix
	if src == nil {
		src = roster.NewMatrix()
	}

	matrix := roster.NewMatrix()
	// keep maps source column positions to event IDs; "" means dropped.
	srcCols := src.Columns()
	keep := make([]string, len(srcCols))
	for j, col := range srcCols {
		id := roster.CleanText(col)
		switch {
		case !eventIDs[id]:
			warn(workbook.SheetAttendance, "column for unknown event %q dropped", col)
		case !matrix.AddColumn(id):
			warn(workbook.SheetAttendance, "duplicate column for event %q dropped", id)
		default:
			keep[j] = id
		}
	}
	for _, e := range events {
		if matrix.AddColumn(e.ID) {
			warn(workbook.SheetAttendance, "missing column for event %q added", e.ID)
		}
	}
	for _, row := range src.Rows() {
		id := roster.CleanText(row.AttendeeID)
		if !attendeeIDs[id] {
			warn(workbook.SheetAttendance, "row for unknown attendee %q dropped", row.AttendeeID)
			continue
		}
		if matrix.HasRow(id) {
			warn(workbook.SheetAttendance, "duplicate row for attendee %q dropped", id)
			continue
		}
		marks := make([]roster.Mark, len(matrix.Columns()))
		for j, mk := range row.Marks {
			if j < len(keep) && keep[j] != "" {
				marks[matrix.ColumnIndex(keep[j])] = mk
			}
		}
		matrix.SetRow(id, marks)
	}
	matrix.Prune()

	return attendees, events, matrix, warnings
}
