package workbook

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/rollcall/internal/roster"
)

// Sheet names.
const (
	SheetAttendee   = "attendee"
	SheetEvent      = "event"
	SheetAttendance = "attendance"
)

// Header labels. The column order is the contract with spreadsheet users.
var (
	AttendeeHeader = []string{"ID", "Full Name", "Nick Name"}
	EventHeader    = []string{"ID", "Event Name", "Event Type", "Datetime From", "Datetime To"}
)

// AttendanceKeyHeader is the literal first cell of the attendance sheet.
const AttendanceKeyHeader = "Attendee ID"

// Workbook is the full persisted unit: the three tables.
type Workbook struct {
	Attendees []roster.Attendee
	Events    []roster.Event
	Matrix    *roster.Matrix
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{Matrix: roster.NewMatrix()}
}

// Marshal encodes wb to xlsx bytes.
func Marshal(wb *Workbook) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes xlsx bytes.
func Unmarshal(data []byte) (*Workbook, *DecodeReport, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes wb as an xlsx workbook. Matrix rows without any mark are
// left out; wb itself is not modified.
func Encode(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAttendee); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	for _, name := range []string{SheetEvent, SheetAttendance} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("encode workbook: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}

	grids := map[string][][]string{
		SheetAttendee:   attendeeGrid(wb.Attendees),
		SheetEvent:      eventGrid(wb.Events),
		SheetAttendance: attendanceGrid(wb.Matrix),
	}
	for _, name := range []string{SheetAttendee, SheetEvent, SheetAttendance} {
		if err := writeGrid(f, name, grids[name]); err != nil {
			return fmt.Errorf("encode workbook: sheet %q: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("encode workbook: sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

func attendeeGrid(attendees []roster.Attendee) [][]string {
	grid := [][]string{AttendeeHeader}
	for _, a := range attendees {
		grid = append(grid, []string{a.ID, a.FullName, a.NickName})
	}
	return grid
}

func eventGrid(events []roster.Event) [][]string {
	grid := [][]string{EventHeader}
	for _, e := range events {
		grid = append(grid, []string{e.ID, e.Name, e.Type, FormatTime(e.From), FormatTime(e.To)})
	}
	return grid
}

func attendanceGrid(m *roster.Matrix) [][]string {
	if m == nil {
		return [][]string{{AttendanceKeyHeader}}
	}
	pruned := m.Clone()
	pruned.Prune()

	header := append([]string{AttendanceKeyHeader}, pruned.Columns()...)
	grid := [][]string{header}
	for _, row := range pruned.Rows() {
		line := make([]string, 0, len(row.Marks)+1)
		line = append(line, row.AttendeeID)
		for _, mk := range row.Marks {
			line = append(line, mk.String())
		}
		grid = append(grid, line)
	}
	return grid
}

func writeGrid(f *excelize.File, sheet string, grid [][]string) error {
	for i, line := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads an xlsx workbook. Missing sheets yield empty tables and
// malformed content is collected in the report. Only an unreadable file
// returns an error.
func Decode(r io.Reader) (*Workbook, *DecodeReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	report := &DecodeReport{}
	wb := New()

	if rows, ok := readSheet(f, SheetAttendee, report); ok {
		wb.Attendees = decodeAttendees(rows, report)
	}
	if rows, ok := readSheet(f, SheetEvent, report); ok {
		wb.Events = decodeEvents(rows, report)
	}
	if rows, ok := readSheet(f, SheetAttendance, report); ok {
		wb.Matrix = decodeMatrix(rows, report)
	}
	return wb, report, nil
}

func readSheet(f *excelize.File, sheet string, report *DecodeReport) ([][]string, bool) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, false
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		report.warn(sheet, 0, "unreadable sheet: %v", err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	return rows, true
}

// headerIndex maps normalized header labels to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

func lookup(idx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return clean(row[i])
}

// clean trims and NFC-normalizes a cell so that IDs typed on different
// platforms compare equal.
func clean(s string) string {
	return roster.CleanText(s)
}

func decodeAttendees(rows [][]string, report *DecodeReport) []roster.Attendee {
	idx := headerIndex(rows[0])
	idCol := lookup(idx, "id")
	if idCol < 0 {
		report.warn(SheetAttendee, 1, "missing ID column")
		return nil
	}
	nameCol := lookup(idx, "fullname", "name")
	nickCol := lookup(idx, "nickname", "nick")

	var out []roster.Attendee
	for i, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			if !blank(row) {
				report.warn(SheetAttendee, i+2, "row without ID skipped")
			}
			continue
		}
		out = append(out, roster.Attendee{
			ID:       id,
			FullName: cell(row, nameCol),
			NickName: cell(row, nickCol),
		})
	}
	return out
}

func decodeEvents(rows [][]string, report *DecodeReport) []roster.Event {
	idx := headerIndex(rows[0])
	idCol := lookup(idx, "id")
	if idCol < 0 {
		report.warn(SheetEvent, 1, "missing ID column")
		return nil
	}
	nameCol := lookup(idx, "eventname", "name")
	typeCol := lookup(idx, "eventtype", "type")
	fromCol := lookup(idx, "datetimefrom", "from")
	toCol := lookup(idx, "datetimeto", "to")

	var out []roster.Event
	for i, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			if !blank(row) {
				report.warn(SheetEvent, i+2, "row without ID skipped")
			}
			continue
		}
		ev := roster.Event{
			ID:   id,
			Name: cell(row, nameCol),
			Type: cell(row, typeCol),
		}
		var err error
		if ev.From, err = ParseTime(cell(row, fromCol)); err != nil {
			report.warn(SheetEvent, i+2, "Datetime From: %v", err)
		}
		if ev.To, err = ParseTime(cell(row, toCol)); err != nil {
			report.warn(SheetEvent, i+2, "Datetime To: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func decodeMatrix(rows [][]string, report *DecodeReport) *roster.Matrix {
	header := rows[0]
	if len(header) == 0 || normalizeHeader(header[0]) != normalizeHeader(AttendanceKeyHeader) {
		report.warn(SheetAttendance, 1, "first header cell must be %q", AttendanceKeyHeader)
		return roster.NewMatrix()
	}

	m := roster.NewMatrix()
	// cols maps sheet column positions to event IDs; "" means ignored.
	cols := make([]string, len(header))
	for j := 1; j < len(header); j++ {
		id := clean(header[j])
		switch {
		case id == "":
			report.warn(SheetAttendance, 1, "empty event ID in column %d ignored", j+1)
		case !m.AddColumn(id):
			report.warn(SheetAttendance, 1, "duplicate event column %q ignored", id)
		default:
			cols[j] = id
		}
	}

	for i, row := range rows[1:] {
		key := cell(row, 0)
		if key == "" {
			if !blank(row) {
				report.warn(SheetAttendance, i+2, "row without attendee ID skipped")
			}
			continue
		}
		if m.HasRow(key) {
			report.warn(SheetAttendance, i+2, "duplicate attendee row %q ignored", key)
			continue
		}
		marks := make([]roster.Mark, len(m.Columns()))
		for j := 1; j < len(row) && j < len(cols); j++ {
			if cols[j] == "" {
				continue
			}
			mk, err := roster.ParseMark(row[j])
			if err != nil {
				report.warn(SheetAttendance, i+2, "%v", err)
				continue
			}
			marks[m.ColumnIndex(cols[j])] = mk
		}
		m.SetRow(key, marks)
	}
	return m
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
