package roster

// Matrix is the sparse attendee x event grid of marks.
//
// Columns are event IDs in creation order. Rows are keyed by attendee ID and
// kept in insertion order so that serialization is deterministic. Every row
// holds exactly len(Columns()) cells.
type Matrix struct {
	columns []string
	colIdx  map[string]int
	order   []string
	rows    map[string][]Mark
}

// Row is a snapshot of one matrix row.
type Row struct {
	AttendeeID string
	Marks      []Mark
}

// NewMatrix returns an empty matrix with the given columns.
// Duplicate column IDs after the first occurrence are ignored.
func NewMatrix(columns ...string) *Matrix {
	m := &Matrix{
		colIdx: make(map[string]int),
		rows:   make(map[string][]Mark),
	}
	for _, c := range columns {
		m.AddColumn(c)
	}
	return m
}

// Columns returns a copy of the event IDs in column order.
func (m *Matrix) Columns() []string {
	out := make([]string, len(m.columns))
	copy(out, m.columns)
	return out
}

// ColumnIndex returns the position of an event column, or -1.
func (m *Matrix) ColumnIndex(eventID string) int {
	if i, ok := m.colIdx[eventID]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the event has a column.
func (m *Matrix) HasColumn(eventID string) bool {
	_, ok := m.colIdx[eventID]
	return ok
}

// AddColumn appends a column for eventID and extends every row with an
// Unset cell. It reports false when the column already existed.
func (m *Matrix) AddColumn(eventID string) bool {
	if _, ok := m.colIdx[eventID]; ok {
		return false
	}
	m.colIdx[eventID] = len(m.columns)
	m.columns = append(m.columns, eventID)
	for key, marks := range m.rows {
		m.rows[key] = append(marks, Unset)
	}
	return true
}

// RemoveColumn drops the column for eventID from the header and every row,
// shifting later columns left. It reports false when there was no column.
func (m *Matrix) RemoveColumn(eventID string) bool {
	idx, ok := m.colIdx[eventID]
	if !ok {
		return false
	}
	m.columns = append(m.columns[:idx], m.columns[idx+1:]...)
	delete(m.colIdx, eventID)
	for i := idx; i < len(m.columns); i++ {
		m.colIdx[m.columns[i]] = i
	}
	for key, marks := range m.rows {
		m.rows[key] = append(marks[:idx], marks[idx+1:]...)
	}
	return true
}

// HasRow reports whether a row exists for attendeeID.
func (m *Matrix) HasRow(attendeeID string) bool {
	_, ok := m.rows[attendeeID]
	return ok
}

// ensureRow returns the row for attendeeID, creating an all-Unset row if needed.
func (m *Matrix) ensureRow(attendeeID string) []Mark {
	if marks, ok := m.rows[attendeeID]; ok {
		return marks
	}
	marks := make([]Mark, len(m.columns))
	m.rows[attendeeID] = marks
	m.order = append(m.order, attendeeID)
	return marks
}

// Set writes a mark, creating the attendee row lazily.
// It reports false, leaving the matrix untouched, when the event has no column.
func (m *Matrix) Set(attendeeID, eventID string, mark Mark) bool {
	idx, ok := m.colIdx[eventID]
	if !ok {
		return false
	}
	m.ensureRow(attendeeID)[idx] = mark
	return true
}

// Get returns the mark of a cell. Missing rows and columns read as Unset.
func (m *Matrix) Get(attendeeID, eventID string) Mark {
	idx, ok := m.colIdx[eventID]
	if !ok {
		return Unset
	}
	marks, ok := m.rows[attendeeID]
	if !ok {
		return Unset
	}
	return marks[idx]
}

// SetRow replaces the whole row for attendeeID. Marks beyond the column count
// are dropped and missing trailing cells are Unset.
func (m *Matrix) SetRow(attendeeID string, marks []Mark) {
	row := m.ensureRow(attendeeID)
	for i := range row {
		if i < len(marks) {
			row[i] = marks[i]
		} else {
			row[i] = Unset
		}
	}
}

// Row returns a copy of the marks for attendeeID in column order.
func (m *Matrix) Row(attendeeID string) ([]Mark, bool) {
	marks, ok := m.rows[attendeeID]
	if !ok {
		return nil, false
	}
	out := make([]Mark, len(marks))
	copy(out, marks)
	return out, true
}

// Rows returns copies of all rows in insertion order.
func (m *Matrix) Rows() []Row {
	out := make([]Row, 0, len(m.order))
	for _, key := range m.order {
		marks := make([]Mark, len(m.rows[key]))
		copy(marks, m.rows[key])
		out = append(out, Row{AttendeeID: key, Marks: marks})
	}
	return out
}

// RenameRow rekeys the row of oldID to newID in place, keeping its marks and
// position. Renaming a missing row is a no-op. It reports false when newID
// already has a row, in which case nothing changes.
func (m *Matrix) RenameRow(oldID, newID string) bool {
	if oldID == newID {
		return true
	}
	marks, ok := m.rows[oldID]
	if !ok {
		return true
	}
	if _, taken := m.rows[newID]; taken {
		return false
	}
	delete(m.rows, oldID)
	m.rows[newID] = marks
	for i, key := range m.order {
		if key == oldID {
			m.order[i] = newID
			break
		}
	}
	return true
}

// DeleteRow removes the row for attendeeID. Deleting a missing row is a no-op.
func (m *Matrix) DeleteRow(attendeeID string) {
	if _, ok := m.rows[attendeeID]; !ok {
		return
	}
	delete(m.rows, attendeeID)
	for i, key := range m.order {
		if key == attendeeID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Prune removes rows without any Present or Absent mark and returns how many
// were removed.
func (m *Matrix) Prune() int {
	kept := m.order[:0]
	removed := 0
	for _, key := range m.order {
		if rowHasMark(m.rows[key]) {
			kept = append(kept, key)
			continue
		}
		delete(m.rows, key)
		removed++
	}
	m.order = kept
	return removed
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.order)
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.columns...)
	for _, key := range m.order {
		marks := make([]Mark, len(m.rows[key]))
		copy(marks, m.rows[key])
		c.rows[key] = marks
		c.order = append(c.order, key)
	}
	return c
}

func rowHasMark(marks []Mark) bool {
	for _, mk := range marks {
		if mk.IsSet() {
			return true
		}
	}
	return false
}
