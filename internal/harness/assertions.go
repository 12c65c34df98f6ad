package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/rollcall/internal/attendance"
	"github.com/roach88/rollcall/internal/cache"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/summary"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Seq, event.Op, event.Args, event.Outcome)
	}

	return buf.String()
}

// AssertionContext provides access to the final state for assertions.
type AssertionContext struct {
	Store *attendance.Store
	Cache *cache.Cache
	Ctx   context.Context

	// NewStore returns an uninitialized store on the same cache.
	NewStore func() *attendance.Store
}

// assertSummary checks the summary of one attendee against expected fields
// (subset match on total, present, percent).
func assertSummary(result *Result, assertion Assertion) error {
	var row *summary.AttendeeSummary
	for i := range result.Summary {
		if result.Summary[i].AttendeeID == assertion.Attendee {
			row = &result.Summary[i]
			break
		}
	}
	if row == nil {
		return &AssertionError{
			Type:     AssertSummary,
			Expected: fmt.Sprintf("summary for attendee %s", assertion.Attendee),
			Actual:   "attendee not in summary",
			Trace:    result.Trace,
		}
	}

	actual := map[string]interface{}{
		"total":   row.Total,
		"present": row.Present,
		"percent": row.Percent,
	}
	for key, want := range assertion.Expect {
		got, ok := actual[key]
		if !ok {
			return fmt.Errorf("summary: unknown field %q", key)
		}
		if !valuesEqual(got, want) {
			return &AssertionError{
				Type:     AssertSummary,
				Expected: fmt.Sprintf("%s.%s = %v", assertion.Attendee, key, want),
				Actual:   fmt.Sprintf("%s.%s = %v", assertion.Attendee, key, got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// assertCell checks the mark of one cell.
func assertCell(result *Result, st *attendance.Store, assertion Assertion) error {
	want, err := roster.ParseMark(assertion.Mark)
	if err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	got, err := st.Mark(assertion.Attendee, assertion.Event)
	if err != nil {
		return fmt.Errorf("cell: %w", err)
	}
	if got != want {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("(%s, %s) = %q", assertion.Attendee, assertion.Event, want),
			Actual:   fmt.Sprintf("(%s, %s) = %q", assertion.Attendee, assertion.Event, got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertColumns checks the matrix columns, in order.
func assertColumns(result *Result, assertion Assertion) error {
	want, got := assertion.Columns, result.Columns
	if len(want) == 0 && len(got) == 0 {
		return nil
	}
	if !reflect.DeepEqual(want, got) {
		return &AssertionError{
			Type:     AssertColumns,
			Expected: fmt.Sprintf("columns %v", want),
			Actual:   fmt.Sprintf("columns %v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertNoRow checks that the attendee has no matrix row.
func assertNoRow(result *Result, st *attendance.Store, assertion Assertion) error {
	m, err := st.Matrix()
	if err != nil {
		return fmt.Errorf("no_row: %w", err)
	}
	if m.HasRow(assertion.Attendee) {
		marks, _ := m.Row(assertion.Attendee)
		return &AssertionError{
			Type:     AssertNoRow,
			Expected: fmt.Sprintf("no row for %s", assertion.Attendee),
			Actual:   fmt.Sprintf("row %v", marks),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertCount checks the number of attendees or events.
func assertCount(result *Result, st *attendance.Store, assertion Assertion) error {
	var n int
	switch assertion.Table {
	case "attendees":
		rows, err := st.Attendees()
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		n = len(rows)
	case "events":
		rows, err := st.Events()
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		n = len(rows)
	}
	if n != assertion.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", assertion.Count, assertion.Table),
			Actual:   fmt.Sprintf("%d %s", n, assertion.Table),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertDurable hydrates a second store from the cache and compares it with
// the live one.
func assertDurable(actx *AssertionContext, result *Result) error {
	live, err := actx.Store.Workbook()
	if err != nil {
		return fmt.Errorf("durable: %w", err)
	}
	fresh := actx.NewStore()
	ok, err := fresh.Hydrate(actx.Ctx)
	if err != nil {
		return fmt.Errorf("durable: %w", err)
	}
	if !ok {
		return &AssertionError{
			Type:     AssertDurable,
			Expected: "cache holds the workbook",
			Actual:   "cache slot empty",
			Trace:    result.Trace,
		}
	}
	cached, err := fresh.Workbook()
	if err != nil {
		return fmt.Errorf("durable: %w", err)
	}

	mismatch := func(what string, want, got interface{}) error {
		return &AssertionError{
			Type:     AssertDurable,
			Expected: fmt.Sprintf("cached %s %v", what, want),
			Actual:   fmt.Sprintf("cached %s %v", what, got),
			Trace:    result.Trace,
		}
	}
	if !reflect.DeepEqual(live.Attendees, cached.Attendees) {
		return mismatch("attendees", live.Attendees, cached.Attendees)
	}
	if len(live.Events) != len(cached.Events) {
		return mismatch("events", live.Events, cached.Events)
	}
	for i := range live.Events {
		a, b := live.Events[i], cached.Events[i]
		if a.ID != b.ID || a.Name != b.Name || a.Type != b.Type || !a.From.Equal(b.From) || !a.To.Equal(b.To) {
			return mismatch("event", a, b)
		}
	}
	// Rows without marks are not written, so compare the pruned matrix.
	live.Matrix.Prune()
	if !reflect.DeepEqual(live.Matrix.Columns(), cached.Matrix.Columns()) {
		return mismatch("columns", live.Matrix.Columns(), cached.Matrix.Columns())
	}
	if !reflect.DeepEqual(live.Matrix.Rows(), cached.Matrix.Rows()) {
		return mismatch("rows", live.Matrix.Rows(), cached.Matrix.Rows())
	}
	return nil
}

// valuesEqual compares a summary field with a YAML-decoded value.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	a, aok := actual.(int)
	switch e := expected.(type) {
	case int:
		return aok && a == e
	case int64:
		return aok && int64(a) == e
	case float64:
		return aok && float64(a) == e
	}
	return reflect.DeepEqual(actual, expected)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		needsStore := assertion.Type != AssertSummary && assertion.Type != AssertColumns
		if needsStore && (actx == nil || actx.Store == nil) {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s requires a store", i, assertion.Type))
			continue
		}

		switch assertion.Type {
		case AssertSummary:
			err = assertSummary(result, assertion)
		case AssertColumns:
			err = assertColumns(result, assertion)
		case AssertCell:
			err = assertCell(result, actx.Store, assertion)
		case AssertNoRow:
			err = assertNoRow(result, actx.Store, assertion)
		case AssertCount:
			err = assertCount(result, actx.Store, assertion)
		case AssertDurable:
			err = assertDurable(actx, result)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
