package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runYAML(t *testing.T, src string) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_LazyRows(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "lazy_rows.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 4+7)
	assert.Equal(t, []string{"1"}, result.Columns)
}

func TestRun_NoDataBeforeInit(t *testing.T) {
	result := runYAML(t, `
name: no_data
description: every operation needs loaded data
flow:
  - op: add_attendee
    args: { id: A1 }
    expect: { outcome: no_data }
  - op: mark
    args: { attendee: A1, event: E1, mark: Present }
    expect: { outcome: no_data }
  - op: roundtrip
    expect: { outcome: no_data }
  - op: hydrate
    expect: { outcome: no_data }
assertions:
  - type: columns
    columns: []
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Summary)
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	result := runYAML(t, `
name: mismatch
description: an outcome other than the expected one fails the scenario
setup:
  - op: init
flow:
  - op: delete_event
    args: { id: E1 }
assertions:
  - type: count
    table: events
    count: 0
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected outcome ok, got not_found")
}

func TestRun_SetupMustSucceed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_setup
description: setup failures abort the run
setup:
  - op: add_attendee
    args: { id: A1 }
flow:
  - op: init
assertions:
  - type: durable
`))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup step 0 (add_attendee): outcome no_data")
}

func TestRun_EventUpdateAndInvalidTimes(t *testing.T) {
	result := runYAML(t, `
name: event_update
description: event fields change in place and bad times are rejected
setup:
  - op: init
  - op: add_event
    args: { id: E1, name: Old, from: "2025-07-01T09:00" }
flow:
  - op: update_event
    args: { id: E1, name: New, to: "2025-07-01T11:00" }
  - op: add_event
    args: { id: E2, from: "next tuesday" }
    expect: { outcome: invalid }
  - op: add_event
    args: { id: E1 }
    expect: { outcome: duplicate }
  - op: add_event
    args: { id: "" }
    expect: { outcome: invalid }
assertions:
  - type: count
    table: events
    count: 1
  - type: columns
    columns: [E1]
  - type: durable
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_NumericArgsAreFormatted(t *testing.T) {
	result := runYAML(t, `
name: numeric_ids
description: bare numeric IDs in YAML are used as strings
setup:
  - op: init
  - op: add_attendee
    args: { id: 7, full_name: Seven }
  - op: add_event
    args: { id: 1 }
flow:
  - op: mark
    args: { attendee: 7, event: 1, mark: "yes" }
assertions:
  - type: cell
    attendee: "7"
    event: "1"
    mark: Present
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailingAssertions(t *testing.T) {
	result := runYAML(t, `
name: failing
description: assertion failures are reported with context
setup:
  - op: init
  - op: add_attendee
    args: { id: A1, full_name: Ann }
  - op: add_event
    args: { id: E1 }
flow:
  - op: mark
    args: { attendee: A1, event: E1, mark: Present }
assertions:
  - type: summary
    attendee: A1
    expect: { percent: 50 }
  - type: summary
    attendee: A9
    expect: { total: 0 }
  - type: cell
    attendee: A1
    event: E1
    mark: Absent
  - type: no_row
    attendee: A1
  - type: count
    table: attendees
    count: 3
  - type: columns
    columns: [E1, E2]
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "A1.percent = 50")
	assert.Contains(t, result.Errors[1], "attendee not in summary")
	assert.Contains(t, result.Errors[2], "Assertion failed: cell")
	assert.Contains(t, result.Errors[3], "Assertion failed: no_row")
	assert.Contains(t, result.Errors[4], "3 attendees")
	assert.Contains(t, result.Errors[5], "[E1 E2]")
	assert.Contains(t, result.Errors[0], "[4] mark", "trace is included")
}
