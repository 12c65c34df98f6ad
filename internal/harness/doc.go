// Package harness runs attendance scenarios against a real store.
//
// A scenario is a YAML file listing store operations and what should be
// true afterwards. Each scenario runs against a fresh in-memory SQLite cache,
// so write-through persistence is exercised on every step.
//
// # Scenario Format
//
//	name: rename_cascade
//	description: "What this scenario validates"
//	setup:
//	  - op: init
//	  - op: add_attendee
//	    args: { id: A001, full_name: Ann Lee }
//	flow:
//	  - op: mark
//	    args: { attendee: A001, event: E001, mark: Present }
//	  - op: add_attendee
//	    args: { id: A001, full_name: Clone }
//	    expect: { outcome: duplicate }
//	assertions:
//	  - type: summary
//	    attendee: A001
//	    expect: { total: 1, present: 1, percent: 100 }
//
// # Operations
//
//   - init: start with empty tables
//   - add_attendee, update_attendee, delete_attendee
//   - add_event, update_event, delete_event
//   - mark: attendee, event, mark (Present, Absent or empty to clear)
//   - roundtrip: export to xlsx and import the result
//   - hydrate: replace the store with one loaded from the cache
//
// Setup steps must succeed. Flow steps are compared against their expect
// clause; without one the outcome must be "ok".
//
// # Outcomes
//
//   - ok, ignored (mark on an event without a column)
//   - duplicate, not_found, no_data, invalid, cache_error
//
// # Assertion Types
//
//   - summary: per-attendee totals (subset match on total, present, percent)
//   - cell: the mark of one attendee and event
//   - columns: the attendance matrix columns, in order
//   - no_row: the attendee has no matrix row
//   - count: number of attendees or events
//   - durable: a store hydrated from the cache equals the live store
//
// # Deterministic Testing
//
// The cache clock is a testutil.DeterministicClock and trace sequence
// numbers count steps, so a scenario always produces the same trace and the
// same final summary. RunWithGolden compares both against a golden file.
package harness
