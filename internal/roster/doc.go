// Package roster defines the records of the attendance tracker and the
// attendance matrix that relates them.
//
// # Tables
//
//   - Attendee: ID, full name, optional nick name
//   - Event: ID, name, free-form type, from/to timestamps
//   - Matrix: ordered event columns x attendee rows of Marks
//
// # Matrix Invariants
//
// The Matrix itself only guarantees its structural invariants:
//   - column IDs are unique, row keys are unique
//   - every row holds exactly one cell per column
//
// Referential integrity against the Attendee and Event tables (no orphan
// columns, no orphan rows) is maintained by the attendance.Store that owns
// both the tables and the matrix.
//
// All accessors that return slices return copies. A Matrix is not safe for
// concurrent use.
package roster
