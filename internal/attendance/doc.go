// Package attendance provides the Store that keeps the attendee table, the
// event table and the attendance matrix mutually consistent.
//
// # Cascades
//
//   - AddEvent adds a matrix column and extends every row with an unset cell
//   - DeleteEvent removes the column from every row
//   - UpdateAttendee with a new ID rekeys the attendee's row in place
//   - DeleteAttendee removes the attendee's row (no-op when there is none)
//
// # Persistence
//
// The store writes through to a Cache after every successful mutation: the
// whole workbook is encoded as xlsx, base64-encoded and stored under a single
// key (DefaultCacheKey). Hydrate reads that slot back on start. The
// in-memory tables are authoritative; a failed cache write is reported as a
// *CacheWriteError but never rolls back the mutation.
//
// # Leniency
//
// MarkAttendance against an event that has no matrix column is a silent
// no-op rather than an error. Callers that just created an event always have
// a column, since AddEvent creates it.
package attendance
