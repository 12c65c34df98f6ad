// Package workbook converts the attendance tables to and from the binary
// .xlsx workbook exchanged with spreadsheet applications.
//
// A workbook carries three sheets with a fixed column order:
//
//	attendee    ID | Full Name | Nick Name
//	event       ID | Event Name | Event Type | Datetime From | Datetime To
//	attendance  Attendee ID | <event id> | <event id> | ...
//
// Decoding is lenient: missing sheets decode to empty tables and malformed
// cells are reported as MalformedWorkbookError warnings in the DecodeReport
// instead of failing the whole import.
package workbook
