package roster

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MaxTextLen is the number of UTF-16 code units a workbook cell holds.
// Longer values would be cut when written.
const MaxTextLen = 32767

// ErrTextTooLong is returned for a field longer than MaxTextLen.
var ErrTextTooLong = errors.New("text longer than a workbook cell")

// CleanText trims surrounding whitespace and NFC-normalizes s. IDs and names
// are kept in this form so they read back from a workbook unchanged.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CheckText returns ErrTextTooLong if any field exceeds MaxTextLen.
func CheckText(fields ...string) error {
	for _, f := range fields {
		if n := utf16Len(f); n > MaxTextLen {
			return fmt.Errorf("%w: %d code units", ErrTextTooLong, n)
		}
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Normalized returns a with every field cleaned.
func (a Attendee) Normalized() Attendee {
	return Attendee{
		ID:       CleanText(a.ID),
		FullName: CleanText(a.FullName),
		NickName: CleanText(a.NickName),
	}
}

// Normalized returns e with text fields cleaned and times in UTC.
func (e Event) Normalized() Event {
	return Event{
		ID:   CleanText(e.ID),
		Name: CleanText(e.Name),
		Type: CleanText(e.Type),
		From: e.From.UTC(),
		To:   e.To.UTC(),
	}
}
