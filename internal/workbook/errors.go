package workbook

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat indicates the input is not a readable xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// MalformedWorkbookError describes a part of a workbook that did not have the
// expected shape. Decode degrades instead of returning it.
type MalformedWorkbookError struct {
	Sheet  string
	Row    int // 1-based; 0 when the problem concerns the whole sheet
	Reason string
}

func (e *MalformedWorkbookError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed workbook: sheet %q row %d: %s", e.Sheet, e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed workbook: sheet %q: %s", e.Sheet, e.Reason)
}

// DecodeReport collects the warnings produced while decoding.
type DecodeReport struct {
	Warnings []error
}

func (r *DecodeReport) warn(sheet string, row int, format string, args ...any) {
	r.Warnings = append(r.Warnings, &MalformedWorkbookError{
		Sheet:  sheet,
		Row:    row,
		Reason: fmt.Sprintf(format, args...),
	})
}

// OK reports whether decoding produced no warnings.
func (r *DecodeReport) OK() bool {
	return len(r.Warnings) == 0
}
