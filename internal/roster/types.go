package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Attendee is a person whose attendance is tracked.
type Attendee struct {
	ID       string `json:"id" yaml:"id"`
	FullName string `json:"full_name" yaml:"full_name"`
	NickName string `json:"nick_name,omitempty" yaml:"nick_name,omitempty"`
}

// Event is a single occurrence attendance is taken for.
// Type is a free-form category shared by many events.
type Event struct {
	ID   string    `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Type string    `json:"type" yaml:"type"`
	From time.Time `json:"from" yaml:"from"`
	To   time.Time `json:"to" yaml:"to"`
}

// Mark is the attendance state of one (attendee, event) cell.
type Mark int

const (
	// Unset is the default for cells never explicitly marked.
	Unset Mark = iota
	// Present means the attendee attended the event.
	Present
	// Absent means the attendee was recorded as not attending.
	Absent
)

// Canonical tokens written to workbooks and accepted everywhere.
const (
	TokenPresent = "Present"
	TokenAbsent  = "Absent"
)

// ErrInvalidMark is returned when a token cannot be mapped to a Mark.
var ErrInvalidMark = errors.New("invalid attendance mark")

// String returns the canonical token. Unset renders as the empty string.
func (m Mark) String() string {
	switch m {
	case Present:
		return TokenPresent
	case Absent:
		return TokenAbsent
	default:
		return ""
	}
}

// IsSet reports whether the cell holds Present or Absent.
func (m Mark) IsSet() bool {
	return m == Present || m == Absent
}

// ParseMark converts a boundary token into a Mark.
//
// Besides the canonical Present/Absent pair, the legacy tokens written by
// older workbooks are accepted: yes/no and 是/否. Matching ignores case and
// surrounding whitespace. The empty string is Unset.
func ParseMark(token string) (Mark, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "":
		return Unset, nil
	case "present", "yes", "是":
		return Present, nil
	case "absent", "no", "否":
		return Absent, nil
	case "unset":
		return Unset, nil
	}
	return Unset, fmt.Errorf("%w: %q", ErrInvalidMark, token)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mark) UnmarshalText(text []byte) error {
	parsed, err := ParseMark(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
