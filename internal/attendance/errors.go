package attendance

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them via errors.Is.
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNotFound    = errors.New("not found")
	ErrInvalidID   = errors.New("id must not be empty")

	// ErrNoData is returned by every operation on a store that has not been
	// initialized, imported or hydrated yet.
	ErrNoData = errors.New("no attendance data loaded")
)

// Kind names the table an error refers to.
type Kind string

const (
	KindAttendee Kind = "attendee"
	KindEvent    Kind = "event"
)

// DuplicateIDError reports a create (or attendee rename) onto an existing ID.
type DuplicateIDError struct {
	Kind Kind
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

// Is matches ErrDuplicateID.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// NotFoundError reports an update or delete of a missing ID.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CacheWriteError reports that the durable cache could not be updated.
// The in-memory mutation that triggered the write has already been applied.
type CacheWriteError struct {
	Key string
	Err error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("write cache %q: %v", e.Key, e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}

// IsCacheWriteError returns true if err is or wraps a CacheWriteError.
func IsCacheWriteError(err error) bool {
	var cwe *CacheWriteError
	return errors.As(err, &cwe)
}
