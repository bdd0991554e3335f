package firewire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrBatchCommitted is returned when a WriteBatch is
// mutated, or committed again, after Commit has been
// called. A committed batch is frozen - reusing it is
// a caller bug, never silently ignored.
var ErrBatchCommitted = errors.New("firewire: batch has already been committed")

// An UnsupportedTypeError is returned when encoding a
// native value whose type has no wire representation
// (e.g. a channel or a function).
type UnsupportedTypeError struct {
	// Type is the reflect Type of the offending value.
	Type reflect.Type
}

// Error returns the error message.
func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "firewire: cannot encode value of unknown type"
	}

	return fmt.Sprintf("firewire: cannot encode value of type %s", e.Type)
}

// A MalformedValueError is returned when decoding a
// wire Value with zero or more than one populated
// kind key. Malformed Values are always a fatal
// decode error, never silently coerced to null.
type MalformedValueError struct {
	// Kinds holds the JSON keys of the populated kind
	// fields. Empty when no recognised kind was present.
	Kinds []string
}

// Error returns the error message.
func (e *MalformedValueError) Error() string {
	if len(e.Kinds) == 0 {
		return "firewire: wire value has no recognised kind"
	}

	return fmt.Sprintf(
		"firewire: wire value has %d populated kinds (%s)",
		len(e.Kinds),
		strings.Join(e.Kinds, ", "),
	)
}
