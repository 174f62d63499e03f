package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrMultipleObjectsFound is matched by every *MultipleObjectsFoundError.
	ErrMultipleObjectsFound = errors.New("multiple objects found")

	// ErrNoServiceInstanceFound is returned when an instance group has no
	// related service instance.
	ErrNoServiceInstanceFound = errors.New("no service instance found")
)

// MultipleObjectsFoundError reports a lookup by name that matched more than
// one inventory object.
type MultipleObjectsFoundError struct {
	// Kind is the inventory object type, e.g. "l3-network".
	Kind    string
	Count   int
	Message string
}

func (e *MultipleObjectsFoundError) Error() string {
	return e.Message
}

// Is reports whether target is ErrMultipleObjectsFound.
func (e *MultipleObjectsFoundError) Is(target error) bool {
	return target == ErrMultipleObjectsFound
}

func multipleFound(kind string, count int, format string, args ...any) error {
	return &MultipleObjectsFoundError{
		Kind:    kind,
		Count:   count,
		Message: fmt.Sprintf(format, args...),
	}
}
