package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a requested resource does not exist. Lookups
// return it instead of a generic error so callers can distinguish "try the
// next lookup strategy" from an outright failure.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
