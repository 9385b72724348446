package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredList is returned when a list needed by the schedule is absent or empty
var ErrMissingRequiredList = errors.New("missing required participant list")

// MissingListError names the lists that failed the precondition check
type MissingListError struct {
	Keys []string
}

func (e *MissingListError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredList, strings.Join(e.Keys, ", "))
}

func (e *MissingListError) Unwrap() error {
	return ErrMissingRequiredList
}
