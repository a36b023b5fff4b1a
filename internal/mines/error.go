package mines

import (
	"errors"
	"fmt"
)

type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}

var (
	ErrOutOfRange      = errors.New("value out of range")
	ErrUncomputedValue = AssertionError{"cell value has not been computed yet"}
	ErrNotBomb         = AssertionError{"only a bomb cell can be moved"}
)

type bound uint8

const (
	atLeast bound = iota + 1 // >=
	atMost                   // <=
	below                    // <
	above                    // >
)

func (b bound) String() string {
	switch b {
	case atLeast:
		return "greater than or equal to"
	case atMost:
		return "less than or equal to"
	case below:
		return "less than"
	case above:
		return "greater than"
	default:
		return "?"
	}
}

// RangeError reports a numeric argument that fell outside of its allowed
// range. It names the argument, the violated bound and the received value.
type RangeError struct {
	Field    string
	Bound    int
	Received int
	bound    bound
}

// [RangeError] implements [error]
func (e *RangeError) Error() string {
	return fmt.Sprintf(
		"%s must be %s %d. Received: %d",
		e.Field, e.bound, e.Bound, e.Received,
	)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

func checkAtLeast(field string, value, min int) error {
	if value < min {
		return &RangeError{Field: field, Bound: min, Received: value, bound: atLeast}
	}
	return nil
}

func checkAtMost(field string, value, max int) error {
	if value > max {
		return &RangeError{Field: field, Bound: max, Received: value, bound: atMost}
	}
	return nil
}

func checkBelow(field string, value, limit int) error {
	if value >= limit {
		return &RangeError{Field: field, Bound: limit, Received: value, bound: below}
	}
	return nil
}

// CheckPositive is used by collaborators (timers, config) that share the
// grid's range error vocabulary.
func CheckPositive(field string, value int) error {
	if value <= 0 {
		return &RangeError{Field: field, Bound: 0, Received: value, bound: above}
	}
	return nil
}

// checkIndex validates 0 <= value < limit.
func checkIndex(field string, value, limit int) error {
	if err := checkAtLeast(field, value, 0); err != nil {
		return err
	}
	return checkBelow(field, value, limit)
}
