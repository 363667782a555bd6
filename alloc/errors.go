package alloc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/memkit/internal/resource"
)

var (
	// ErrInvalidArgument is returned for a non-positive size, a bad alignment,
	// or a block that does not belong to the allocator.
	ErrInvalidArgument = errors.New("alloc: invalid argument")

	// ErrAllocationFailed is returned when backing memory could not be obtained.
	ErrAllocationFailed = errors.New("alloc: allocation failed")

	// ErrCapacityExhausted is returned when an arena or fixed buffer cannot
	// satisfy a request within its region.
	ErrCapacityExhausted = errors.New("alloc: capacity exhausted")

	// ErrMemoryLimitExceeded is wrapped together with ErrAllocationFailed when
	// a Budget refuses a reservation.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// Error describes a failed allocator operation.
//
// The sentinel kind (ErrInvalidArgument, ErrAllocationFailed,
// ErrCapacityExhausted) can be matched with errors.Is.
type Error struct {
	Op     string
	Size   int
	Align  int
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s (size=%d, align=%d): %v", e.Op, e.Size, e.Align, e.cause)
	}
	return fmt.Sprintf("%s (size=%d, align=%d): %s: %v", e.Op, e.Size, e.Align, e.Reason, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(op string, size, align int, cause error, reason string) *Error {
	return &Error{
		Op:     op,
		Size:   size,
		Align:  align,
		Reason: reason,
		cause:  cause,
	}
}

func budgetError(op string, size, align int, err error) *Error {
	return newError(op, size, align, fmt.Errorf("%w: %w", ErrAllocationFailed, err), "")
}
