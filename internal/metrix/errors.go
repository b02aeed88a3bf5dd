package metrix

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a backend failure into the three cases pages know how to render.
type Kind int

const (
	// KindNetwork covers connection failures, timeouts and 5xx responses.
	KindNetwork Kind = iota + 1
	// KindMalformed covers undecodable bodies and missing required fields.
	KindMalformed
	// KindNotFound covers unknown players, empty bundles and rejected queries.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrNetwork   = errors.New("metrix: backend unreachable")
	ErrMalformed = errors.New("metrix: malformed response")
	ErrNotFound  = errors.New("metrix: not found")
)

// Error is returned by every Client method.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("metrix %s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("metrix %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Timeout reports whether the failure was a deadline rather than a refused connection.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// KindOf extracts the Kind of err, or 0 when err did not come from this package.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}

func newError(op string, kind Kind, status int, err error) *Error {
	return &Error{Op: op, Kind: kind, Status: status, Err: err}
}
