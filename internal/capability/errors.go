package capability

import (
	"context"
	"errors"
	"fmt"
)

// ErrKind classifies a capability failure. Callers switch on the kind, not
// on error text.
type ErrKind string

const (
	KindNone      ErrKind = ""
	KindRateLimit ErrKind = "rate_limit"
	KindTimeout   ErrKind = "timeout"
	KindOther     ErrKind = "other"
)

// Error carries an error kind alongside the underlying cause.
type Error struct {
	Kind ErrKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RateLimited wraps err as a rate-limit failure.
func RateLimited(err error) error {
	return &Error{Kind: KindRateLimit, Err: err}
}

// KindOf returns the kind of a capability error.
func KindOf(err error) ErrKind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindOther
}
