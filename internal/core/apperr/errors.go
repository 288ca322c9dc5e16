// Package apperr defines the error kinds the reasoning core reports to its
// callers.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	// InvalidArgument marks malformed caller input such as a blank condition.
	InvalidArgument
	// NotFound means the condition does not exist in the graph.
	NotFound
	// UpstreamUnavailable covers connection and query failures of the store.
	UpstreamUnavailable
	// Timeout means the caller's deadline passed or the caller cancelled.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStore classifies a graph store failure. An *Error passes through.
func FromStore(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(Timeout, op, err)
	}
	return New(UpstreamUnavailable, op, err)
}
