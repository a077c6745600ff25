package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so each boundary can map them to one stable
// status without inspecting driver or transport errors.
type Kind int

const (
	KindUnknown Kind = iota
	KindMalformedRequest
	KindMissingField
	KindInvalidType
	KindNotFound
	KindConflict
	KindUpstreamFailure
	KindStorageFault
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindMalformedRequest: "malformed_request",
	KindMissingField:     "missing_field",
	KindInvalidType:      "invalid_type",
	KindNotFound:         "not_found",
	KindConflict:         "conflict",
	KindUpstreamFailure:  "upstream_failure",
	KindStorageFault:     "storage_fault",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind plus the operation that failed. Reason is safe to show
// to callers; Err is the underlying cause and is only ever logged.
type Error struct {
	Err    error
	Op     string
	Reason string
	Kind   Kind
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, ErrConflict) works
// regardless of Op or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedRequest = &Error{Kind: KindMalformedRequest}
	ErrMissingField     = &Error{Kind: KindMissingField}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrUpstreamFailure  = &Error{Kind: KindUpstreamFailure}
	ErrStorageFault     = &Error{Kind: KindStorageFault}
)

// E builds an *Error.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain. Anything else
// is treated as a storage fault, the most conservative reading.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFault
}

// ReasonOf returns the caller-safe reason attached to err, if any.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
