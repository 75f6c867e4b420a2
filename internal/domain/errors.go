package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request the engine cannot plan for.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidLevel marks a level outside [1, MaxLevel].
	ErrInvalidLevel = errors.New("invalid level")
	// ErrMalformedRecord marks exchange data that failed to parse or validate.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUpstreamUnavailable marks a failure of the exchange or the store.
	// Callers may retry.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// MalformedRecordError names the offending order and field.
type MalformedRecordError struct {
	OrderID string
	Field   string
	Value   string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record %s: field %s=%q", e.OrderID, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}
