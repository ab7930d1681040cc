package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors for transport-level mapping.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindUnauthorized
	KindConflict
)

// DomainError is a typed domain failure with a stable numeric sub-code so
// callers can disambiguate rejections beyond the HTTP status.
type DomainError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error // underlying cause, preserved for logging
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by kind and code, so sentinel instances below
// work with errors.Is even after wrapping a cause via WithCause.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithCause returns a copy of the error carrying the underlying cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Err:     cause,
	}
}

func notFound(code int, msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: msg}
}

func unauthorized(code int, msg string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Code: code, Message: msg}
}

func conflict(code int, msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: msg}
}

// Sentinel domain errors. Codes are part of the public contract.
var (
	ErrDriverMidClaim       = conflict(4001, "driver picking passenger")
	ErrDwellTooShort        = conflict(4002, "cannot deactivate beacon within 10 minutes of last activity")
	ErrDriverNotEligible    = unauthorized(4003, "driver not verified or completed")
	ErrDriverNotFound       = notFound(4004, "driver not found")
	ErrNoNearbyDrivers      = notFound(4004, "no drivers found nearby")
	ErrWorkLogCreateFailed  = conflict(4005, "failed to create worklog")
	ErrActivityInsertFailed = conflict(4006, "failed to insert activity")
	ErrDuplicateTransition  = conflict(4007, "status and active same as last log")
)

// Code extracts the numeric sub-code from a domain error chain, 0 if absent.
func Code(err error) int {
	var e *DomainError
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// KindOf extracts the error kind from a domain error chain, 0 if absent.
func KindOf(err error) ErrorKind {
	var e *DomainError
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Infrastructure-level sentinels not exposed to API callers directly.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWorkLogNotFound = errors.New("worklog not found")
	ErrWorkLogExists   = errors.New("worklog already exists for this driver-day")
)
