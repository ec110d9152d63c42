package smtp

import (
	"errors"
	"fmt"
)

// Semantic error tags. Session operations wrap one of
// these with [fmt.Errorf]'s %w so callers can branch with [errors.Is]
// regardless of the underlying transport or protocol detail.
var (
	// ErrCouldNotConnect is returned when opening the transport fails.
	ErrCouldNotConnect = errors.New("smtp: could not connect")
	// ErrConnectionAuth is returned when TLS peer verification fails and
	// the caller supplied explicit trust material.
	ErrConnectionAuth = errors.New("smtp: connection authentication failed")
	// ErrBadResponse is returned for a malformed reply or an unexpected
	// status code.
	ErrBadResponse = errors.New("smtp: bad response")
	// ErrNoConnection is returned when an operation is attempted outside
	// the Connected state.
	ErrNoConnection = errors.New("smtp: no connection")
	// ErrCommandInFlight is returned when a second command is issued
	// while one is already awaiting a reply; this is a caller bug.
	ErrCommandInFlight = errors.New("smtp: command already in flight")
	// ErrAuthNotSupported is returned when no offered mechanism matches
	// the configured auth order.
	ErrAuthNotSupported = errors.New("smtp: no supported auth mechanism offered")
	// ErrAuthFailed is returned when the mechanism dance fails.
	ErrAuthFailed = errors.New("smtp: authentication failed")
	// ErrTimeout is returned when the inactivity timer elapses.
	ErrTimeout = errors.New("smtp: timeout")
)

// SMTPError represents an SMTP protocol error with a reply code,
// optional enhanced status code, and human-readable message.
type SMTPError struct {
	Code         ReplyCode
	EnhancedCode EnhancedCode
	Message      string

	// tag is one of the sentinel errors above, when applicable, so that
	// errors.Is(err, ErrBadResponse) works on a returned *SMTPError too.
	tag error
}

// Error implements the error interface.
func (e *SMTPError) Error() string {
	if !e.EnhancedCode.IsZero() {
		return fmt.Sprintf("smtp: %d %s %s", e.Code, e.EnhancedCode, e.Message)
	}
	return fmt.Sprintf("smtp: %d %s", e.Code, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the semantic tag this
// error was constructed with, if any.
func (e *SMTPError) Unwrap() error {
	return e.tag
}

// Temporary reports whether the error represents a transient failure (4xx).
func (e *SMTPError) Temporary() bool {
	return e.Code.IsTransient()
}

// Errorf creates an SMTPError with a formatted message.
func Errorf(code ReplyCode, enhanced EnhancedCode, format string, args ...any) *SMTPError {
	return &SMTPError{
		Code:         code,
		EnhancedCode: enhanced,
		Message:      fmt.Sprintf(format, args...),
	}
}

// TaggedError wraps a reply as an SMTPError carrying the given semantic
// tag, so the result satisfies errors.Is(err, tag).
func TaggedError(tag error, code ReplyCode, enhanced EnhancedCode, format string, args ...any) *SMTPError {
	return &SMTPError{
		Code:         code,
		EnhancedCode: enhanced,
		Message:      fmt.Sprintf(format, args...),
		tag:          tag,
	}
}
