package protocol

import (
	"errors"
	"fmt"
)

// InvalidArgumentError reports a command parameter outside its legal value
// set. It is returned before any bytes are produced.
type InvalidArgumentError struct {
	Param string
	Value int
	Limit string // human-readable description of the legal range
}

func (e *InvalidArgumentError) Error() string {
	if e.Limit == "" {
		return fmt.Sprintf("invalid %s: %d", e.Param, e.Value)
	}
	return fmt.Sprintf("invalid %s: %d (%s)", e.Param, e.Value, e.Limit)
}

// ProtocolViolationError reports a notification frame that does not match
// any known layout. It is fatal to that frame only, never to the session.
type ProtocolViolationError struct {
	What string // which layout was being decoded
	Msg  string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation in %s frame: %s", e.What, e.Msg)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var iae *InvalidArgumentError
	return errors.As(err, &iae)
}

// IsProtocolViolation reports whether err is a ProtocolViolationError.
func IsProtocolViolation(err error) bool {
	var pve *ProtocolViolationError
	return errors.As(err, &pve)
}

func violationf(what, format string, args ...interface{}) error {
	return &ProtocolViolationError{What: what, Msg: fmt.Sprintf(format, args...)}
}

func badLength(what string, got, want int) error {
	return &ProtocolViolationError{
		What: what,
		Msg:  fmt.Sprintf("unexpected length %d (want %d)", got, want),
	}
}
