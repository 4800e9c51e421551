package myo

import "errors"

// Session-level errors.
var (
	// ErrNotConnected indicates an operation on a session whose link is
	// not connected.
	ErrNotConnected = errors.New("session not connected")

	// ErrModeUncertain indicates a mode-changing write whose outcome is
	// unknown, typically because it was cancelled mid-flight. The cached
	// mode state is left untouched and may no longer match the device;
	// issue an explicit SetMode to re-establish a known state.
	ErrModeUncertain = errors.New("mode state uncertain")
)
