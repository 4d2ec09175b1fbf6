package service

import "errors"

var (
	// ErrNoSnapshot is returned before the first successful refresh
	ErrNoSnapshot = errors.New("no snapshot available yet")

	// ErrInvalidAlertKey is returned when a dismissal names a malformed key
	ErrInvalidAlertKey = errors.New("invalid alert key")
)
