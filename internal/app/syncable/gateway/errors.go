package gateway

import "errors"

var (
	// ErrNotConfigured is returned when no session factory was registered.
	ErrNotConfigured = errors.New("no session factory configured")
	// ErrNotFound is returned by Session.Find for missing rows.
	ErrNotFound = errors.New("record not found")
	// ErrNotAttached is returned when marking a field of a record the session
	// does not track.
	ErrNotAttached = errors.New("record is not attached to the session")
	// ErrUnknownField is returned when a record cannot map a field to columns.
	ErrUnknownField = errors.New("field is not persisted")
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("session is closed")
)
