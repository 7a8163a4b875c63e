package session

import "errors"

var (
	// ErrNotFound is returned by handlers when no record exists for an id.
	ErrNotFound = errors.New("session.not_found")

	// ErrHandlerNotOpen is returned by handlers used before Open.
	ErrHandlerNotOpen = errors.New("session.handler_not_open")

	// ErrHandlerBusy is returned by Open when the handler is already open
	// for another session name.
	ErrHandlerBusy = errors.New("session.handler_busy")

	ErrInvalidName   = errors.New("session.invalid_name")
	ErrInvalidConfig = errors.New("session.invalid_config")
	ErrNoHandler     = errors.New("session.no_handler")
	ErrNoTransport   = errors.New("session.no_transport")

	// ErrNotActive is returned by data accessors used before Start.
	ErrNotActive = errors.New("session.not_active")

	// ErrActive is returned by RequestID while the session is started.
	ErrActive = errors.New("session.already_active")

	// ErrDataBeforeStart is returned by Start when Data was assigned
	// on an inactive session.
	ErrDataBeforeStart = errors.New("session.data_before_start")

	ErrInvalidID = errors.New("session.invalid_id")

	// ErrHeadersSent is returned by the HTTP boundary once the response
	// status line has been written.
	ErrHeadersSent = errors.New("session.headers_sent")
)
