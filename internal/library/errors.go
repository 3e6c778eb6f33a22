package library

import "errors"

var (
	// ErrMalformed is returned when an RPC frame has an unknown type
	// tag or is shorter than its declared length. The frame is dropped.
	ErrMalformed = errors.New("library: malformed rpc frame")

	// ErrUnableToConnect is returned once reconnectAttempts channel
	// rotations in total have passed without observing liveness.
	ErrUnableToConnect = errors.New("library: unable to connect to any engine channel")

	// ErrTimeout is returned when a pending reply's deadline elapses
	// before a matching reply is observed.
	ErrTimeout = errors.New("library: reply timed out")

	// ErrConfigInvalid is returned when mandatory configuration is
	// missing at construction.
	ErrConfigInvalid = errors.New("library: invalid configuration")
)
