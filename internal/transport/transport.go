// Package transport defines the non-blocking publication/subscription
// contract the consensus and library layers are built against, plus a
// UDP-backed implementation.
package transport

import "errors"

// Position is the byte offset returned by a successful Offer, echoing
// consensus.Position without creating an import cycle.
type Position int64

// BackPressured is the sentinel Position returned by Offer when the
// underlying media could not accept the fragment. The publication keeps
// no copy: the fragment is sent only if the caller offers it again on a
// later poll.
const BackPressured Position = -1

// ErrClosed is returned by Offer/Poll once the publication or
// subscription has been closed.
var ErrClosed = errors.New("transport: closed")

// Action is returned by a ControlledFragmentHandler to tell the
// subscription whether a fragment was consumed.
type Action uint8

const (
	// ActionContinue consumes the fragment; polling proceeds to the
	// next one.
	ActionContinue Action = iota
	// ActionAbort leaves the fragment for re-delivery on the next
	// poll, signalling back-pressure from the consuming layer.
	ActionAbort
)

// ControlledFragmentHandler processes one fragment delivered by
// Subscription.Poll. sessionID identifies the emitting peer; position
// is the fragment's end position on that session's stream.
type ControlledFragmentHandler func(sessionID int32, position Position, data []byte) Action

// Publication offers byte fragments to a session-multiplexed stream.
// Offer never blocks: it either enqueues data and returns the
// resulting Position, or returns BackPressured immediately.
type Publication interface {
	Offer(data []byte) (Position, error)
	SessionID() int32
	Close() error
}

// Subscription delivers fragments published to a stream. Poll
// processes at most fragmentLimit fragments per call and returns how
// many were delivered to the handler (an ActionAbort still counts as
// delivered, since the handler observed it).
type Subscription interface {
	Poll(handler ControlledFragmentHandler, fragmentLimit int) (int, error)
	Close() error
}
