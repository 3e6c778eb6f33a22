package transport

import "sync"

// FanoutPublication composes several point-to-point publications (one
// per cluster peer, typically UDPPublications sharing a local socket)
// into the single broadcast-capable Publication the consensus and
// library layers are written against. Offer is attempted against every
// member; the fragment is considered accepted if at least one member
// accepted it, so a single slow or unreachable peer never stalls
// progress against the rest of the cluster.
type FanoutPublication struct {
	sessionID int32

	mu       sync.Mutex
	members  []Publication
	position int64
	closed   bool
}

// NewFanoutPublication wraps members under sessionID, the identifier
// this publication reports to peers. members must be non-empty.
func NewFanoutPublication(sessionID int32, members ...Publication) *FanoutPublication {
	return &FanoutPublication{sessionID: sessionID, members: members}
}

// SessionID returns the identifier peers should associate with
// fragments offered through this publication.
func (f *FanoutPublication) SessionID() int32 { return f.sessionID }

// Offer presents data to every member. It returns BackPressured only
// when every member refused the fragment; a partial failure is
// tolerated on the assumption that the control protocol's own
// Resend/Ack framing recovers any peer that missed a fragment.
func (f *FanoutPublication) Offer(data []byte) (Position, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return BackPressured, ErrClosed
	}
	members := f.members
	f.mu.Unlock()

	accepted := false
	for _, m := range members {
		if pos, err := m.Offer(data); err == nil && pos != BackPressured {
			accepted = true
		}
	}
	if !accepted {
		return BackPressured, nil
	}

	f.mu.Lock()
	f.position += int64(len(data))
	pos := f.position
	f.mu.Unlock()
	return Position(pos), nil
}

// Close closes every member publication.
func (f *FanoutPublication) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	var firstErr error
	for _, m := range f.members {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
