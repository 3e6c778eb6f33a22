// Package transporttest provides an in-process implementation of the
// transport package's Publication/Subscription contract, so consensus
// and library tests can exercise real back-pressure and fragment
// ordering without opening sockets.
package transporttest

import (
	"sync"

	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

type fragment struct {
	sessionID int32
	position  transport.Position
	data      []byte
}

// Network is a shared medium that fan-outs published fragments to
// every subscription attached to the same stream name, so tests can
// exercise multi-node scenarios without opening real sockets.
type Network struct {
	mu      sync.Mutex
	streams map[string]*stream
}

type stream struct {
	mu    sync.Mutex
	queue []fragment
	cap   int
}

// NewNetwork returns an empty loopback network.
func NewNetwork() *Network {
	return &Network{streams: make(map[string]*stream)}
}

func (n *Network) streamFor(name string) *stream {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.streams[name]
	if !ok {
		s = &stream{cap: 256}
		n.streams[name] = s
	}
	return s
}

// Publication publishes fragments onto a named stream under a fixed
// session id.
type Publication struct {
	stream    *stream
	sessionID int32
	position  int64
	closed    bool
	mu        sync.Mutex
}

// NewPublication returns a Publication bound to streamName on net,
// identifying itself to subscribers as sessionID.
func (n *Network) NewPublication(streamName string, sessionID int32) *Publication {
	return &Publication{stream: n.streamFor(streamName), sessionID: sessionID}
}

// SessionID returns this publication's session identifier.
func (p *Publication) SessionID() int32 { return p.sessionID }

// Offer enqueues data unless the stream's bounded queue is full, in
// which case it reports BackPressured so callers can exercise the
// same retry path a real saturated socket would trigger.
func (p *Publication) Offer(data []byte) (transport.Position, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return transport.BackPressured, transport.ErrClosed
	}
	p.mu.Unlock()

	p.stream.mu.Lock()
	defer p.stream.mu.Unlock()
	if len(p.stream.queue) >= p.stream.cap {
		return transport.BackPressured, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	p.position += int64(len(data))
	p.stream.queue = append(p.stream.queue, fragment{
		sessionID: p.sessionID,
		position:  transport.Position(p.position),
		data:      cp,
	})
	return transport.Position(p.position), nil
}

// Close marks the publication closed; further Offer calls fail.
func (p *Publication) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Subscription polls a named stream's shared queue. Every attached
// subscription observes every published fragment (broadcast
// semantics), matching a control/data stream fanned out to all
// cluster peers.
type Subscription struct {
	stream *stream
	cursor int
	closed bool
	mu     sync.Mutex
}

// NewSubscription returns a Subscription bound to streamName on net.
func (n *Network) NewSubscription(streamName string) *Subscription {
	return &Subscription{stream: n.streamFor(streamName)}
}

// Poll delivers up to fragmentLimit fragments this subscription has
// not yet seen. An ActionAbort return halts delivery for this call
// without advancing past the aborted fragment, so it is redelivered on
// the next Poll.
func (s *Subscription) Poll(handler transport.ControlledFragmentHandler, fragmentLimit int) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, transport.ErrClosed
	}
	s.mu.Unlock()

	s.stream.mu.Lock()
	pending := s.stream.queue[s.cursor:]
	if len(pending) > fragmentLimit {
		pending = pending[:fragmentLimit]
	}
	batch := make([]fragment, len(pending))
	copy(batch, pending)
	s.stream.mu.Unlock()

	delivered := 0
	for _, f := range batch {
		action := handler(f.sessionID, f.position, f.data)
		delivered++
		if action == transport.ActionAbort {
			break
		}
		s.mu.Lock()
		s.cursor++
		s.mu.Unlock()
	}
	return delivered, nil
}

// Close marks the subscription closed; further Poll calls fail.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
