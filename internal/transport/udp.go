package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// maxDatagram bounds a single fragment to a size safe for unfragmented
// UDP delivery on typical LANs.
const maxDatagram = 1400

// UDPPublication offers fragments to a single UDP peer. Offer is
// non-blocking: a short write deadline turns kernel-buffer exhaustion
// into BackPressured rather than a stall.
type UDPPublication struct {
	conn      *net.UDPConn
	remote    *net.UDPAddr
	sessionID int32
	position  int64 // atomic

	mu     sync.Mutex
	closed bool
}

// NewUDPPublication wraps an already-bound UDP socket addressed at
// remote. sessionID is the identifier SessionID returns; it is not
// written into the datagrams, and a UDPSubscription identifies senders
// by their UDP port instead.
func NewUDPPublication(conn *net.UDPConn, remote *net.UDPAddr, sessionID int32) *UDPPublication {
	return &UDPPublication{conn: conn, remote: remote, sessionID: sessionID}
}

// SessionID returns the identifier given at construction.
func (p *UDPPublication) SessionID() int32 { return p.sessionID }

// Offer writes data as a single datagram. It never blocks longer than
// a nominal deadline; a full send buffer surfaces as BackPressured
// rather than an error.
func (p *UDPPublication) Offer(data []byte) (Position, error) {
	if len(data) > maxDatagram {
		return BackPressured, nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return BackPressured, ErrClosed
	}
	p.mu.Unlock()

	p.conn.SetWriteDeadline(time.Now().Add(2 * time.Millisecond))
	n, err := p.conn.WriteToUDP(data, p.remote)
	if err != nil || n < len(data) {
		return BackPressured, nil
	}
	newPos := atomic.AddInt64(&p.position, int64(n))
	return Position(newPos), nil
}

// Close releases the publication. The underlying socket is owned by
// the caller and is not closed here, since one socket typically backs
// several publications keyed by remote address.
func (p *UDPPublication) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// UDPSubscription polls a shared UDP socket for inbound datagrams and
// tracks a per-session position, mirroring the ordered, session-
// multiplexed delivery the consensus and library layers assume.
type UDPSubscription struct {
	conn *net.UDPConn

	mu        sync.Mutex
	positions map[int32]int64
	closed    bool
}

// NewUDPSubscription wraps conn for polling. Multiple remote senders
// may share one socket; sessions are keyed by the sender's UDP port.
func NewUDPSubscription(conn *net.UDPConn) *UDPSubscription {
	return &UDPSubscription{conn: conn, positions: make(map[int32]int64)}
}

func sessionFromAddr(addr *net.UDPAddr) int32 {
	return int32(addr.Port)
}

// Poll drains up to fragmentLimit pending datagrams, delivering each to
// handler. Each read waits at most about a millisecond, so a call with
// nothing pending returns after about that long. An ActionAbort return from the handler
// stops delivery for this call; the datagram itself is not requeued
// since UDP offers no such facility, but the caller is expected to
// rely on the control protocol's Resend/Ack framing for recovery
// rather than raw retransmission at the transport layer.
func (s *UDPSubscription) Poll(handler ControlledFragmentHandler, fragmentLimit int) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.mu.Unlock()

	buf := make([]byte, maxDatagram)
	delivered := 0
	for delivered < fragmentLimit {
		s.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			break
		}
		sessionID := sessionFromAddr(addr)

		s.mu.Lock()
		s.positions[sessionID] += int64(n)
		pos := s.positions[sessionID]
		s.mu.Unlock()

		fragment := make([]byte, n)
		copy(fragment, buf[:n])
		action := handler(sessionID, Position(pos), fragment)
		delivered++
		if action == ActionAbort {
			break
		}
	}
	return delivered, nil
}

// Close releases the subscription. As with UDPPublication, the socket
// itself is owned by the caller.
func (s *UDPSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
