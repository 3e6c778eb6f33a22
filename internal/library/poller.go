package library

import (
	"math/rand"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/logging"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// Channel is one configured engine endpoint a library can address.
// Name identifies it for NotLeader redirects; Pub/Sub are the
// transport handles bound to that endpoint.
type Channel struct {
	Name string
	Pub  transport.Publication
	Sub  transport.Subscription
}

// PollerConfig configures a LibraryPoller at construction.
type PollerConfig struct {
	LibraryID         uint64
	Channels          []Channel
	ReplyTimeout      time.Duration
	ReconnectAttempts int
	Log               logging.Logger
	Rand              *rand.Rand
}

func (c PollerConfig) validate() error {
	if len(c.Channels) == 0 {
		return ErrConfigInvalid
	}
	if c.ReplyTimeout <= 0 {
		return ErrConfigInvalid
	}
	if c.ReconnectAttempts <= 0 {
		return ErrConfigInvalid
	}
	return nil
}

type pendingReply struct {
	correlationID  uint64
	requestType    uint8
	frame          []byte
	deadline       time.Time
	requiresResend bool
	resolved       bool
	reply          Reply
}

// LibraryPoller drives the client side of the reconnection protocol:
// a bootstrap connect loop against an ordered list of engine channels,
// NotLeader-driven failover, and a correlation-id keyed request/reply
// table with per-reply deadlines. It is single-threaded: Poll must be
// called from one goroutine at a fixed cadence, per the cooperative
// polling model the rest of the module follows.
type LibraryPoller struct {
	cfg PollerConfig
	log logging.Logger
	rnd *rand.Rand

	currentChannel int
	rotations      int

	connected           bool
	connectCorrelation  uint64
	connectAttemptStart time.Time
	lastConnectSent     time.Time

	nextCorrelationID uint64
	pending           map[uint64]*pendingReply
}

// NewLibraryPoller constructs a poller in the disconnected state,
// addressing the first configured channel.
func NewLibraryPoller(cfg PollerConfig) (*LibraryPoller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Log
	if log == nil {
		log = logging.NewNop()
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(int64(cfg.LibraryID) + 1))
	}

	p := &LibraryPoller{
		cfg:               cfg,
		log:               log,
		rnd:               rnd,
		nextCorrelationID: rnd.Uint64()>>1 + 1, // nonzero, reduces cross-restart collisions
		pending:           make(map[uint64]*pendingReply),
	}
	return p, nil
}

// Connected reports whether the connect loop has observed liveness on
// the current channel.
func (p *LibraryPoller) Connected() bool { return p.connected }

// CurrentChannel returns the name of the channel currently addressed.
func (p *LibraryPoller) CurrentChannel() string {
	return p.cfg.Channels[p.currentChannel].Name
}

func (p *LibraryPoller) nextID() uint64 {
	id := p.nextCorrelationID
	p.nextCorrelationID++
	return id
}

func (p *LibraryPoller) channel() Channel {
	return p.cfg.Channels[p.currentChannel]
}

// rotate advances to the next configured channel, round-robin.
func (p *LibraryPoller) rotate() {
	p.currentChannel = (p.currentChannel + 1) % len(p.cfg.Channels)
	p.rotations++
	p.connected = false
}

// redirectTo switches to the named channel immediately, without
// counting it against the rotation budget: an engine actively telling
// the library who the leader is a stronger signal than a bare timeout.
func (p *LibraryPoller) redirectTo(name string) {
	for i, ch := range p.cfg.Channels {
		if ch.Name == name {
			p.currentChannel = i
			p.connected = false
			return
		}
	}
	p.log.Warn("library: NotLeader named unknown channel, rotating", "channel", name)
	p.rotate()
}

// Poll drives one iteration: if not yet connected, advances the
// connect loop against the current channel; otherwise polls the
// current channel's subscription for heartbeats, redirects, and
// replies, and expires any pending reply past its deadline.
//
// Returns ErrUnableToConnect once reconnectAttempts rotations have all
// failed to observe liveness.
func (p *LibraryPoller) Poll(fragmentLimit int, now time.Time) error {
	if !p.connected {
		return p.pollConnect(fragmentLimit, now)
	}
	p.pollChannel(fragmentLimit)
	p.expirePending(now)
	return nil
}

func (p *LibraryPoller) pollConnect(fragmentLimit int, now time.Time) error {
	if p.connectAttemptStart.IsZero() {
		p.connectAttemptStart = now
	}
	if now.Sub(p.connectAttemptStart) > p.cfg.ReplyTimeout {
		if p.rotations >= p.cfg.ReconnectAttempts {
			return ErrUnableToConnect
		}
		p.rotate()
		p.connectAttemptStart = now
		p.lastConnectSent = time.Time{}
	}

	if p.lastConnectSent.IsZero() || now.Sub(p.lastConnectSent) >= p.cfg.ReplyTimeout/4 {
		p.connectCorrelation = p.nextID()
		buf := make([]byte, libraryConnectLen)
		LibraryConnect{
			LibraryID:     p.cfg.LibraryID,
			CorrelationID: p.connectCorrelation,
			Nonce:         p.rnd.Uint64(),
		}.Serialize(buf)
		if _, err := p.channel().Pub.Offer(buf); err != nil {
			p.log.Warn("library: connect offer failed", "channel", p.CurrentChannel(), "err", err)
		}
		p.lastConnectSent = now
	}

	p.channel().Sub.Poll(func(sessionID int32, position transport.Position, data []byte) transport.Action {
		typ, err := PeekType(data)
		if err != nil {
			return transport.ActionContinue
		}
		switch typ {
		case TypeApplicationHeartbeat:
			hb, err := DecodeApplicationHeartbeat(data)
			if err == nil && hb.LibraryID == p.cfg.LibraryID {
				p.connected = true
				p.rotations = 0
			}
		case TypeNotLeader:
			nl, err := DecodeNotLeader(data)
			if err == nil && nl.LibraryID == p.cfg.LibraryID {
				if nl.Channel == "" {
					p.rotate()
				} else {
					p.redirectTo(nl.Channel)
				}
				p.connectAttemptStart = time.Time{}
				p.lastConnectSent = time.Time{}
			}
		}
		return transport.ActionContinue
	}, fragmentLimit)

	return nil
}

func (p *LibraryPoller) pollChannel(fragmentLimit int) {
	p.channel().Sub.Poll(func(sessionID int32, position transport.Position, data []byte) transport.Action {
		typ, err := PeekType(data)
		if err != nil {
			return transport.ActionContinue
		}
		switch typ {
		case TypeApplicationHeartbeat:
			// steady-state liveness; nothing to correlate.
		case TypeNotLeader:
			nl, err := DecodeNotLeader(data)
			if err == nil && nl.LibraryID == p.cfg.LibraryID {
				delete(p.pending, nl.CorrelationID)
				if nl.Channel == "" {
					p.rotate()
				} else {
					p.redirectTo(nl.Channel)
				}
			}
		default:
			if isReplyType(typ) {
				reply, err := DecodeReply(data, typ)
				if err != nil {
					return transport.ActionContinue
				}
				if pr, ok := p.pending[reply.CorrelationID]; ok {
					pr.resolved = true
					pr.reply = reply
				}
			}
		}
		return transport.ActionContinue
	}, fragmentLimit)
}

func (p *LibraryPoller) expirePending(now time.Time) {
	for id, pr := range p.pending {
		if pr.resolved {
			continue
		}
		if pr.requiresResend {
			if pos, err := p.channel().Pub.Offer(pr.frame); err == nil && pos != transport.BackPressured {
				pr.requiresResend = false
			}
			continue
		}
		if now.After(pr.deadline) {
			delete(p.pending, id)
		}
	}
}

// SendRequest issues a session-lifecycle request (InitiateConnection,
// ReleaseSession, RequestSession, ManageConnection) on the current
// channel, registering a pending reply keyed by a fresh correlation
// id. If the publication is back-pressured, the frame is retried on
// the next Poll instead of being dropped.
func (p *LibraryPoller) SendRequest(reqType uint8, payload []byte, now time.Time) (uint64, error) {
	correlationID := p.nextID()
	req := Request{Type: reqType, LibraryID: p.cfg.LibraryID, CorrelationID: correlationID, Payload: payload}
	buf := make([]byte, req.Len())
	req.Serialize(buf)

	pr := &pendingReply{
		correlationID: correlationID,
		requestType:   reqType,
		frame:         buf,
		deadline:      now.Add(p.cfg.ReplyTimeout),
	}
	if pos, err := p.channel().Pub.Offer(buf); err != nil || pos == transport.BackPressured {
		pr.requiresResend = true
	}
	p.pending[correlationID] = pr
	return correlationID, nil
}

// Reply reports the outcome of a previously sent request: (reply,
// true, nil) once resolved, (zero, false, nil) while still pending,
// or (zero, false, ErrTimeout) once its deadline has passed and it
// has been removed from the table.
func (p *LibraryPoller) Reply(correlationID uint64) (Reply, bool, error) {
	pr, ok := p.pending[correlationID]
	if !ok {
		return Reply{}, false, ErrTimeout
	}
	if !pr.resolved {
		return Reply{}, false, nil
	}
	delete(p.pending, correlationID)
	return pr.reply, true, nil
}
