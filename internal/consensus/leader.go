package consensus

import (
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// Leader broadcasts heartbeats and advances the committed position
// once a quorum of followers have acknowledged it.
type Leader struct {
	ctx   *RoleContext
	state *TermState

	peerAck           *PeerAckTable
	heartbeatDeadline time.Time
	// publishedPosition tracks how far the archive has been forwarded
	// to the data publication, distinct from state.Position() which
	// tracks how far the archive has been durably appended by ingest.
	publishedPosition Position
}

// NewLeader returns a Leader bound to ctx and state.
func NewLeader(ctx *RoleContext, state *TermState) *Leader {
	return &Leader{ctx: ctx, state: state, peerAck: NewPeerAckTable()}
}

// Reset clears PeerAck and arms the first heartbeat, called by the
// agent on every transition into this role.
func (l *Leader) Reset(now time.Time) {
	l.peerAck.Reset()
	l.state.SetLeader(SessionId(l.ctx.Self))
	l.publishedPosition = l.state.CommitPosition()
	l.heartbeatDeadline = now
}

func (l *Leader) heartbeatCadence() time.Duration {
	return l.ctx.TimeoutInterval / 5
}

// Poll runs one iteration: drain control traffic, ingest locally
// submitted data into the archive, send a heartbeat if due, advance
// the commit position, and forward archive backlog to the data
// publication.
func (l *Leader) Poll(fragmentLimit int, now time.Time) Transition {
	transition := Stay
	handler := func(sessionID int32, position transport.Position, data []byte) transport.Action {
		if t := l.handleControl(data); t != Stay {
			transition = t
		}
		return transport.ActionContinue
	}
	l.ctx.ControlSub.Poll(handler, fragmentLimit)
	if transition != Stay {
		return transition
	}

	l.ctx.DataSub.Poll(l.handleData, fragmentLimit)

	if now.After(l.heartbeatDeadline) {
		l.broadcastHeartbeat()
		l.heartbeatDeadline = now.Add(l.heartbeatCadence())
	}

	l.advanceCommit()
	l.publishArchiveBacklog(fragmentLimit)
	return Stay
}

// handleData appends a locally submitted fragment to the archive and
// advances the leader's own position, the same ingest step a Follower
// performs on leader-forwarded data. It does not reply: the data
// originates locally, not from a peer awaiting an Ack.
func (l *Leader) handleData(sessionID int32, position transport.Position, data []byte) transport.Action {
	if l.ctx.Archiver == nil {
		return transport.ActionContinue
	}
	newPosition, err := l.ctx.Archiver.Append(data)
	if err != nil {
		l.ctx.Log.Warn("archive append failed", "node_id", l.ctx.Self, "err", err)
		return transport.ActionContinue
	}
	l.state.AdvancePosition(Position(newPosition))
	return transport.ActionContinue
}

func (l *Leader) broadcastHeartbeat() {
	hb := Heartbeat{
		Term:           l.state.Term(),
		LeaderID:       l.ctx.Self,
		LeaderSession:  SessionId(l.ctx.Self),
		CommitPosition: l.state.CommitPosition(),
	}
	l.ctx.sendControl(heartbeatLen, hb.Serialize)
}

// advanceCommit applies the configured acknowledgement strategy to the
// current peer-ack table and, on any resulting commit advance, notifies
// the archiver so the newly committed range is forced to stable
// storage rather than waiting for its own sync cadence.
func (l *Leader) advanceCommit() {
	candidate := l.ctx.AckStrategy(l.state.Position(), l.peerAck.Snapshot(), l.ctx.ClusterSize)
	if l.state.AdvanceCommit(candidate) {
		if l.ctx.Archiver != nil {
			if err := l.ctx.Archiver.Sync(); err != nil {
				l.ctx.Log.Warn("archive sync failed", "node_id", l.ctx.Self, "err", err)
			}
		}
		l.ctx.Log.Debug("commit advanced", "node_id", l.ctx.Self, "commit_position", l.state.CommitPosition())
	}
}

// publishArchiveBacklog reads as much archive-durable data as possible
// and hands it to the data publication and the SessionHandler, capped
// to fragmentLimit bytes per iteration.
func (l *Leader) publishArchiveBacklog(fragmentLimit int) {
	if l.ctx.ArchiveReader == nil || l.ctx.DataPub == nil {
		return
	}
	if l.publishedPosition >= l.state.Position() {
		return
	}

	data, err := l.ctx.ArchiveReader.ReadFrom(int64(l.publishedPosition), fragmentLimit)
	if err != nil || len(data) == 0 {
		return
	}
	pos, err := l.ctx.DataPub.Offer(data)
	if err != nil {
		l.ctx.Log.Warn("data offer failed", "node_id", l.ctx.Self, "err", err)
		return
	}
	if pos == transport.BackPressured {
		return
	}
	l.publishedPosition += Position(len(data))
	leaderSession, _ := l.state.Leader()
	l.ctx.SessionHandler.OnMessage(int32(leaderSession), int64(l.publishedPosition), data)
}

func (l *Leader) handleControl(data []byte) Transition {
	msg, err := DecodeControlMessage(data)
	if err != nil {
		return Stay
	}
	switch msg.Type {
	case TypeAck:
		l.onAck(msg.Ack)
	case TypeRequestVote:
		return l.onRequestVote(msg.RequestVote)
	case TypeHeartbeat:
		return l.onHeartbeat(msg.Heartbeat)
	}
	return Stay
}

// onAck records a follower's acknowledged position and checks whether
// a bounded snapshot offer should replace an unbounded resend.
func (l *Leader) onAck(m Ack) {
	if m.Term != l.state.Term() {
		return
	}
	l.peerAck.Observe(m.FollowerID, m.Position)
	l.maybeSnapshot(m.FollowerID, m.Position)
}

// maybeSnapshot is the bounded-snapshot decision point: if the gap
// between the leader's position and a follower's acknowledged
// position exceeds SnapshotThreshold, offer a snapshot base instead of
// letting a Resend replay the whole gap.
func (l *Leader) maybeSnapshot(follower NodeId, followerPosition Position) bool {
	if l.ctx.SnapshotThreshold <= 0 {
		return false
	}
	gap := int64(l.state.Position() - followerPosition)
	if gap <= l.ctx.SnapshotThreshold {
		return false
	}
	offer := SnapshotOffer{
		Term:         l.state.Term(),
		BasePosition: l.state.Position(),
	}
	l.ctx.sendControl(snapshotOfferLen, offer.Serialize)
	return true
}

// onRequestVote steps down when a candidate presents a higher term.
func (l *Leader) onRequestVote(m RequestVote) Transition {
	if m.Term <= l.state.Term() {
		return Stay
	}
	l.state.ObserveTerm(m.Term)
	return ToFollower
}

// onHeartbeat steps down when another leader with a strictly higher
// term is observed.
func (l *Leader) onHeartbeat(m Heartbeat) Transition {
	if m.Term <= l.state.Term() {
		return Stay
	}
	l.state.ObserveTerm(m.Term)
	return ToFollower
}
