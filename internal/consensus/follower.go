package consensus

import (
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// Follower applies leader data to the local archive and acknowledges
// positions.
type Follower struct {
	ctx   *RoleContext
	state *TermState

	nextReceiveTime   time.Time
	receivedHeartbeat bool
	pendingResend     bool
}

// NewFollower returns a Follower bound to ctx and state. It must be
// Reset before its first poll.
func NewFollower(ctx *RoleContext, state *TermState) *Follower {
	return &Follower{ctx: ctx, state: state}
}

// Reset re-arms the follower's heartbeat timeout, called by the agent
// on every transition into this role.
func (f *Follower) Reset(now time.Time) {
	f.nextReceiveTime = now.Add(f.ctx.randomizedTimeout())
	f.receivedHeartbeat = false
	f.pendingResend = false
}

// Poll runs one iteration: drain control and data traffic, then check
// whether the heartbeat deadline has elapsed.
func (f *Follower) Poll(fragmentLimit int, now time.Time) Transition {
	f.pendingResend = false
	f.ctx.ControlSub.Poll(f.handleControl, fragmentLimit)
	f.ctx.DataSub.Poll(f.handleData, fragmentLimit)

	if f.receivedHeartbeat {
		f.nextReceiveTime = now.Add(f.ctx.randomizedTimeout())
		f.receivedHeartbeat = false
	}

	if now.After(f.nextReceiveTime) {
		return ToCandidate
	}
	return Stay
}

func (f *Follower) handleData(sessionID int32, position transport.Position, data []byte) transport.Action {
	if f.ctx.Archiver != nil {
		if _, err := f.ctx.Archiver.Append(data); err != nil {
			f.ctx.Log.Warn("archive append failed", "node_id", f.ctx.Self, "err", err)
		}
	}
	f.ctx.SessionHandler.OnMessage(sessionID, int64(position), data)
	f.state.AdvancePosition(Position(position))

	ack := Ack{
		Term:       f.state.Term(),
		FollowerID: f.ctx.Self,
		Position:   Position(position),
	}
	f.ctx.sendControl(ackLen, ack.Serialize)
	return transport.ActionContinue
}

func (f *Follower) handleControl(sessionID int32, position transport.Position, data []byte) transport.Action {
	msg, err := DecodeControlMessage(data)
	if err != nil {
		f.ctx.Log.Debug("malformed control frame dropped", "node_id", f.ctx.Self)
		return transport.ActionContinue
	}
	switch msg.Type {
	case TypeHeartbeat:
		f.onHeartbeat(msg.Heartbeat)
	case TypeRequestVote:
		f.onRequestVote(msg.RequestVote)
	case TypeResend:
		// Resend requests come from other followers; not this role's concern.
	}
	return transport.ActionContinue
}

// onHeartbeat records the leader's term and commit position, and
// requests a resend if the gap to the follower's own position has
// grown too wide.
func (f *Follower) onHeartbeat(m Heartbeat) {
	if f.state.ObserveTerm(m.Term) == TermStale {
		return
	}
	f.state.SetLeader(m.LeaderSession)
	f.receivedHeartbeat = true

	if int64(m.CommitPosition) > int64(f.state.Position())+f.ctx.ExpectedFragmentBytes {
		f.requestResend(m.Term)
	}
	f.state.AdvanceCommit(m.CommitPosition)
}

// requestResend is idempotent per poll iteration; a fresh heartbeat
// gap re-arms it on the next call.
func (f *Follower) requestResend(term Term) {
	if f.pendingResend {
		return
	}
	f.pendingResend = true
	resend := Resend{
		Term:          term,
		LeaderID:      f.ctx.Self,
		StartPosition: f.state.Position(),
		Length:        int32(f.ctx.ExpectedFragmentBytes),
	}
	f.ctx.sendControl(resendLen, resend.Serialize)
}

// onRequestVote applies the standard vote-granting rule: reject a
// stale term outright, otherwise grant only if the candidate's last
// known position is at least as advanced as this follower's and no
// vote has yet been cast this term.
func (f *Follower) onRequestVote(m RequestVote) {
	transition := f.state.ObserveTerm(m.Term)
	if transition == TermStale {
		f.reply(m, false)
		return
	}

	granted := m.LastPosition >= f.state.Position() && f.state.TryVote(m.CandidateID)
	f.reply(m, granted)
}

func (f *Follower) reply(m RequestVote, granted bool) {
	reply := ReplyVote{
		Term:        f.state.Term(),
		CandidateID: m.CandidateID,
		VoterID:     f.ctx.Self,
		VoteGranted: granted,
	}
	f.ctx.sendControl(replyVoteLen, reply.Serialize)
}
