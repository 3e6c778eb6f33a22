package consensus

import (
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// Candidate solicits votes and, on reaching quorum, becomes Leader.
type Candidate struct {
	ctx   *RoleContext
	state *TermState

	electionTerm    Term
	grantedBy       map[NodeId]bool
	electionDeadline time.Time
}

// NewCandidate returns a Candidate bound to ctx and state. It must be
// Reset before its first poll to run its entry action.
func NewCandidate(ctx *RoleContext, state *TermState) *Candidate {
	return &Candidate{ctx: ctx, state: state, grantedBy: make(map[NodeId]bool)}
}

// Reset runs the Candidate's entry action: advance the term, vote for
// self, and broadcast RequestVote.
func (c *Candidate) Reset(now time.Time) {
	newTerm := c.state.Term() + 1
	c.state.StartElection(c.ctx.Self, newTerm)
	c.electionTerm = newTerm

	for k := range c.grantedBy {
		delete(c.grantedBy, k)
	}
	c.grantedBy[c.ctx.Self] = true

	c.electionDeadline = now.Add(c.ctx.randomizedTimeout())
	c.broadcastRequestVote()
}

func (c *Candidate) broadcastRequestVote() {
	rv := RequestVote{
		Term:         c.electionTerm,
		CandidateID:  c.ctx.Self,
		LastPosition: c.state.Position(),
	}
	c.ctx.sendControl(requestVoteLen, rv.Serialize)
}

// Poll runs one iteration: drain control traffic, then check whether
// the election deadline has elapsed.
func (c *Candidate) Poll(fragmentLimit int, now time.Time) Transition {
	transition := Stay
	handler := func(sessionID int32, position transport.Position, data []byte) transport.Action {
		if t := c.handleControl(data); t != Stay {
			transition = t
		}
		return transport.ActionContinue
	}
	c.ctx.ControlSub.Poll(handler, fragmentLimit)
	if transition != Stay {
		return transition
	}

	if now.After(c.electionDeadline) {
		return ToCandidate
	}
	return Stay
}

func (c *Candidate) handleControl(data []byte) Transition {
	msg, err := DecodeControlMessage(data)
	if err != nil {
		return Stay
	}
	switch msg.Type {
	case TypeReplyVote:
		return c.onReplyVote(msg.ReplyVote)
	case TypeHeartbeat:
		return c.onHeartbeat(msg.Heartbeat)
	case TypeRequestVote:
		return c.onRequestVote(msg.RequestVote)
	}
	return Stay
}

// onReplyVote tallies a vote and transitions to Leader once a quorum
// has granted for the current election term.
func (c *Candidate) onReplyVote(m ReplyVote) Transition {
	if m.Term != c.electionTerm || m.CandidateID != c.ctx.Self {
		return Stay
	}
	if m.VoteGranted {
		c.grantedBy[m.VoterID] = true
	}
	if len(c.grantedBy) >= c.ctx.quorumSize() {
		return ToLeader
	}
	return Stay
}

// onHeartbeat steps down to Follower on any heartbeat at or above the
// current election term.
func (c *Candidate) onHeartbeat(m Heartbeat) Transition {
	if m.Term >= c.electionTerm {
		c.state.ObserveTerm(m.Term)
		return ToFollower
	}
	return Stay
}

// onRequestVote steps down and grants per Follower rules when another
// candidate presents a higher term.
func (c *Candidate) onRequestVote(m RequestVote) Transition {
	if m.CandidateID == c.ctx.Self {
		return Stay
	}
	if m.Term > c.electionTerm {
		c.state.ObserveTerm(m.Term)
		granted := m.LastPosition >= c.state.Position() && c.state.TryVote(m.CandidateID)
		reply := ReplyVote{
			Term:        c.state.Term(),
			CandidateID: m.CandidateID,
			VoterID:     c.ctx.Self,
			VoteGranted: granted,
		}
		c.ctx.sendControl(replyVoteLen, reply.Serialize)
		return ToFollower
	}
	return Stay
}
