package consensus

import (
	"math/rand"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/archive"
	"github.com/KilimcininKorOglu/fixcluster/internal/logging"
	"github.com/KilimcininKorOglu/fixcluster/internal/session"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// AgentConfig configures a ClusterAgent at construction.
type AgentConfig struct {
	NodeID          NodeId
	Peers           []NodeId
	TimeoutInterval time.Duration
	FragmentLimit   int

	ControlPub transport.Publication
	ControlSub transport.Subscription
	DataPub    transport.Publication
	DataSub    transport.Subscription

	Archiver      archive.Archiver
	ArchiveReader archive.ArchiveReader

	SessionHandler session.SessionHandler
	Log            logging.Logger

	AckStrategy       AcknowledgementStrategy
	SnapshotThreshold int64

	// Seed makes election-timeout jitter reproducible in tests; 0
	// seeds from the node id so distinct nodes still diverge.
	Seed int64
}

// Validate checks that mandatory fields are present.
func (c AgentConfig) Validate() error {
	if c.TimeoutInterval <= 0 {
		return ErrConfigInvalid
	}
	if c.FragmentLimit <= 0 {
		return ErrConfigInvalid
	}
	if c.ControlPub == nil || c.ControlSub == nil {
		return ErrConfigInvalid
	}
	if len(c.Peers)+1 < 1 {
		return ErrConfigInvalid
	}
	return nil
}

// ClusterAgent owns TermState and the three pre-allocated roles
// (Follower, Candidate, Leader), driving whichever is current through
// a single cooperative poll loop.
type ClusterAgent struct {
	nodeID        NodeId
	fragmentLimit int
	state         *TermState
	ctx           *RoleContext

	role     RoleKind
	follower *Follower
	candidate *Candidate
	leader   *Leader

	sessionHandler session.SessionHandler
}

// NewClusterAgent constructs an agent in its initial state: Follower,
// term 0, no vote, with the first heartbeat deadline armed a randomized
// one to two timeout intervals out.
func NewClusterAgent(cfg AgentConfig) (*ClusterAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ackStrategy := cfg.AckStrategy
	if ackStrategy == nil {
		ackStrategy = QuorumStrategy
	}
	sh := cfg.SessionHandler
	if sh == nil {
		sh = session.NopSessionHandler{}
	}
	log := cfg.Log
	if log == nil {
		log = logging.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = int64(cfg.NodeID) + 1
	}

	state := NewTermState()
	ctx := &RoleContext{
		Self:                  cfg.NodeID,
		Peers:                 cfg.Peers,
		ClusterSize:           len(cfg.Peers) + 1,
		TimeoutInterval:       cfg.TimeoutInterval,
		ControlPub:            cfg.ControlPub,
		ControlSub:            cfg.ControlSub,
		DataPub:               cfg.DataPub,
		DataSub:               cfg.DataSub,
		Archiver:              cfg.Archiver,
		ArchiveReader:         cfg.ArchiveReader,
		SessionHandler:        sh,
		Log:                   log,
		AckStrategy:           ackStrategy,
		ExpectedFragmentBytes: 4096,
		SnapshotThreshold:     cfg.SnapshotThreshold,
		Rand:                  rand.New(rand.NewSource(seed)),
	}

	agent := &ClusterAgent{
		nodeID:         cfg.NodeID,
		fragmentLimit:  cfg.FragmentLimit,
		state:          state,
		ctx:            ctx,
		role:           RoleFollower,
		follower:       NewFollower(ctx, state),
		candidate:      NewCandidate(ctx, state),
		leader:         NewLeader(ctx, state),
		sessionHandler: sh,
	}
	// Arm the first follower timeout relative to construction time, so
	// the first election fires no sooner than one timeout interval
	// after the agent starts polling.
	agent.follower.Reset(time.Now())
	return agent, nil
}

// Poll drives whichever role is current for one iteration and applies
// any resulting transition. TermState updates always precede the role
// swap so an externally observed term never regresses.
func (a *ClusterAgent) Poll(now time.Time) {
	var transition Transition
	switch a.role {
	case RoleFollower:
		transition = a.follower.Poll(a.fragmentLimit, now)
	case RoleCandidate:
		transition = a.candidate.Poll(a.fragmentLimit, now)
	case RoleLeader:
		transition = a.leader.Poll(a.fragmentLimit, now)
	}

	switch transition {
	case ToFollower:
		a.role = RoleFollower
		a.follower.Reset(now)
	case ToCandidate:
		a.role = RoleCandidate
		a.candidate.Reset(now)
	case ToLeader:
		a.role = RoleLeader
		a.leader.Reset(now)
	case Stay:
		// no-op
	}
}

// Status returns a read-only snapshot of externally observable state,
// safe to call between poll iterations under the single-threaded
// discipline.
func (a *ClusterAgent) Status() StatusSnapshot {
	term, position, commit, hasLeader, leader, hasVoted, votedFor := a.state.snapshot()
	snap := StatusSnapshot{
		NodeID:          a.nodeID,
		Role:            a.role,
		Term:            term,
		Position:        position,
		CommitPosition:  commit,
		HasLeader:       hasLeader,
		LeaderSessionID: leader,
		HasVoted:        hasVoted,
		VotedFor:        votedFor,
	}
	if a.role == RoleLeader {
		snap.PeerAck = a.leader.peerAck.Snapshot()
	}
	return snap
}

// Role reports which role is currently active.
func (a *ClusterAgent) Role() RoleKind { return a.role }
