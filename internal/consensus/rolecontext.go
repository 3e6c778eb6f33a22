package consensus

import (
	"math/rand"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/archive"
	"github.com/KilimcininKorOglu/fixcluster/internal/logging"
	"github.com/KilimcininKorOglu/fixcluster/internal/session"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
)

// RoleContext bundles everything a Follower, Candidate or Leader needs
// beyond its own private state. It is constructed once by ClusterAgent
// and shared by reference across all three pre-allocated roles, which
// avoids allocating per transition.
type RoleContext struct {
	Self        NodeId
	Peers       []NodeId
	ClusterSize int

	TimeoutInterval time.Duration

	ControlPub transport.Publication
	ControlSub transport.Subscription
	DataPub    transport.Publication
	DataSub    transport.Subscription

	Archiver      archive.Archiver
	ArchiveReader archive.ArchiveReader

	SessionHandler session.SessionHandler
	Log            logging.Logger

	AckStrategy AcknowledgementStrategy

	// ExpectedFragmentBytes bounds how far ahead of the follower's own
	// position a heartbeat's reported position may be before a Resend
	// is requested.
	ExpectedFragmentBytes int64

	// SnapshotThreshold is the byte gap beyond which the leader offers
	// a SnapshotOffer instead of a Resend.
	SnapshotThreshold int64

	Rand *rand.Rand
}

// randomizedTimeout returns a duration in [TimeoutInterval,
// 2*TimeoutInterval), jittered to keep simultaneous followers from
// starting elections in lockstep.
func (c *RoleContext) randomizedTimeout() time.Duration {
	jitter := time.Duration(c.Rand.Int63n(int64(c.TimeoutInterval)))
	return c.TimeoutInterval + jitter
}

func (c *RoleContext) quorumSize() int {
	return c.ClusterSize/2 + 1
}

// sendControl serializes and offers a control frame, logging but not
// failing the poll iteration when the offer errors or is back-pressured.
// A refused frame is dropped; it is not offered again.
func (c *RoleContext) sendControl(frameLen int, encode func([]byte) int) {
	buf := make([]byte, frameLen)
	encode(buf)
	if pos, err := c.ControlPub.Offer(buf); err != nil || pos == transport.BackPressured {
		c.Log.Warn("control offer failed", "node_id", c.Self, "err", err)
	}
}
