package consensus_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/fixcluster/internal/archive"
	"github.com/KilimcininKorOglu/fixcluster/internal/consensus"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport/transporttest"
)

func newThreeNodeCluster(t *testing.T, timeoutInterval time.Duration) []*consensus.ClusterAgent {
	t.Helper()
	net := transporttest.NewNetwork()
	ids := []consensus.NodeId{1, 2, 3}

	agents := make([]*consensus.ClusterAgent, 0, 3)
	for _, id := range ids {
		var peers []consensus.NodeId
		for _, other := range ids {
			if other != id {
				peers = append(peers, other)
			}
		}
		fileArchive, err := archive.NewFileArchive(filepath.Join(t.TempDir(), fmt.Sprintf("node-%d.archive", id)), 0)
		require.NoError(t, err)
		t.Cleanup(func() { fileArchive.Close() })

		cfg := consensus.AgentConfig{
			NodeID:          id,
			Peers:           peers,
			TimeoutInterval: timeoutInterval,
			FragmentLimit:   64,
			ControlPub:      net.NewPublication("control", int32(id)),
			ControlSub:      net.NewSubscription("control"),
			DataPub:         net.NewPublication("data", int32(id)),
			DataSub:         net.NewSubscription("data"),
			Archiver:        fileArchive,
			ArchiveReader:   fileArchive,
			Seed:            int64(id) * 7919,
		}
		agent, err := consensus.NewClusterAgent(cfg)
		assert.NoError(t, err)
		agents = append(agents, agent)
	}
	return agents
}

// runUntil advances a simulated clock in small steps, polling every
// agent each step, until check returns true or the deadline elapses.
func runUntil(agents []*consensus.ClusterAgent, start time.Time, deadline time.Duration, check func() bool) time.Time {
	now := start
	step := time.Millisecond
	for elapsed := time.Duration(0); elapsed < deadline; elapsed += step {
		for _, a := range agents {
			a.Poll(now)
		}
		if check() {
			return now
		}
		now = now.Add(step)
	}
	return now
}

func countLeaders(agents []*consensus.ClusterAgent) int {
	n := 0
	for _, a := range agents {
		if a.Role() == consensus.RoleLeader {
			n++
		}
	}
	return n
}

// TestThreeNodeElection: within 3x timeout_interval, exactly one
// leader exists at term >= 1.
func TestThreeNodeElection(t *testing.T) {
	timeout := 20 * time.Millisecond
	agents := newThreeNodeCluster(t, timeout)
	start := time.Now()

	runUntil(agents, start, 3*timeout, func() bool {
		return countLeaders(agents) == 1
	})

	assert.Equal(t, 1, countLeaders(agents), "exactly one leader must emerge")

	var leaderTerm consensus.Term
	for _, a := range agents {
		if a.Role() == consensus.RoleLeader {
			leaderTerm = a.Status().Term
		}
	}
	assert.GreaterOrEqual(t, int32(leaderTerm), int32(1))

	// Every node reports a non-negative term.
	for _, a := range agents {
		assert.GreaterOrEqual(t, int32(a.Status().Term), int32(0))
	}
}

// TestLeaderFailure: once a leader is established and steps away
// (stops being polled), a new leader emerges among the survivors at a
// strictly higher term.
func TestLeaderFailure(t *testing.T) {
	timeout := 20 * time.Millisecond
	agents := newThreeNodeCluster(t, timeout)
	start := time.Now()

	now := runUntil(agents, start, 3*timeout, func() bool {
		return countLeaders(agents) == 1
	})
	assert.Equal(t, 1, countLeaders(agents))

	var firstTerm consensus.Term
	var survivors []*consensus.ClusterAgent
	for _, a := range agents {
		if a.Role() == consensus.RoleLeader {
			firstTerm = a.Status().Term
		} else {
			survivors = append(survivors, a)
		}
	}

	runUntil(survivors, now, 3*timeout, func() bool {
		return countLeaders(survivors) == 1
	})

	assert.Equal(t, 1, countLeaders(survivors), "a new leader must emerge among the survivors")
	for _, a := range survivors {
		if a.Role() == consensus.RoleLeader {
			assert.Greater(t, int32(a.Status().Term), int32(firstTerm))
		}
	}
}

// TestVoteSafety exercises property P7: across a run, no node ever
// reports having voted for two different candidates within what the
// test observes to be the same term.
func TestVoteSafety(t *testing.T) {
	timeout := 15 * time.Millisecond
	agents := newThreeNodeCluster(t, timeout)
	start := time.Now()

	type voteKey struct {
		node consensus.NodeId
		term consensus.Term
	}
	seen := make(map[voteKey]consensus.NodeId)
	runUntil(agents, start, 4*timeout, func() bool {
		for _, a := range agents {
			status := a.Status()
			if !status.HasVoted {
				continue
			}
			key := voteKey{status.NodeID, status.Term}
			if prior, ok := seen[key]; ok {
				assert.Equal(t, prior, status.VotedFor, "node must not vote for two different candidates in one term")
			} else {
				seen[key] = status.VotedFor
			}
		}
		return false
	})
}
