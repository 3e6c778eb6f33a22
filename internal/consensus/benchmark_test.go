package consensus

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/KilimcininKorOglu/fixcluster/internal/archive"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport/transporttest"
)

func newBenchmarkAgent(b *testing.B) (*ClusterAgent, func()) {
	b.Helper()
	net := transporttest.NewNetwork()
	fileArchive, err := archive.NewFileArchive(filepath.Join(b.TempDir(), "node-1.archive"), 0)
	if err != nil {
		b.Fatalf("NewFileArchive: %v", err)
	}
	cfg := AgentConfig{
		NodeID:          1,
		Peers:           []NodeId{2, 3},
		TimeoutInterval: time.Second,
		FragmentLimit:   64,
		ControlPub:      net.NewPublication("control", 1),
		ControlSub:      net.NewSubscription("control"),
		DataPub:         net.NewPublication("data", 1),
		DataSub:         net.NewSubscription("data"),
		Archiver:        fileArchive,
		ArchiveReader:   fileArchive,
		Seed:            1,
	}
	agent, err := NewClusterAgent(cfg)
	if err != nil {
		b.Fatalf("NewClusterAgent: %v", err)
	}
	return agent, func() { fileArchive.Close() }
}

func benchmarkClock() time.Time {
	return time.Unix(0, 0)
}

// BenchmarkControlMessageRoundTrip benchmarks serializing a Heartbeat
// and decoding it back through DecodeControlMessage. Target: < 500 ns.
func BenchmarkControlMessageRoundTrip(b *testing.B) {
	buf := make([]byte, heartbeatLen)
	hb := Heartbeat{Term: 7, LeaderID: 1, LeaderSession: 100, CommitPosition: 4096}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		hb.Serialize(buf)
		if _, err := DecodeControlMessage(buf); err != nil {
			b.Fatalf("DecodeControlMessage: %v", err)
		}
	}
}

// BenchmarkClusterAgentPoll benchmarks a single node's steady-state
// Follower.Poll iteration with no pending control or data traffic.
// Target: 100,000+ iterations/s.
func BenchmarkClusterAgentPoll(b *testing.B) {
	agent, cleanup := newBenchmarkAgent(b)
	defer cleanup()

	now := benchmarkClock()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		agent.Poll(now)
	}
}
