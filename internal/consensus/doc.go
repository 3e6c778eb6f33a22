// Package consensus implements the Raft-style role state machine that
// replicates a FIX message stream across a cluster of engine nodes.
//
// # Architecture
//
// A cluster consists of engine nodes, each running a ClusterAgent that
// owns exactly one of three pre-allocated roles at a time:
//
//   - Follower applies leader data to the local archive and acknowledges
//     positions.
//   - Candidate solicits votes and, on reaching quorum, becomes Leader.
//   - Leader ingests locally submitted data into the archive, broadcasts
//     heartbeats, and advances the committed position once a quorum of
//     followers have acknowledged it.
//
// All three roles are driven by a single cooperative poll loop; there is
// no blocking I/O and no locking within a poll iteration. Role
// transitions never allocate: the agent pre-allocates all three roles at
// construction and swaps a single "current" pointer between them.
//
// # Usage
//
//	agent, err := consensus.NewClusterAgent(consensus.AgentConfig{
//	    NodeID:          1,
//	    Peers:           peers,
//	    TimeoutInterval: 150 * time.Millisecond,
//	    FragmentLimit:   64,
//	    ControlPub:      controlPub,
//	    ControlSub:      controlSub,
//	    DataPub:         dataPub,
//	    DataSub:         dataSub,
//	    Archiver:        archiver,
//	    ArchiveReader:   archiveReader,
//	    SessionHandler:  sessionHandler,
//	    Log:             logger,
//	})
//
//	for {
//	    agent.Poll(time.Now())
//	    idleStrategy.Idle(0)
//	}
//
// # References
//
//   - Raft Paper: https://raft.github.io/raft.pdf
package consensus
