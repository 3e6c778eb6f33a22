package consensus

import "sort"

// PeerAckTable tracks the highest position each peer has acknowledged,
// as observed by the Leader role. It is reset on every election.
type PeerAckTable struct {
	acks map[NodeId]Position
}

// NewPeerAckTable returns an empty table.
func NewPeerAckTable() *PeerAckTable {
	return &PeerAckTable{acks: make(map[NodeId]Position)}
}

// Reset clears all recorded acknowledgements, used on a new election.
func (t *PeerAckTable) Reset() {
	for k := range t.acks {
		delete(t.acks, k)
	}
}

// Observe records ack as the position peer has acknowledged, if it is
// higher than what was previously recorded.
func (t *PeerAckTable) Observe(peer NodeId, ack Position) {
	if cur, ok := t.acks[peer]; !ok || ack > cur {
		t.acks[peer] = ack
	}
}

// Snapshot returns a copy of the current table, safe for a caller to
// retain past the next poll iteration.
func (t *PeerAckTable) Snapshot() map[NodeId]Position {
	out := make(map[NodeId]Position, len(t.acks))
	for k, v := range t.acks {
		out[k] = v
	}
	return out
}

// AcknowledgementStrategy computes a candidate commit position from a
// leader's own position and its peers' acknowledged positions. It is
// pluggable so that delivery guarantees other than simple majority
// quorum can be substituted without touching the Leader role.
type AcknowledgementStrategy func(self Position, peers map[NodeId]Position, clusterSize int) Position

// QuorumStrategy is the default AcknowledgementStrategy: the candidate
// commit position is the k-th highest position across the full
// membership (self included), where k = clusterSize/2 + 1, i.e. the
// highest position acknowledged by at least a majority of the cluster.
func QuorumStrategy(self Position, peers map[NodeId]Position, clusterSize int) Position {
	if clusterSize <= 0 {
		return self
	}
	positions := make([]Position, 0, clusterSize)
	positions = append(positions, self)
	for _, p := range peers {
		positions = append(positions, p)
	}
	// Peers with no ack yet are implicitly at position 0; pad up to
	// clusterSize so a quorum cannot be satisfied by absent peers.
	for len(positions) < clusterSize {
		positions = append(positions, 0)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] > positions[j] })
	quorum := clusterSize/2 + 1
	return positions[quorum-1]
}
