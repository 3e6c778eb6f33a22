// Package session provides the stub SessionHandler contract that
// Follower and Leader feed accepted data fragments to. No FIX session
// state machine is implemented here; sessions are an external
// collaborator fed only byte slices and positions.
package session

// SessionHandler receives every data fragment accepted by a Follower
// or read from the archive by a Leader, identified by the emitting
// session and its end position on that session's stream.
type SessionHandler interface {
	OnMessage(sessionID int32, position int64, data []byte)
}

// NopSessionHandler discards every message. It is the default handler
// for a ClusterAgent that only needs to replicate, not interpret,
// the FIX stream.
type NopSessionHandler struct{}

// OnMessage does nothing.
func (NopSessionHandler) OnMessage(sessionID int32, position int64, data []byte) {}

// Delivery is one recorded call to RecordingSessionHandler.OnMessage.
type Delivery struct {
	SessionID int32
	Position  int64
	Data      []byte
}

// RecordingSessionHandler appends every delivered fragment to Deliveries,
// for use in tests that assert on what a Follower or Leader delivered.
type RecordingSessionHandler struct {
	Deliveries []Delivery
}

// OnMessage records the fragment.
func (h *RecordingSessionHandler) OnMessage(sessionID int32, position int64, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	h.Deliveries = append(h.Deliveries, Delivery{SessionID: sessionID, Position: position, Data: cp})
}
