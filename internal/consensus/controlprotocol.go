package consensus

import "encoding/binary"

// Control message type tags. Every frame on the wire begins with the
// 4-byte header {Type, Version, Reserved} followed by type-specific
// little-endian fields.
const (
	TypeRequestVote uint8 = iota + 1
	TypeReplyVote
	TypeHeartbeat
	TypeAck
	TypeResend
	TypeSnapshotOffer
)

const controlVersion uint8 = 1
const headerLen = 4

// ControlMessage is the decoded form of any control frame. Exactly one
// of the typed fields is meaningful, selected by Type.
type ControlMessage struct {
	Type uint8

	RequestVote   RequestVote
	ReplyVote     ReplyVote
	Heartbeat     Heartbeat
	Ack           Ack
	Resend        Resend
	SnapshotOffer SnapshotOffer
}

func putHeader(buf []byte, msgType uint8) {
	buf[0] = msgType
	buf[1] = controlVersion
	binary.LittleEndian.PutUint16(buf[2:4], 0)
}

func checkHeader(buf []byte, wantType uint8) error {
	if len(buf) < headerLen {
		return ErrMalformedControl
	}
	if buf[0] != wantType {
		return ErrMalformedControl
	}
	return nil
}

// RequestVote is sent by a Candidate to solicit a vote. Wire size 18B.
type RequestVote struct {
	Term         Term
	CandidateID  NodeId
	LastPosition Position
}

const requestVoteLen = headerLen + 4 + 2 + 8 // 18

// Serialize encodes a RequestVote frame into buf[:18].
func (m RequestVote) Serialize(buf []byte) int {
	putHeader(buf, TypeRequestVote)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.CandidateID))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(m.LastPosition))
	return requestVoteLen
}

// DecodeRequestVote decodes a RequestVote frame.
func DecodeRequestVote(buf []byte) (RequestVote, error) {
	if err := checkHeader(buf, TypeRequestVote); err != nil {
		return RequestVote{}, err
	}
	if len(buf) < requestVoteLen {
		return RequestVote{}, ErrMalformedControl
	}
	return RequestVote{
		Term:         Term(binary.LittleEndian.Uint32(buf[4:8])),
		CandidateID:  NodeId(binary.LittleEndian.Uint16(buf[8:10])),
		LastPosition: Position(binary.LittleEndian.Uint64(buf[10:18])),
	}, nil
}

// ReplyVote is a Follower's or Candidate's response to RequestVote.
// CandidateID echoes the requester so the candidate can correlate
// this reply against its own in-flight election; VoterID identifies
// the node that cast (or withheld) the vote. Wire size 13B.
type ReplyVote struct {
	Term        Term
	CandidateID NodeId
	VoterID     NodeId
	VoteGranted bool
}

const replyVoteLen = headerLen + 4 + 2 + 2 + 1 // 13

// Serialize encodes a ReplyVote frame into buf[:13].
func (m ReplyVote) Serialize(buf []byte) int {
	putHeader(buf, TypeReplyVote)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.CandidateID))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(m.VoterID))
	if m.VoteGranted {
		buf[12] = 1
	} else {
		buf[12] = 0
	}
	return replyVoteLen
}

// DecodeReplyVote decodes a ReplyVote frame.
func DecodeReplyVote(buf []byte) (ReplyVote, error) {
	if err := checkHeader(buf, TypeReplyVote); err != nil {
		return ReplyVote{}, err
	}
	if len(buf) < replyVoteLen {
		return ReplyVote{}, ErrMalformedControl
	}
	return ReplyVote{
		Term:        Term(binary.LittleEndian.Uint32(buf[4:8])),
		CandidateID: NodeId(binary.LittleEndian.Uint16(buf[8:10])),
		VoterID:     NodeId(binary.LittleEndian.Uint16(buf[10:12])),
		VoteGranted: buf[12] != 0,
	}, nil
}

// Heartbeat is broadcast by the Leader to assert its term and advance
// followers' commit positions. Wire size 22B.
type Heartbeat struct {
	Term           Term
	LeaderID       NodeId
	LeaderSession  SessionId
	CommitPosition Position
}

const heartbeatLen = headerLen + 4 + 2 + 4 + 8 // 22

// Serialize encodes a Heartbeat frame into buf[:22].
func (m Heartbeat) Serialize(buf []byte) int {
	putHeader(buf, TypeHeartbeat)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.LeaderID))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(m.LeaderSession))
	binary.LittleEndian.PutUint64(buf[14:22], uint64(m.CommitPosition))
	return heartbeatLen
}

// DecodeHeartbeat decodes a Heartbeat frame.
func DecodeHeartbeat(buf []byte) (Heartbeat, error) {
	if err := checkHeader(buf, TypeHeartbeat); err != nil {
		return Heartbeat{}, err
	}
	if len(buf) < heartbeatLen {
		return Heartbeat{}, ErrMalformedControl
	}
	return Heartbeat{
		Term:           Term(binary.LittleEndian.Uint32(buf[4:8])),
		LeaderID:       NodeId(binary.LittleEndian.Uint16(buf[8:10])),
		LeaderSession:  SessionId(binary.LittleEndian.Uint32(buf[10:14])),
		CommitPosition: Position(binary.LittleEndian.Uint64(buf[14:22])),
	}, nil
}

// Ack is sent by a Follower to report the highest position it has
// durably applied. Wire size 18B.
type Ack struct {
	Term       Term
	FollowerID NodeId
	Position   Position
}

const ackLen = headerLen + 4 + 2 + 8 // 18

// Serialize encodes an Ack frame into buf[:18].
func (m Ack) Serialize(buf []byte) int {
	putHeader(buf, TypeAck)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.FollowerID))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(m.Position))
	return ackLen
}

// DecodeAck decodes an Ack frame.
func DecodeAck(buf []byte) (Ack, error) {
	if err := checkHeader(buf, TypeAck); err != nil {
		return Ack{}, err
	}
	if len(buf) < ackLen {
		return Ack{}, ErrMalformedControl
	}
	return Ack{
		Term:       Term(binary.LittleEndian.Uint32(buf[4:8])),
		FollowerID: NodeId(binary.LittleEndian.Uint16(buf[8:10])),
		Position:   Position(binary.LittleEndian.Uint64(buf[10:18])),
	}, nil
}

// Resend is sent by a Follower whose own position lags the commit
// position in a leader heartbeat by more than ExpectedFragmentBytes,
// asking for the byte range from StartPosition again. LeaderID carries
// the sending follower's own id. Wire size 22B.
type Resend struct {
	Term          Term
	LeaderID      NodeId
	StartPosition Position
	Length        int32
}

const resendLen = headerLen + 4 + 2 + 8 + 4 // 22

// Serialize encodes a Resend frame into buf[:22].
func (m Resend) Serialize(buf []byte) int {
	putHeader(buf, TypeResend)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.LeaderID))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(m.StartPosition))
	binary.LittleEndian.PutUint32(buf[18:22], uint32(m.Length))
	return resendLen
}

// DecodeResend decodes a Resend frame.
func DecodeResend(buf []byte) (Resend, error) {
	if err := checkHeader(buf, TypeResend); err != nil {
		return Resend{}, err
	}
	if len(buf) < resendLen {
		return Resend{}, ErrMalformedControl
	}
	return Resend{
		Term:          Term(binary.LittleEndian.Uint32(buf[4:8])),
		LeaderID:      NodeId(binary.LittleEndian.Uint16(buf[8:10])),
		StartPosition: Position(binary.LittleEndian.Uint64(buf[10:18])),
		Length:        int32(binary.LittleEndian.Uint32(buf[18:22])),
	}, nil
}

// SnapshotOffer is sent when a follower's acknowledged position lags
// the leader's by more than SnapshotThreshold: instead of replaying the
// archive range, the leader
// offers the follower a fresh base position to catch up from, to be
// fetched out-of-band (see archive.ArchiveReader). Wire size 16B.
type SnapshotOffer struct {
	Term        Term
	BasePosition Position
}

const snapshotOfferLen = headerLen + 4 + 8 // 16

// Serialize encodes a SnapshotOffer frame into buf[:16].
func (m SnapshotOffer) Serialize(buf []byte) int {
	putHeader(buf, TypeSnapshotOffer)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Term))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.BasePosition))
	return snapshotOfferLen
}

// DecodeSnapshotOffer decodes a SnapshotOffer frame.
func DecodeSnapshotOffer(buf []byte) (SnapshotOffer, error) {
	if err := checkHeader(buf, TypeSnapshotOffer); err != nil {
		return SnapshotOffer{}, err
	}
	if len(buf) < snapshotOfferLen {
		return SnapshotOffer{}, ErrMalformedControl
	}
	return SnapshotOffer{
		Term:         Term(binary.LittleEndian.Uint32(buf[4:8])),
		BasePosition: Position(binary.LittleEndian.Uint64(buf[8:16])),
	}, nil
}

// DecodeControlMessage dispatches on the header's type byte and
// decodes into the matching typed field.
func DecodeControlMessage(buf []byte) (ControlMessage, error) {
	if len(buf) < headerLen {
		return ControlMessage{}, ErrMalformedControl
	}
	switch buf[0] {
	case TypeRequestVote:
		v, err := DecodeRequestVote(buf)
		return ControlMessage{Type: TypeRequestVote, RequestVote: v}, err
	case TypeReplyVote:
		v, err := DecodeReplyVote(buf)
		return ControlMessage{Type: TypeReplyVote, ReplyVote: v}, err
	case TypeHeartbeat:
		v, err := DecodeHeartbeat(buf)
		return ControlMessage{Type: TypeHeartbeat, Heartbeat: v}, err
	case TypeAck:
		v, err := DecodeAck(buf)
		return ControlMessage{Type: TypeAck, Ack: v}, err
	case TypeResend:
		v, err := DecodeResend(buf)
		return ControlMessage{Type: TypeResend, Resend: v}, err
	case TypeSnapshotOffer:
		v, err := DecodeSnapshotOffer(buf)
		return ControlMessage{Type: TypeSnapshotOffer, SnapshotOffer: v}, err
	default:
		return ControlMessage{}, ErrMalformedControl
	}
}
