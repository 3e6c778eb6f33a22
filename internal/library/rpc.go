package library

import "encoding/binary"

// RPC message type tags. Every frame shares the 4-byte header
// {Type, Version, Reserved} used by the control protocol, followed by
// library_id:u64, correlation_id:u64, and type-specific fields in
// little-endian.
const (
	TypeLibraryConnect uint8 = iota + 1
	TypeInitiateConnection
	TypeReleaseSession
	TypeRequestSession
	TypeManageConnection
	TypeLogon
	TypeDisconnect
	TypeError
	TypeApplicationHeartbeat
	TypeRequestSessionReply
	TypeReleaseSessionReply
	TypeCatchup
	TypeNewSentPosition
	TypeNotLeader
)

const rpcVersion uint8 = 1
const headerLen = 4
const commonLen = 8 + 8 // library_id + correlation_id

func putHeader(buf []byte, msgType uint8) {
	buf[0] = msgType
	buf[1] = rpcVersion
	binary.LittleEndian.PutUint16(buf[2:4], 0)
}

func checkHeader(buf []byte, wantType uint8, minLen int) error {
	if len(buf) < minLen {
		return ErrMalformed
	}
	if buf[0] != wantType {
		return ErrMalformed
	}
	return nil
}

func putCommon(buf []byte, libraryID, correlationID uint64) {
	binary.LittleEndian.PutUint64(buf[4:12], libraryID)
	binary.LittleEndian.PutUint64(buf[12:20], correlationID)
}

func getCommon(buf []byte) (libraryID, correlationID uint64) {
	return binary.LittleEndian.Uint64(buf[4:12]), binary.LittleEndian.Uint64(buf[12:20])
}

// LibraryConnect is sent by a library to announce itself to an engine
// and request liveness. Wire size 28B.
type LibraryConnect struct {
	LibraryID     uint64
	CorrelationID uint64
	Nonce         uint64
}

const libraryConnectLen = headerLen + commonLen + 8 // 28

// Serialize encodes a LibraryConnect frame into buf[:28].
func (m LibraryConnect) Serialize(buf []byte) int {
	putHeader(buf, TypeLibraryConnect)
	putCommon(buf, m.LibraryID, m.CorrelationID)
	binary.LittleEndian.PutUint64(buf[20:28], m.Nonce)
	return libraryConnectLen
}

// DecodeLibraryConnect decodes a LibraryConnect frame.
func DecodeLibraryConnect(buf []byte) (LibraryConnect, error) {
	if err := checkHeader(buf, TypeLibraryConnect, libraryConnectLen); err != nil {
		return LibraryConnect{}, err
	}
	lib, corr := getCommon(buf)
	return LibraryConnect{
		LibraryID:     lib,
		CorrelationID: corr,
		Nonce:         binary.LittleEndian.Uint64(buf[20:28]),
	}, nil
}

// ApplicationHeartbeat is the liveness signal an engine emits once a
// library is recognized; its presence on the inbound subscription is
// what the connect loop waits for. Wire size 20B.
type ApplicationHeartbeat struct {
	LibraryID     uint64
	CorrelationID uint64
}

const applicationHeartbeatLen = headerLen + commonLen // 20

// Serialize encodes an ApplicationHeartbeat frame into buf[:20].
func (m ApplicationHeartbeat) Serialize(buf []byte) int {
	putHeader(buf, TypeApplicationHeartbeat)
	putCommon(buf, m.LibraryID, m.CorrelationID)
	return applicationHeartbeatLen
}

// DecodeApplicationHeartbeat decodes an ApplicationHeartbeat frame.
func DecodeApplicationHeartbeat(buf []byte) (ApplicationHeartbeat, error) {
	if err := checkHeader(buf, TypeApplicationHeartbeat, applicationHeartbeatLen); err != nil {
		return ApplicationHeartbeat{}, err
	}
	lib, corr := getCommon(buf)
	return ApplicationHeartbeat{LibraryID: lib, CorrelationID: corr}, nil
}

// NotLeader is an engine's reply to any request it cannot service
// because it is not the current cluster leader. An empty Channel
// means the library should simply rotate to the next configured
// channel; a non-empty one names the channel to address instead.
type NotLeader struct {
	LibraryID     uint64
	CorrelationID uint64
	Channel       string
}

const notLeaderFixedLen = headerLen + commonLen + 2 // + channel_len:u16

// Len reports the encoded size of this frame in bytes.
func (m NotLeader) Len() int {
	return notLeaderFixedLen + len(m.Channel)
}

// Serialize encodes the frame into buf[:m.Len()].
func (m NotLeader) Serialize(buf []byte) int {
	putHeader(buf, TypeNotLeader)
	putCommon(buf, m.LibraryID, m.CorrelationID)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(m.Channel)))
	copy(buf[22:22+len(m.Channel)], m.Channel)
	return m.Len()
}

// DecodeNotLeader decodes a NotLeader frame.
func DecodeNotLeader(buf []byte) (NotLeader, error) {
	if err := checkHeader(buf, TypeNotLeader, notLeaderFixedLen); err != nil {
		return NotLeader{}, err
	}
	lib, corr := getCommon(buf)
	channelLen := int(binary.LittleEndian.Uint16(buf[20:22]))
	if len(buf) < notLeaderFixedLen+channelLen {
		return NotLeader{}, ErrMalformed
	}
	channel := string(buf[22 : 22+channelLen])
	return NotLeader{LibraryID: lib, CorrelationID: corr, Channel: channel}, nil
}

// Request is the generic envelope for the session-lifecycle requests
// a library issues once connected: InitiateConnection, ReleaseSession,
// RequestSession, ManageConnection. Their FIX-session-specific payload
// is opaque here (the session state machine is an external
// collaborator); only the correlation envelope is interpreted.
type Request struct {
	Type          uint8
	LibraryID     uint64
	CorrelationID uint64
	Payload       []byte
}

const requestFixedLen = headerLen + commonLen + 2 // + payload_len:u16

// Len reports the encoded size of this request.
func (m Request) Len() int { return requestFixedLen + len(m.Payload) }

// Serialize encodes the frame into buf[:m.Len()].
func (m Request) Serialize(buf []byte) int {
	putHeader(buf, m.Type)
	putCommon(buf, m.LibraryID, m.CorrelationID)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(m.Payload)))
	copy(buf[22:22+len(m.Payload)], m.Payload)
	return m.Len()
}

// DecodeRequest decodes a Request frame of the given expected type.
func DecodeRequest(buf []byte, wantType uint8) (Request, error) {
	if err := checkHeader(buf, wantType, requestFixedLen); err != nil {
		return Request{}, err
	}
	lib, corr := getCommon(buf)
	payloadLen := int(binary.LittleEndian.Uint16(buf[20:22]))
	if len(buf) < requestFixedLen+payloadLen {
		return Request{}, ErrMalformed
	}
	payload := make([]byte, payloadLen)
	copy(payload, buf[22:22+payloadLen])
	return Request{Type: wantType, LibraryID: lib, CorrelationID: corr, Payload: payload}, nil
}

// Reply is the generic envelope for every message that echoes a
// request's CorrelationID: Logon, Disconnect, Error,
// RequestSessionReply, ReleaseSessionReply, Catchup, NewSentPosition.
type Reply struct {
	Type          uint8
	LibraryID     uint64
	CorrelationID uint64
	Status        uint8
	Payload       []byte
}

const replyFixedLen = headerLen + commonLen + 1 + 2 // + status:u8, payload_len:u16

// Len reports the encoded size of this reply.
func (m Reply) Len() int { return replyFixedLen + len(m.Payload) }

// Serialize encodes the frame into buf[:m.Len()].
func (m Reply) Serialize(buf []byte) int {
	putHeader(buf, m.Type)
	putCommon(buf, m.LibraryID, m.CorrelationID)
	buf[20] = m.Status
	binary.LittleEndian.PutUint16(buf[21:23], uint16(len(m.Payload)))
	copy(buf[23:23+len(m.Payload)], m.Payload)
	return m.Len()
}

// DecodeReply decodes a Reply frame of the given expected type.
func DecodeReply(buf []byte, wantType uint8) (Reply, error) {
	if err := checkHeader(buf, wantType, replyFixedLen); err != nil {
		return Reply{}, err
	}
	lib, corr := getCommon(buf)
	status := buf[20]
	payloadLen := int(binary.LittleEndian.Uint16(buf[21:23]))
	if len(buf) < replyFixedLen+payloadLen {
		return Reply{}, ErrMalformed
	}
	payload := make([]byte, payloadLen)
	copy(payload, buf[23:23+payloadLen])
	return Reply{Type: wantType, LibraryID: lib, CorrelationID: corr, Status: status, Payload: payload}, nil
}

// PeekType reads a frame's type discriminator without fully decoding
// it, so a caller can route to the right Decode* function.
func PeekType(buf []byte) (uint8, error) {
	if len(buf) < headerLen {
		return 0, ErrMalformed
	}
	return buf[0], nil
}

func isReplyType(t uint8) bool {
	switch t {
	case TypeLogon, TypeDisconnect, TypeError, TypeRequestSessionReply,
		TypeReleaseSessionReply, TypeCatchup, TypeNewSentPosition:
		return true
	default:
		return false
	}
}
