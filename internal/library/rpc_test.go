package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLibraryConnect_RoundTrip(t *testing.T) {
	buf := make([]byte, libraryConnectLen)
	want := LibraryConnect{LibraryID: 7, CorrelationID: 42, Nonce: 99999}
	n := want.Serialize(buf)
	assert.Equal(t, libraryConnectLen, n)

	got, err := DecodeLibraryConnect(buf)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApplicationHeartbeat_RoundTrip(t *testing.T) {
	buf := make([]byte, applicationHeartbeatLen)
	want := ApplicationHeartbeat{LibraryID: 7, CorrelationID: 42}
	want.Serialize(buf)

	got, err := DecodeApplicationHeartbeat(buf)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNotLeader_RoundTrip(t *testing.T) {
	want := NotLeader{LibraryID: 7, CorrelationID: 42, Channel: "engine-b"}
	buf := make([]byte, want.Len())
	want.Serialize(buf)

	got, err := DecodeNotLeader(buf)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNotLeader_EmptyChannel(t *testing.T) {
	want := NotLeader{LibraryID: 1, CorrelationID: 2, Channel: ""}
	buf := make([]byte, want.Len())
	want.Serialize(buf)

	got, err := DecodeNotLeader(buf)
	assert.NoError(t, err)
	assert.Equal(t, "", got.Channel)
}

func TestRequest_RoundTrip(t *testing.T) {
	want := Request{Type: TypeRequestSession, LibraryID: 3, CorrelationID: 5, Payload: []byte("session-a")}
	buf := make([]byte, want.Len())
	want.Serialize(buf)

	got, err := DecodeRequest(buf, TypeRequestSession)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReply_RoundTrip(t *testing.T) {
	want := Reply{Type: TypeRequestSessionReply, LibraryID: 3, CorrelationID: 5, Status: 1, Payload: []byte("ok")}
	buf := make([]byte, want.Len())
	want.Serialize(buf)

	got, err := DecodeReply(buf, TypeRequestSessionReply)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeLibraryConnect_WrongType(t *testing.T) {
	buf := make([]byte, applicationHeartbeatLen)
	ApplicationHeartbeat{LibraryID: 1, CorrelationID: 1}.Serialize(buf)
	_, err := DecodeLibraryConnect(buf)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRequest_TruncatedPayload(t *testing.T) {
	want := Request{Type: TypeInitiateConnection, LibraryID: 1, CorrelationID: 1, Payload: []byte("hello")}
	buf := make([]byte, want.Len())
	want.Serialize(buf)

	_, err := DecodeRequest(buf[:len(buf)-2], TypeInitiateConnection)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestIsReplyType(t *testing.T) {
	assert.True(t, isReplyType(TypeLogon))
	assert.True(t, isReplyType(TypeNewSentPosition))
	assert.False(t, isReplyType(TypeRequestSession))
	assert.False(t, isReplyType(TypeLibraryConnect))
}
