package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlProtocol_RoundTrip(t *testing.T) {
	t.Run("RequestVote", func(t *testing.T) {
		buf := make([]byte, requestVoteLen)
		want := RequestVote{Term: 4, CandidateID: 2, LastPosition: 1024}
		n := want.Serialize(buf)
		assert.Equal(t, requestVoteLen, n)

		got, err := DecodeRequestVote(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("ReplyVote", func(t *testing.T) {
		buf := make([]byte, replyVoteLen)
		want := ReplyVote{Term: 4, CandidateID: 2, VoterID: 3, VoteGranted: true}
		want.Serialize(buf)

		got, err := DecodeReplyVote(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Heartbeat", func(t *testing.T) {
		buf := make([]byte, heartbeatLen)
		want := Heartbeat{Term: 7, LeaderID: 1, LeaderSession: 42, CommitPosition: 99}
		want.Serialize(buf)

		got, err := DecodeHeartbeat(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Ack", func(t *testing.T) {
		buf := make([]byte, ackLen)
		want := Ack{Term: 7, FollowerID: 2, Position: 1500}
		want.Serialize(buf)

		got, err := DecodeAck(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Resend", func(t *testing.T) {
		buf := make([]byte, resendLen)
		want := Resend{Term: 7, LeaderID: 1, StartPosition: 100, Length: 256}
		want.Serialize(buf)

		got, err := DecodeResend(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("SnapshotOffer", func(t *testing.T) {
		buf := make([]byte, snapshotOfferLen)
		want := SnapshotOffer{Term: 7, BasePosition: 99999}
		want.Serialize(buf)

		got, err := DecodeSnapshotOffer(buf)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestDecodeControlMessage_Dispatch(t *testing.T) {
	buf := make([]byte, heartbeatLen)
	Heartbeat{Term: 1, LeaderID: 1, LeaderSession: 1, CommitPosition: 1}.Serialize(buf)

	msg, err := DecodeControlMessage(buf)
	assert.NoError(t, err)
	assert.Equal(t, TypeHeartbeat, msg.Type)
	assert.Equal(t, Term(1), msg.Heartbeat.Term)
}

func TestDecodeControlMessage_UnknownType(t *testing.T) {
	buf := make([]byte, headerLen)
	buf[0] = 0xFF
	_, err := DecodeControlMessage(buf)
	assert.ErrorIs(t, err, ErrMalformedControl)
}

func TestDecodeControlMessage_TooShort(t *testing.T) {
	_, err := DecodeControlMessage([]byte{TypeHeartbeat})
	assert.ErrorIs(t, err, ErrMalformedControl)
}

func TestDecodeRequestVote_WrongType(t *testing.T) {
	buf := make([]byte, ackLen)
	Ack{Term: 1, FollowerID: 1, Position: 1}.Serialize(buf)
	_, err := DecodeRequestVote(buf)
	assert.ErrorIs(t, err, ErrMalformedControl)
}
