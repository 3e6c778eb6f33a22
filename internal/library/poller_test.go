package library_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KilimcininKorOglu/fixcluster/internal/library"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport"
	"github.com/KilimcininKorOglu/fixcluster/internal/transport/transporttest"
)

func newTestPoller(t *testing.T, net *transporttest.Network, channelNames []string, timeout time.Duration) *library.LibraryPoller {
	t.Helper()
	channels := make([]library.Channel, len(channelNames))
	for i, name := range channelNames {
		channels[i] = library.Channel{
			Name: name,
			Pub:  net.NewPublication(name+":lib", 1),
			Sub:  net.NewSubscription(name + ":engine"),
		}
	}
	p, err := library.NewLibraryPoller(library.PollerConfig{
		LibraryID:         1,
		Channels:          channels,
		ReplyTimeout:      timeout,
		ReconnectAttempts: 3,
	})
	assert.NoError(t, err)
	return p
}

// engineHandles gives a test direct access to the "engine side" of
// a channel, so it can observe LibraryConnect frames and inject
// ApplicationHeartbeat/NotLeader/Reply frames without a real engine.
func engineHandles(net *transporttest.Network, name string) (*transporttest.Publication, *transporttest.Subscription) {
	return net.NewPublication(name+":engine", 2), net.NewSubscription(name + ":lib")
}

func TestLibraryPoller_ConnectsOnHeartbeat(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 40 * time.Millisecond
	p := newTestPoller(t, net, []string{"a"}, timeout)
	enginePub, engineSub := engineHandles(net, "a")

	now := time.Now()
	err := p.Poll(16, now)
	assert.NoError(t, err)
	assert.False(t, p.Connected())

	// the engine observes the LibraryConnect and replies with a
	// heartbeat.
	var sawConnect bool
	engineSub.Poll(func(sessionID int32, position transport.Position, data []byte) transport.Action {
		typ, _ := library.PeekType(data)
		if typ == library.TypeLibraryConnect {
			sawConnect = true
		}
		return transport.ActionContinue
	}, 16)
	assert.True(t, sawConnect)

	buf := make([]byte, 20)
	library.ApplicationHeartbeat{LibraryID: 1, CorrelationID: 1}.Serialize(buf)
	_, err = enginePub.Offer(buf)
	assert.NoError(t, err)

	err = p.Poll(16, now.Add(time.Millisecond))
	assert.NoError(t, err)
	assert.True(t, p.Connected())
}

func TestLibraryPoller_RotatesChannelOnTimeout(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 20 * time.Millisecond
	p := newTestPoller(t, net, []string{"a", "b"}, timeout)

	now := time.Now()
	assert.Equal(t, "a", p.CurrentChannel())

	// silence on channel a for longer than reply_timeout forces a
	// round-robin rotation to b.
	for i := 0; i < int(timeout/time.Millisecond)+5; i++ {
		_ = p.Poll(16, now)
		now = now.Add(time.Millisecond)
	}
	assert.Equal(t, "b", p.CurrentChannel())
}

func TestLibraryPoller_UnableToConnectAfterExhaustingRotations(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 10 * time.Millisecond
	p := newTestPoller(t, net, []string{"a", "b"}, timeout)

	now := time.Now()
	var err error
	for i := 0; i < 200 && err == nil; i++ {
		err = p.Poll(16, now)
		now = now.Add(time.Millisecond)
	}
	assert.ErrorIs(t, err, library.ErrUnableToConnect)
}

func TestLibraryPoller_NotLeaderRedirect(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 40 * time.Millisecond
	p := newTestPoller(t, net, []string{"a", "b"}, timeout)
	enginePubA, _ := engineHandles(net, "a")

	now := time.Now()
	assert.Equal(t, "a", p.CurrentChannel())
	_ = p.Poll(16, now)

	buf := make([]byte, (library.NotLeader{LibraryID: 1, CorrelationID: 1, Channel: "b"}).Len())
	library.NotLeader{LibraryID: 1, CorrelationID: 1, Channel: "b"}.Serialize(buf)
	_, err := enginePubA.Offer(buf)
	assert.NoError(t, err)

	_ = p.Poll(16, now.Add(time.Millisecond))
	assert.Equal(t, "b", p.CurrentChannel())
	assert.False(t, p.Connected())
}

func TestLibraryPoller_RequestReplyRoundTrip(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 50 * time.Millisecond
	p := newTestPoller(t, net, []string{"a"}, timeout)
	enginePub, engineSub := engineHandles(net, "a")

	now := time.Now()
	_ = p.Poll(16, now)

	buf := make([]byte, 20)
	library.ApplicationHeartbeat{LibraryID: 1, CorrelationID: 1}.Serialize(buf)
	_, _ = enginePub.Offer(buf)
	_ = p.Poll(16, now)
	assert.True(t, p.Connected())

	corr, err := p.SendRequest(library.TypeRequestSession, []byte("s1"), now)
	assert.NoError(t, err)

	var gotReq library.Request
	engineSub.Poll(func(sessionID int32, position transport.Position, data []byte) transport.Action {
		typ, _ := library.PeekType(data)
		if typ == library.TypeRequestSession {
			gotReq, _ = library.DecodeRequest(data, library.TypeRequestSession)
		}
		return transport.ActionContinue
	}, 16)
	assert.Equal(t, corr, gotReq.CorrelationID)

	reply := library.Reply{Type: library.TypeRequestSessionReply, LibraryID: 1, CorrelationID: corr, Status: 1, Payload: []byte("ok")}
	replyBuf := make([]byte, reply.Len())
	reply.Serialize(replyBuf)
	_, err = enginePub.Offer(replyBuf)
	assert.NoError(t, err)

	_ = p.Poll(16, now)
	reply, ok, err := p.Reply(corr)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("ok"), reply.Payload)
}

func TestLibraryPoller_ReplyTimesOut(t *testing.T) {
	net := transporttest.NewNetwork()
	timeout := 20 * time.Millisecond
	p := newTestPoller(t, net, []string{"a"}, timeout)
	enginePub, _ := engineHandles(net, "a")

	now := time.Now()
	_ = p.Poll(16, now)
	buf := make([]byte, 20)
	library.ApplicationHeartbeat{LibraryID: 1, CorrelationID: 1}.Serialize(buf)
	_, _ = enginePub.Offer(buf)
	_ = p.Poll(16, now)

	corr, err := p.SendRequest(library.TypeReleaseSession, nil, now)
	assert.NoError(t, err)

	future := now.Add(timeout * 2)
	_ = p.Poll(16, future)

	_, ok, err := p.Reply(corr)
	assert.False(t, ok)
	assert.ErrorIs(t, err, library.ErrTimeout)
}
