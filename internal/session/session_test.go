package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KilimcininKorOglu/fixcluster/internal/session"
)

func TestNopSessionHandler_DiscardsMessages(t *testing.T) {
	var h session.NopSessionHandler
	assert.NotPanics(t, func() {
		h.OnMessage(1, 100, []byte("data"))
	})
}

func TestRecordingSessionHandler_RecordsDeliveries(t *testing.T) {
	h := &session.RecordingSessionHandler{}

	h.OnMessage(1, 100, []byte("first"))
	h.OnMessage(2, 200, []byte("second"))

	assert.Len(t, h.Deliveries, 2)
	assert.Equal(t, int32(1), h.Deliveries[0].SessionID)
	assert.Equal(t, int64(100), h.Deliveries[0].Position)
	assert.Equal(t, []byte("first"), h.Deliveries[0].Data)
}

func TestRecordingSessionHandler_CopiesData(t *testing.T) {
	h := &session.RecordingSessionHandler{}
	buf := []byte("mutable")
	h.OnMessage(1, 1, buf)

	buf[0] = 'X'
	assert.Equal(t, byte('m'), h.Deliveries[0].Data[0], "OnMessage must copy, not alias, the input slice")
}
