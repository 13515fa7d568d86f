package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

func connectedSession(t *testing.T) (*Session, *fakeNetwork) {
	t.Helper()
	s, network, _ := newTestSession()
	network.feed(connackBytes(false, packet.ConnectionAccepted))
	_, err := s.Connect()
	require.NoError(t, err)
	network.sent = nil
	return s, network
}

func ackBytes(packetType byte, id uint16) []byte {
	buf := make([]byte, 8)
	n, err := packet.EncodeAck(buf, packetType, id)
	if err != nil {
		panic(err)
	}
	return buf[:n]
}

func TestPublishQoS0SendsExactBytesAndReturnsImmediately(t *testing.T) {
	s, network := connectedSession(t)

	err := s.Publish("a/b", []byte("hi"), packet.QoS0, false)
	require.NoError(t, err)
	require.Equal(t, []byte{packet.Publish << 4, 7, 0, 3, 'a', '/', 'b', 'h', 'i'}, network.sent)
}

func TestPublishQoS1WaitsForPuback(t *testing.T) {
	s, network := connectedSession(t)
	// nextID() has not been called yet this session beyond Connect (which
	// does not consume one), so the first QoS>0 publish gets id 2 per the
	// counter's increment-before-use starting at 1.
	network.feed(ackBytes(packet.Puback, 2))

	err := s.Publish("t", []byte("x"), packet.QoS1, false)
	require.NoError(t, err)
	require.Equal(t, []byte{packet.Publish<<4 | packet.QoS1<<1, 6, 0, 1, 't', 0, 2, 'x'}, network.sent)
}

func TestPublishQoS2DrivesPubrecPubrelPubcompHandshake(t *testing.T) {
	s, network := connectedSession(t)
	network.feed(ackBytes(packet.Pubrec, 2))
	network.feed(ackBytes(packet.Pubcomp, 2))

	err := s.Publish("t", []byte("x"), packet.QoS2, false)
	require.NoError(t, err)

	// The session must have replied to PUBREC with PUBREL before
	// Publish returns.
	wantPubrel := ackBytes(packet.Pubrel, 2)
	require.Contains(t, string(network.sent), string(wantPubrel))
}

func TestPublishAckIDMismatchStillReportsSuccess(t *testing.T) {
	// The session matches an inbound ack against the packet type it is
	// waiting for, not against the packet id — a broker reply carrying an
	// unexpected id is still accepted.
	s, network := connectedSession(t)
	network.feed(ackBytes(packet.Puback, 999))

	err := s.Publish("t", []byte("x"), packet.QoS1, false)
	require.NoError(t, err)
}

func TestPublishNotConnectedFails(t *testing.T) {
	s, _, _ := newTestSession()

	err := s.Publish("t", []byte("x"), packet.QoS0, false)
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestPublishInvalidQoSPanics(t *testing.T) {
	s, _ := connectedSession(t)
	require.Panics(t, func() {
		_ = s.Publish("t", []byte("x"), 3, false)
	})
}

func TestInboundPublishInvokesMessageHandlerAndAcksQoS1(t *testing.T) {
	s, network := connectedSession(t)

	var gotTopic string
	var gotPayload []byte
	s.SetMessageHandler(func(topic string, payload []byte) {
		gotTopic = topic
		gotPayload = payload
	})

	buf := make([]byte, 64)
	n, err := packet.EncodePublish(buf, false, packet.QoS1, false, 5, "in/bound", []byte("payload"))
	require.NoError(t, err)
	network.feed(buf[:n])

	err = s.Yield(0)
	require.NoError(t, err)
	require.Equal(t, "in/bound", gotTopic)
	require.Equal(t, []byte("payload"), gotPayload)
	require.Equal(t, ackBytes(packet.Puback, 5), network.sent)
}
