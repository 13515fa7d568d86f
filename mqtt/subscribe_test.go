package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

func subackBytes(id uint16, grantedQoS byte) []byte {
	return []byte{packet.Suback << 4, 0x03, byte(id >> 8), byte(id), grantedQoS}
}

func unsubackBytes(id uint16) []byte {
	return []byte{packet.Unsuback << 4, 0x02, byte(id >> 8), byte(id)}
}

func TestSubscribeReturnsGrantedQoS(t *testing.T) {
	s, network := connectedSession(t)
	network.feed(subackBytes(2, packet.QoS1))

	granted, err := s.Subscribe("a/+", packet.QoS1)
	require.NoError(t, err)
	require.Equal(t, packet.QoS1, granted)

	want := []byte{packet.Subscribe<<4 | 0x02, 8, 0, 2, 0, 3, 'a', '/', '+', packet.QoS1}
	require.Equal(t, want, network.sent)
}

func TestSubscribeRefusedReturnsFailureCode(t *testing.T) {
	s, network := connectedSession(t)
	network.feed(subackBytes(2, packet.SubscribeFailure))

	granted, err := s.Subscribe("a/+", packet.QoS1)
	require.NoError(t, err)
	require.Equal(t, packet.SubscribeFailure, granted)
}

func TestUnsubscribeWaitsForUnsuback(t *testing.T) {
	s, network := connectedSession(t)
	network.feed(unsubackBytes(2))

	err := s.Unsubscribe("a/+")
	require.NoError(t, err)

	want := []byte{packet.Unsubscribe<<4 | 0x02, 7, 0, 2, 0, 3, 'a', '/', '+'}
	require.Equal(t, want, network.sent)
}

func TestSubscribeNotConnectedFails(t *testing.T) {
	s, _, _ := newTestSession()

	_, err := s.Subscribe("a/+", packet.QoS0)
	require.ErrorIs(t, err, ErrNotConnected)
}
