package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

// pingreqBytes is the fixed, always-2-byte encoding of PINGREQ.
func pingreqBytes() []byte {
	return []byte{packet.Pingreq << 4, 0}
}

func TestYieldSendsPingreqWhenPingTimerExpires(t *testing.T) {
	network := &fakeNetwork{}
	timerFactory, issued := newFakeTimerFactory()
	s := NewSession()
	s.Init(network, fakeMutex{}, timerFactory, 5*time.Second, make([]byte, 512), make([]byte, 512))

	network.feed(connackBytes(false, packet.ConnectionAccepted))
	_, err := s.Connect(KeepAliveSeconds(60))
	require.NoError(t, err)
	network.sent = nil

	// issued[0] is pingTimer (the first timer Init asked for); force it
	// expired as if the keep-alive interval had elapsed.
	pingTimer := (*issued)[0]
	pingTimer.expire()

	err = s.Yield(0)
	require.NoError(t, err)
	require.Equal(t, pingreqBytes(), network.sent)
	require.True(t, s.pingOutstanding)
}

func TestPingrespClearsPingOutstanding(t *testing.T) {
	network := &fakeNetwork{}
	timerFactory, _ := newFakeTimerFactory()
	s := NewSession()
	s.Init(network, fakeMutex{}, timerFactory, 5*time.Second, make([]byte, 512), make([]byte, 512))

	network.feed(connackBytes(false, packet.ConnectionAccepted))
	_, err := s.Connect(KeepAliveSeconds(60))
	require.NoError(t, err)

	s.pingOutstanding = true
	network.feed([]byte{packet.Pingresp << 4, 0})

	err = s.Yield(0)
	require.NoError(t, err)
	require.False(t, s.pingOutstanding)
}

func TestKeepAliveTimeoutIsConnectionLost(t *testing.T) {
	network := &fakeNetwork{}
	timerFactory, issued := newFakeTimerFactory()
	s := NewSession()
	s.Init(network, fakeMutex{}, timerFactory, 5*time.Second, make([]byte, 512), make([]byte, 512))

	network.feed(connackBytes(false, packet.ConnectionAccepted))
	_, err := s.Connect(KeepAliveSeconds(60))
	require.NoError(t, err)

	s.pingOutstanding = true
	pingrespTimer := (*issued)[1]
	pingrespTimer.expire()

	err = s.Yield(0)
	require.ErrorIs(t, err, ErrConnectionLost)
	require.False(t, s.IsConnected())
}

func TestYieldReturnsImmediatelyWhenNotConnected(t *testing.T) {
	s, _, _ := newTestSession()

	err := s.Yield(time.Second)
	require.NoError(t, err)
}
