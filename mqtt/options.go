package mqtt

import (
	"fmt"

	"github.com/lithammer/shortuuid"
)

// ConnectOptions describes a CONNECT request. ClientID is set directly
// rather than through NewSession/ClientID the way the teacher's
// SessionOptions did, since the spec's connect operation owns the whole
// CONNECT payload, not just the client identifier.
type ConnectOptions struct {
	ClientID         string
	CleanSession     bool
	KeepAliveSeconds int
	WillTopic        string
	WillMessage      []byte
	WillQoS          byte
	WillRetain       bool
	UserName         string
	HasUserName      bool
	Password         []byte
	HasPassword      bool
}

// ConnectOption is an options-modifying function, in the style of the
// teacher's ConnectOption/PublishOption builders.
type ConnectOption func(*ConnectOptions)

// DefaultConnectOptions returns a clean-session CONNECT with a 60 second
// keep-alive and a random client id — mirrors the teacher's
// DefaultConnectOptions, but with RandomClientID() already applied since
// the spec has no notion of the session supplying a name separately.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		ClientID:         RandomClientID(),
		CleanSession:     true,
		KeepAliveSeconds: 60,
	}
}

// RandomClientID returns a random client identifier suitable for
// ConnectOptions.ClientID. A Base-57-encoded short UUID, as in the
// teacher's RandomClientID.
func RandomClientID() string {
	return shortuuid.New()
}

// ClientID returns a ConnectOption setting the client identifier.
func ClientID(value string) ConnectOption {
	return func(o *ConnectOptions) { o.ClientID = value }
}

// CleanSession returns a ConnectOption for the clean-session flag.
func CleanSession(flag bool) ConnectOption {
	return func(o *ConnectOptions) { o.CleanSession = flag }
}

// KeepAliveSeconds returns a ConnectOption for the keep-alive interval. A
// value of 0 disables ping.
func KeepAliveSeconds(value int) ConnectOption {
	if value < 0 || value > 0xFFFF {
		panic(fmt.Sprintf("KeepAliveSeconds must be in range 0-65535, got %d", value))
	}
	return func(o *ConnectOptions) { o.KeepAliveSeconds = value }
}

// WillTopic returns a ConnectOption setting the last-will topic.
func WillTopic(value string) ConnectOption {
	return func(o *ConnectOptions) { o.WillTopic = value }
}

// WillMessage returns a ConnectOption setting the last-will payload.
func WillMessage(value []byte) ConnectOption {
	return func(o *ConnectOptions) { o.WillMessage = value }
}

// WillQoS returns a ConnectOption setting the last-will QoS.
func WillQoS(value byte) ConnectOption {
	if value > 2 {
		panic(fmt.Sprintf("WillQoS must be 0, 1, or 2, got %d", value))
	}
	return func(o *ConnectOptions) { o.WillQoS = value }
}

// WillRetain returns a ConnectOption setting the last-will retain flag.
func WillRetain(flag bool) ConnectOption {
	return func(o *ConnectOptions) { o.WillRetain = flag }
}

// UserName returns a ConnectOption supplying a user name.
func UserName(value string) ConnectOption {
	return func(o *ConnectOptions) {
		o.UserName = value
		o.HasUserName = true
	}
}

// Password returns a ConnectOption supplying a password. Requires UserName
// to also be set, per the MQTT spec (a password without a user name is not
// valid on the wire); neither this option nor the codec checks that.
func Password(value []byte) ConnectOption {
	return func(o *ConnectOptions) {
		o.Password = value
		o.HasPassword = true
	}
}

// MessageHandler is invoked synchronously, under the session mutex, for
// every inbound PUBLISH. It must not call back into the session's public
// API — the mutex is not reentrant.
type MessageHandler func(topic string, payload []byte)
