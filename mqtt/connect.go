package mqtt

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

// Connect sends CONNECT and waits for CONNACK. If already connected, it
// fails fast with ErrAlreadyConnected. On rc=0 it sets connected=true and
// returns (0, nil); on a non-zero broker return code it returns (rc, nil)
// so callers can distinguish a broker rejection from a call failure; any
// other failure returns (0, err).
func (s *Session) Connect(opts ...ConnectOption) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.connected {
		return 0, ErrAlreadyConnected
	}

	options := DefaultConnectOptions()
	for _, opt := range opts {
		opt(&options)
	}

	timer := s.newTimer()
	timer.Countdown(s.commandTimeout)

	s.pingOutstanding = false
	s.keepAlive = time.Duration(options.KeepAliveSeconds) * time.Second
	s.pingTimer.Countdown(s.keepAlive)

	wireOptions := packet.ConnectOptions{
		ClientID:         options.ClientID,
		CleanSession:     options.CleanSession,
		KeepAliveSeconds: uint16(options.KeepAliveSeconds),
		UserName:         options.UserName,
		HasUserName:      options.HasUserName,
		Password:         options.Password,
		HasPassword:      options.HasPassword,
		WillTopic:        options.WillTopic,
		WillMessage:      options.WillMessage,
		WillQoS:          options.WillQoS,
		WillRetain:       options.WillRetain,
		HasWill:          options.WillTopic != "",
	}

	n, err := packet.EncodeConnect(s.sendBuf, wireOptions)
	if err != nil {
		return 0, ErrFailure
	}

	log.Debugf("Broker <- CONNECT(%s)", options.ClientID)
	if err := s.sendPacket(n, timer); err != nil {
		return 0, err
	}

	if err := s.waitFor(packet.Connack, timer); err != nil {
		return 0, err
	}

	_, code, err := packet.DecodeConnack(s.recvBody)
	if err != nil {
		return 0, ErrFailure
	}
	if code != packet.ConnectionAccepted {
		log.Warnf("Broker -> CONNACK rejected: rc=%d", code)
		return int(code), nil
	}

	s.connected = true
	log.Debugf("Broker -> CONNACK accepted")
	return int(code), nil
}
