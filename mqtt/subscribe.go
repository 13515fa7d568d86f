package mqtt

import (
	log "github.com/sirupsen/logrus"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

// Subscribe encodes and sends SUBSCRIBE with a fresh packet id and a
// single filter, waits for SUBACK, and returns the granted QoS (0, 1, 2,
// or packet.SubscribeFailure for a broker-refused subscription). Requires
// the session to be connected. The spec's data model has no reservation
// table and subscribes one filter per call; the wire format's per-filter
// list is always of length one here.
func (s *Session) Subscribe(filter string, qos byte) (byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connected {
		return 0, ErrNotConnected
	}

	timer := s.newTimer()
	timer.Countdown(s.commandTimeout)

	id := s.nextID()
	n, err := packet.EncodeSubscribe(s.sendBuf, id, filter, qos)
	if err != nil {
		return 0, ErrFailure
	}

	log.Debugf("Broker <- SUBSCRIBE(%s, qos=%d, id=%d)", filter, qos, id)
	if err := s.sendPacket(n, timer); err != nil {
		return 0, err
	}

	if err := s.waitFor(packet.Suback, timer); err != nil {
		return 0, err
	}

	_, granted, err := packet.DecodeSuback(s.recvBody)
	if err != nil {
		return 0, ErrFailure
	}
	log.Debugf("Broker -> SUBACK(granted=%d)", granted)
	return granted, nil
}

// Unsubscribe encodes and sends UNSUBSCRIBE with a fresh packet id and
// waits for UNSUBACK. Requires the session to be connected.
func (s *Session) Unsubscribe(filter string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connected {
		return ErrNotConnected
	}

	timer := s.newTimer()
	timer.Countdown(s.commandTimeout)

	id := s.nextID()
	n, err := packet.EncodeUnsubscribe(s.sendBuf, id, filter)
	if err != nil {
		return ErrFailure
	}

	log.Debugf("Broker <- UNSUBSCRIBE(%s, id=%d)", filter, id)
	if err := s.sendPacket(n, timer); err != nil {
		return err
	}

	if err := s.waitFor(packet.Unsuback, timer); err != nil {
		return err
	}

	if _, err := packet.DecodeUnsuback(s.recvBody); err != nil {
		return ErrFailure
	}
	return nil
}
