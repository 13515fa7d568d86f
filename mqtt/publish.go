package mqtt

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

// Publish encodes and sends a PUBLISH at the given QoS (0, 1, or 2) and,
// for QoS 1 and 2, waits for the handshake to complete — the PUBREC/PUBREL
// step of QoS 2 is handled transparently by the packet cycle running
// inside waitFor. Requires the session to be connected.
func (s *Session) Publish(topic string, payload []byte, qos byte, retain bool) error {
	if qos > 2 {
		panic(fmt.Sprintf("mqtt: QoS must be 0, 1, or 2, got %d", qos))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connected {
		return ErrNotConnected
	}

	timer := s.newTimer()
	timer.Countdown(s.commandTimeout)

	var id uint16
	if qos > 0 {
		id = s.nextID()
	}

	n, err := packet.EncodePublish(s.sendBuf, false, qos, retain, id, topic, payload)
	if err != nil {
		return ErrFailure
	}

	log.Debugf("Broker <- PUBLISH(%s, qos=%d, id=%d)", topic, qos, id)
	if err := s.sendPacket(n, timer); err != nil {
		return err
	}

	switch qos {
	case packet.QoS0:
		return nil
	case packet.QoS1:
		if err := s.waitFor(packet.Puback, timer); err != nil {
			return err
		}
	default:
		if err := s.waitFor(packet.Pubcomp, timer); err != nil {
			return err
		}
	}

	if _, err := packet.DecodeAck(s.recvBody); err != nil {
		return ErrFailure
	}
	return nil
}
