package mqtt

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hlindberg/embedded-mqtt/mqtt/packet"
)

// errConnectionClosed and errReadTimedOut are internal sentinels used only
// to tell readPacket's byte-at-a-time reads apart: a Network.Read that
// returns (0, nil) is an orderly peer close (connection-lost); a
// Network.Read that returns (0, non-nil) — a timeout, most commonly — is
// not, and simply means nothing arrived on this attempt.
var (
	errConnectionClosed = errors.New("mqtt: connection closed")
	errReadTimedOut     = errors.New("mqtt: read timed out")
)

type cycleOutcome int

const (
	cycleNothing cycleOutcome = iota
	cycleDispatch
	cycleConnectionLost
)

// readPacket performs steps 1-3 of the packet cycle: read the fixed
// header byte, decode the remaining-length field, then read the payload
// into recvBuf. Grounded on the original source's readPacket/decodePacket.
func (s *Session) readPacket(timer Timer) (headerByte byte, outcome cycleOutcome) {
	var hdr [1]byte
	n, err := s.network.Read(hdr[:], timer.Left())
	if n == 0 && err == nil {
		return 0, cycleConnectionLost
	}
	if n != 1 {
		return 0, cycleNothing
	}

	value, _, lengthErr := packet.DecodeVariableLength(func() (byte, error) {
		var b [1]byte
		n, rerr := s.network.Read(b[:], timer.Left())
		if n == 0 && rerr == nil {
			return 0, errConnectionClosed
		}
		if n != 1 {
			return 0, errReadTimedOut
		}
		return b[0], nil
	})
	if lengthErr == errConnectionClosed {
		return 0, cycleConnectionLost
	}
	if lengthErr != nil {
		log.Debugf("mqtt: failed to decode remaining length: %v", lengthErr)
		return 0, cycleNothing
	}

	if value > len(s.recvBuf) {
		log.Warnf("mqtt: inbound packet remaining length %d exceeds receive buffer capacity %d", value, len(s.recvBuf))
		return 0, cycleNothing
	}

	if value > 0 {
		n, err := s.network.Read(s.recvBuf[:value], timer.Left())
		if n == 0 && err == nil {
			return 0, cycleConnectionLost
		}
		if n != value {
			log.Debugf("mqtt: short read of packet payload: got %d of %d bytes", n, value)
			return 0, cycleNothing
		}
	}

	s.recvBody = s.recvBuf[:value]
	return hdr[0], cycleDispatch
}

// dispatch performs step 4 of the packet cycle.
func (s *Session) dispatch(headerByte byte, timer Timer) (byte, error) {
	body := s.recvBody
	packetType := packet.Type(headerByte)

	switch packetType {
	case packet.Connack, packet.Puback, packet.Suback, packet.Unsuback, packet.Pubcomp:
		return packetType, nil

	case packet.Publish:
		fields, err := packet.DecodePublish(headerByte, body)
		if err != nil {
			log.Debugf("mqtt: failed to decode PUBLISH: %v", err)
			return 0, nil
		}
		log.Debugf("Broker -> PUBLISH(%s, qos=%d, id=%d)", fields.Topic, fields.QoS, fields.PacketID)
		if s.messageHandler != nil {
			s.messageHandler(fields.Topic, fields.Payload)
		}
		if fields.QoS == packet.QoS0 {
			return packetType, nil
		}
		ackType := byte(packet.Puback)
		if fields.QoS == packet.QoS2 {
			ackType = packet.Pubrec
		}
		ackTimer := s.newTimer()
		ackTimer.Countdown(s.commandTimeout)
		n, err := packet.EncodeAck(s.sendBuf, ackType, fields.PacketID)
		if err != nil {
			log.Warnf("mqtt: failed to encode ack for inbound PUBLISH: %v", err)
			return 0, nil
		}
		if err := s.sendPacket(n, ackTimer); err != nil {
			return 0, err
		}
		return packetType, nil

	case packet.Pubrec:
		id, err := packet.DecodeAck(body)
		if err != nil {
			log.Debugf("mqtt: failed to decode PUBREC: %v", err)
			return 0, nil
		}
		relTimer := s.newTimer()
		relTimer.Countdown(s.commandTimeout)
		n, err := packet.EncodeAck(s.sendBuf, packet.Pubrel, id)
		if err != nil {
			log.Warnf("mqtt: failed to encode PUBREL: %v", err)
			return 0, nil
		}
		if err := s.sendPacket(n, relTimer); err != nil {
			return 0, err
		}
		return packetType, nil

	case packet.Pingresp:
		log.Debugf("Broker -> PINGRESP")
		s.pingOutstanding = false
		return packetType, nil

	default:
		log.Debugf("mqtt: ignoring unexpected inbound packet type %d", packetType)
		return 0, nil
	}
}

// cycle performs one iteration of the packet reactor: read and dispatch
// one inbound packet (if any arrives within timer's remaining duration),
// then run keep-alive maintenance. It is the only place the transport is
// read, and the sole arbiter of connection liveness. Grounded on the
// original source's cycle()/keepalive().
func (s *Session) cycle(timer Timer) (byte, error) {
	var packetType byte

	headerByte, outcome := s.readPacket(timer)
	switch outcome {
	case cycleConnectionLost:
		s.connected = false
		return 0, ErrConnectionLost
	case cycleDispatch:
		var err error
		packetType, err = s.dispatch(headerByte, timer)
		if err != nil {
			s.connected = false
			return 0, err
		}
	}

	if s.keepAlive > 0 && s.connected {
		if s.pingTimer.Expired() && !s.pingOutstanding {
			pingTimer := s.newTimer()
			pingTimer.Countdown(time.Second)
			n, err := packet.EncodePingreq(s.sendBuf)
			if err != nil {
				log.Warnf("mqtt: failed to encode PINGREQ: %v", err)
			} else if err := s.sendPacket(n, pingTimer); err != nil {
				log.Warnf("mqtt: failed to send PINGREQ: %v", err)
			} else {
				s.pingrespTimer.Countdown(s.commandTimeout)
				s.pingOutstanding = true
				log.Debugf("Broker <- PINGREQ")
			}
		}

		if s.pingOutstanding && s.pingrespTimer.Expired() {
			s.pingOutstanding = false
			s.connected = false
			log.Warnf("mqtt: keep-alive timeout waiting for PINGRESP")
			return 0, ErrConnectionLost
		}
	}

	return packetType, nil
}

// waitFor drives the cycle until the observed packet type equals expected,
// the cycle reports connection-lost, or timer's deadline expires (which
// reports ErrFailure, distinct from ErrConnectionLost per the spec's error
// taxonomy).
func (s *Session) waitFor(expected byte, timer Timer) error {
	for {
		if timer.Expired() {
			return ErrFailure
		}
		packetType, err := s.cycle(timer)
		if err != nil {
			return err
		}
		if packetType == expected {
			return nil
		}
	}
}

// sendPacket writes exactly length bytes from sendBuf to the transport,
// issuing as many writes as needed, each bounded by timer's remaining
// time. On complete success it resets pingTimer to the keep-alive
// interval; on a write error or an incomplete send followed by deadline
// expiry it reports connection-lost. Grounded on the original source's
// sendPacket.
func (s *Session) sendPacket(length int, timer Timer) error {
	sent := 0
	for sent < length && !timer.Expired() {
		n, err := s.network.Write(s.sendBuf[sent:length], timer.Left())
		if err != nil {
			break
		}
		sent += n
	}
	if sent != length {
		return ErrConnectionLost
	}
	s.pingTimer.Countdown(s.keepAlive)
	return nil
}

// Yield runs the packet cycle under the session mutex until duration
// elapses or the cycle reports failure. It is the only way to receive
// inbound PUBLISH packets (and have keep-alive pings sent) between other
// API calls. If the session is not connected, Yield returns immediately.
func (s *Session) Yield(duration time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.connected {
		return nil
	}

	timer := s.newTimer()
	timer.Countdown(duration)
	for {
		if _, err := s.cycle(timer); err != nil {
			return err
		}
		if timer.Expired() {
			return nil
		}
	}
}

// Disconnect makes a best-effort attempt to send DISCONNECT and
// unconditionally clears connected, regardless of whether the send
// succeeded.
func (s *Session) Disconnect() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	timer := s.newTimer()
	timer.Countdown(s.commandTimeout)

	n, err := packet.EncodeDisconnect(s.sendBuf)
	var sendErr error
	if err != nil {
		sendErr = ErrFailure
	} else {
		log.Debugf("Broker <- DISCONNECT")
		sendErr = s.sendPacket(n, timer)
	}
	s.connected = false
	return sendErr
}
