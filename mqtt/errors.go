package mqtt

import "errors"

// ErrFailure is the generic failure sentinel: a buffer too small to hold an
// encoded packet, a malformed inbound packet, or a waitfor deadline expiry.
var ErrFailure = errors.New("mqtt: failure")

// ErrConnectionLost is returned when the transport reports a zero-byte
// read, a write that could not complete before its deadline, or a
// keep-alive timeout. The session's connected flag is false after this is
// observed (either immediately, for reads, or on the next failed wait, for
// writes — see send_packet's discussion in the design notes).
var ErrConnectionLost = errors.New("mqtt: connection lost")

// ErrProtocol names an inbound packet that cannot be decoded — a
// malformed remaining-length field, a truncated payload, or an
// unrecognised fixed header. The Session API does not return it: the
// packet cycle drops such packets, and a failed decode of an awaited ack
// is reported as ErrFailure.
var ErrProtocol = errors.New("mqtt: protocol decode failure")

// ErrNotConnected is returned by API calls other than Connect/Disconnect/
// IsConnected when the session is not connected.
var ErrNotConnected = errors.New("mqtt: not connected")

// ErrAlreadyConnected is returned by Connect when the session is already
// connected.
var ErrAlreadyConnected = errors.New("mqtt: already connected")

// ErrBufferTooSmall names the case of a send buffer that cannot hold an
// outbound packet. The Session API does not return it: that case is
// reported as ErrFailure, before any I/O is attempted.
var ErrBufferTooSmall = errors.New("mqtt: send buffer too small")
