package packet

// maxRemainingLengthBytes is the hard limit the MQTT spec places on the
// Remaining Length field: four bytes, seven data bits each.
const maxRemainingLengthBytes = 4

// EncodeVariableLength writes value (a packet's Remaining Length) into buf
// using the standard 1-to-4-byte MQTT variable-length encoding: seven data
// bits per byte, continuation signalled by the top bit. It returns the
// number of bytes written, ErrBufferTooSmall if buf cannot hold them, or
// ErrMalformed if value needs more than four bytes.
func EncodeVariableLength(value int, buf []byte) (int, error) {
	n := 0
	for {
		if n >= maxRemainingLengthBytes {
			return 0, ErrMalformed
		}
		if n >= len(buf) {
			return 0, ErrBufferTooSmall
		}
		b := byte(value % 128)
		value /= 128
		if value > 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if value == 0 {
			break
		}
	}
	return n, nil
}

// VariableLengthSize returns how many bytes EncodeVariableLength would use
// for value, without writing anything.
func VariableLengthSize(value int) int {
	n := 1
	for value >= 128 {
		value /= 128
		n++
	}
	return n
}

// DecodeVariableLength reads a Remaining Length value one byte at a time via
// next, stopping at the first byte with its continuation bit clear, or
// failing with ErrMalformed after the fourth byte (overflow is a protocol
// error per the MQTT spec). It returns the decoded value and the number of
// bytes consumed from next.
func DecodeVariableLength(next func() (byte, error)) (value int, length int, err error) {
	multiplier := 1
	for {
		if length >= maxRemainingLengthBytes {
			return 0, length, ErrMalformed
		}
		b, err := next()
		if err != nil {
			return 0, length, err
		}
		length++
		value += int(b&0x7F) * multiplier
		if b&0x80 == 0 {
			return value, length, nil
		}
		multiplier *= 128
	}
}

// DecodeVariableLengthFromBuffer is a buffer-oriented convenience wrapper
// around DecodeVariableLength for callers that already hold the full packet
// in memory (as opposed to the session's deadline-bounded byte-at-a-time
// network reads).
func DecodeVariableLengthFromBuffer(buf []byte) (value int, length int, err error) {
	i := 0
	return DecodeVariableLength(func() (byte, error) {
		if i >= len(buf) {
			return 0, ErrMalformed
		}
		b := buf[i]
		i++
		return b, nil
	})
}
