package packet

// subscribeFlags is the fixed value of the lower nibble of a SUBSCRIBE
// fixed header, mandated by the MQTT spec (section 3.8.1).
const subscribeFlags = 0x02

// unsubscribeFlags is the fixed lower nibble of an UNSUBSCRIBE fixed header.
const unsubscribeFlags = 0x02

// EncodeSubscribe writes a SUBSCRIBE packet with a single topic filter into
// buf and returns the total number of bytes written. The spec's data model
// has no reservation table, so the engine only ever subscribes one filter
// per call; the wire format itself supports a list, which is why the count
// of filters isn't part of this signature beyond "exactly one".
func EncodeSubscribe(buf []byte, packetID uint16, filter string, qos byte) (int, error) {
	remaining := 2 + 2 + len(filter) + 1
	headerLen := VariableLengthSize(remaining)
	total := 1 + headerLen + remaining
	if total > len(buf) {
		return 0, ErrBufferTooSmall
	}

	buf[0] = byte(Subscribe<<4) | subscribeFlags
	n, err := EncodeVariableLength(remaining, buf[1:])
	if err != nil {
		return 0, err
	}
	offset := 1 + n

	if _, err := encode16(int(packetID), buf, offset); err != nil {
		return 0, err
	}
	offset += 2

	n, err = encodeString(filter, buf, offset)
	if err != nil {
		return 0, err
	}
	offset += n

	buf[offset] = qos
	offset++
	return offset, nil
}

// DecodeSuback decodes a SUBACK body (packet identifier plus one granted-QoS
// byte per requested filter; the engine only ever requests one filter at a
// time, so only the first granted code is returned).
func DecodeSuback(body []byte) (packetID uint16, grantedQoS byte, err error) {
	if len(body) < 3 {
		return 0, 0, ErrMalformed
	}
	id, err := decode16(body, 0)
	if err != nil {
		return 0, 0, err
	}
	return uint16(id), body[2], nil
}

// EncodeUnsubscribe writes an UNSUBSCRIBE packet with a single topic filter.
func EncodeUnsubscribe(buf []byte, packetID uint16, filter string) (int, error) {
	remaining := 2 + 2 + len(filter)
	headerLen := VariableLengthSize(remaining)
	total := 1 + headerLen + remaining
	if total > len(buf) {
		return 0, ErrBufferTooSmall
	}

	buf[0] = byte(Unsubscribe<<4) | unsubscribeFlags
	n, err := EncodeVariableLength(remaining, buf[1:])
	if err != nil {
		return 0, err
	}
	offset := 1 + n

	if _, err := encode16(int(packetID), buf, offset); err != nil {
		return 0, err
	}
	offset += 2

	n, err = encodeString(filter, buf, offset)
	if err != nil {
		return 0, err
	}
	offset += n
	return offset, nil
}

// DecodeUnsuback decodes an UNSUBACK body (just the packet identifier).
func DecodeUnsuback(body []byte) (packetID uint16, err error) {
	if len(body) != 2 {
		return 0, ErrMalformed
	}
	id, err := decode16(body, 0)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}
