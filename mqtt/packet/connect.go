package packet

const protocolLevel311 = byte(4)

// Connect bits, in the single "connect flags" byte of the CONNECT variable
// header. Grounded on the teacher's constants.go.
const (
	userNameFlag     = 1 << 7
	passwordFlag     = 1 << 6
	willRetainFlag   = 1 << 5
	willQoSOneFlag   = 1 << 3
	willQoSTwoFlag   = 2 << 3
	willFlag         = 1 << 2
	cleanSessionFlag = 1 << 1
)

// ConnAckCode is a CONNACK return code, per OASIS MQTT 3.1.1 section 3.2.2.3.
type ConnAckCode byte

// CONNACK return codes.
const (
	ConnectionAccepted                  ConnAckCode = 0
	ConnectionRefusedRejectedVersion    ConnAckCode = 1
	ConnectionRefusedRejectedIdentifier ConnAckCode = 2
	ConnectionRefusedServerUnavailable  ConnAckCode = 3
	ConnectionRefusedBadUserPassword    ConnAckCode = 4
	ConnectionRefusedNotAuthorized      ConnAckCode = 5
)

// ConnectOptions carries the fields of a CONNECT packet's variable header
// and payload. It is the wire-level counterpart of the session's public
// ConnectOptions; kept separate so the codec has no dependency on the
// session package.
type ConnectOptions struct {
	ClientID         string
	CleanSession     bool
	KeepAliveSeconds uint16
	UserName         string
	HasUserName      bool
	Password         []byte
	HasPassword      bool
	WillTopic        string
	WillMessage      []byte
	WillQoS          byte
	WillRetain       bool
	HasWill          bool
}

func (o *ConnectOptions) connectFlags() byte {
	flags := byte(0)
	if o.CleanSession {
		flags |= cleanSessionFlag
	}
	if o.HasWill {
		flags |= willFlag
		switch o.WillQoS {
		case 1:
			flags |= willQoSOneFlag
		case 2:
			flags |= willQoSTwoFlag
		}
		if o.WillRetain {
			flags |= willRetainFlag
		}
	}
	if o.HasUserName {
		flags |= userNameFlag
	}
	if o.HasPassword {
		flags |= passwordFlag
	}
	return flags
}

func (o *ConnectOptions) variableHeaderAndPayloadLength() int {
	// Protocol name (2 + "MQTT") + level + flags + keep-alive = 10 fixed bytes.
	length := 10
	length += 2 + len(o.ClientID)
	if o.HasWill {
		length += 2 + len(o.WillTopic)
		length += 2 + len(o.WillMessage)
	}
	if o.HasUserName {
		length += 2 + len(o.UserName)
	}
	if o.HasPassword {
		length += 2 + len(o.Password)
	}
	return length
}

// EncodeConnect writes a CONNECT packet for opts into buf and returns the
// total number of bytes written, or ErrBufferTooSmall if buf is too small.
func EncodeConnect(buf []byte, opts ConnectOptions) (int, error) {
	remaining := opts.variableHeaderAndPayloadLength()
	headerLen := VariableLengthSize(remaining)
	total := 1 + headerLen + remaining
	if total > len(buf) {
		return 0, ErrBufferTooSmall
	}

	buf[0] = byte(Connect << 4)
	n, err := EncodeVariableLength(remaining, buf[1:])
	if err != nil {
		return 0, err
	}
	offset := 1 + n

	offset += writeMQTTProtocolName(buf, offset)
	buf[offset] = protocolLevel311
	offset++
	buf[offset] = opts.connectFlags()
	offset++
	if _, err := encode16(int(opts.KeepAliveSeconds), buf, offset); err != nil {
		return 0, err
	}
	offset += 2

	n, err = encodeString(opts.ClientID, buf, offset)
	if err != nil {
		return 0, err
	}
	offset += n

	if opts.HasWill {
		if n, err = encodeString(opts.WillTopic, buf, offset); err != nil {
			return 0, err
		}
		offset += n
		if n, err = encodeBytes(opts.WillMessage, buf, offset); err != nil {
			return 0, err
		}
		offset += n
	}
	if opts.HasUserName {
		if n, err = encodeString(opts.UserName, buf, offset); err != nil {
			return 0, err
		}
		offset += n
	}
	if opts.HasPassword {
		if n, err = encodeBytes(opts.Password, buf, offset); err != nil {
			return 0, err
		}
		offset += n
	}
	return offset, nil
}

func writeMQTTProtocolName(buf []byte, offset int) int {
	buf[offset] = 0
	buf[offset+1] = 4
	copy(buf[offset+2:offset+6], "MQTT")
	return 6
}

// DecodeConnack decodes a CONNACK packet body (the two bytes following the
// fixed header and remaining-length field: the Remaining Length is always 2
// for CONNACK) and returns whether the session-present flag was set and the
// broker's return code.
func DecodeConnack(body []byte) (sessionPresent bool, code ConnAckCode, err error) {
	if len(body) != 2 {
		return false, 0, ErrMalformed
	}
	sessionPresent = body[0]&0x01 != 0
	code = ConnAckCode(body[1])
	return sessionPresent, code, nil
}
