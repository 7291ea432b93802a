package ppv2

// Transport indicates the transport protocol carried by a header.
type Transport byte

const (
	// TransportUnspec indicates the connection is forwarded for an unknown,
	// unspecified, or unsupported transport.
	TransportUnspec Transport = 0x0

	// TransportStream indicates a SOCK_STREAM transport (TCP or UNIX stream).
	TransportStream Transport = 0x1

	// TransportDGram indicates a SOCK_DGRAM transport (UDP or UNIX datagram).
	TransportDGram Transport = 0x2
)

func (t Transport) String() string {
	switch t {
	case TransportUnspec:
		return "UNSPEC"
	case TransportStream:
		return "STREAM"
	case TransportDGram:
		return "DGRAM"
	default:
		return "UNKNOWN"
	}
}
