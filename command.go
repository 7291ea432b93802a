package ppv2

// Command indicates the PROXY command carried by a header.
type Command byte

const (
	// CommandLocal indicates the connection was established on purpose by the
	// proxy itself, without being relayed, e.g. a health check. No address
	// information is carried.
	CommandLocal Command = 0x0

	// CommandProxy indicates the connection was established on behalf of
	// another node and reflects the original connection endpoints.
	CommandProxy Command = 0x1
)

func (c Command) String() string {
	switch c {
	case CommandLocal:
		return "LOCAL"
	case CommandProxy:
		return "PROXY"
	default:
		return "UNKNOWN"
	}
}
