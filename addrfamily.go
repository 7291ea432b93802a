package ppv2

// AddrFamily represents the address family of a PPv2 header.
type AddrFamily byte

const (
	// AddrFamilyUnspec means the connection is forwarded for an unknown,
	// unspecified, or unsupported protocol. No addresses are carried.
	AddrFamilyUnspec AddrFamily = 0x0

	// AddrFamilyInet is used when the forwarded connection uses AF_INET (IPv4).
	AddrFamilyInet AddrFamily = 0x1

	// AddrFamilyInet6 is used when the forwarded connection uses AF_INET6 (IPv6).
	AddrFamilyInet6 AddrFamily = 0x2

	// AddrFamilyUnix is used when the forwarded connection uses AF_UNIX. Unix
	// addresses are consumed from the wire but never decoded; Source/Dest
	// report absent for this family.
	AddrFamilyUnix AddrFamily = 0x3
)

func (f AddrFamily) String() string {
	switch f {
	case AddrFamilyUnspec:
		return "UNSPEC"
	case AddrFamilyInet:
		return "INET"
	case AddrFamilyInet6:
		return "INET6"
	case AddrFamilyUnix:
		return "UNIX"
	default:
		return "UNKNOWN"
	}
}
