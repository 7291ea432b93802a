package ppv2

import (
	"encoding/binary"
	"net/netip"
)

// Builder accumulates the fields of a PPv2 header and serializes them to
// wire bytes with Encode. Unlike Header, a Builder is mutable; build one,
// call Encode, then discard it.
//
// The encoder has no recoverable error path: supplying addresses that are
// inconsistent with the requested family (e.g. AddrFamilyInet with an IPv6
// address, or zero-value addresses passed to WithAddrs) is a programmer
// error and Encode panics. A Builder on which WithAddrs was never called
// encodes AF_UNSPEC with no address block, whatever family was set.
type Builder struct {
	command   Command
	family    AddrFamily
	transport Transport

	hasAddr bool
	src     netip.AddrPort
	dst     netip.AddrPort

	tlvs []TLV
}

// NewBuilder returns a Builder for a PROXY/UNSPEC/UNSPEC header with no
// addresses or TLVs; chain With* calls to fill it in.
func NewBuilder() *Builder {
	return &Builder{command: CommandProxy}
}

// WithCommand sets the command. LOCAL headers ignore every other field at
// Encode time: they always serialize to a 16-byte header.
func (b *Builder) WithCommand(c Command) *Builder {
	b.command = c
	return b
}

// WithFamily sets the address family explicitly. Usually unnecessary:
// WithAddrs infers it from the address kind.
func (b *Builder) WithFamily(f AddrFamily) *Builder {
	b.family = f
	return b
}

// WithTransport sets the transport protocol (STREAM or DGRAM).
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithAddrs sets the source and destination address+port and infers the
// address family (INET or INET6) from whether src is an IPv4 or IPv6
// address. Call WithFamily after WithAddrs to override the inferred family
// (e.g. to force INET6 wire encoding of an IPv4 address via the
// IPv4-mapped-IPv6 form).
func (b *Builder) WithAddrs(src, dst netip.AddrPort) *Builder {
	b.src, b.dst, b.hasAddr = src, dst, true
	if src.Addr().Unmap().Is4() {
		b.family = AddrFamilyInet
	} else {
		b.family = AddrFamilyInet6
	}
	return b
}

// WithTLV appends a TLV. TLVs are encoded in the order they were added.
func (b *Builder) WithTLV(typ byte, value []byte) *Builder {
	b.tlvs = append(b.tlvs, TLV{Type: typ, Value: value})
	return b
}

// Encode serializes the accumulated fields into a freshly allocated byte
// slice holding a valid PPv2 header.
func (b *Builder) Encode() []byte {
	if b.command == CommandLocal {
		buf := make([]byte, 16)
		copy(buf[:12], signature[:])
		buf[12] = (2 << 4) | byte(CommandLocal)
		return buf
	}

	family := b.family
	if !b.hasAddr {
		family = AddrFamilyUnspec
	}

	var addr []byte
	switch family {
	case AddrFamilyUnspec:
		// no address block
	case AddrFamilyInet:
		srcIP := b.src.Addr().Unmap()
		dstIP := b.dst.Addr().Unmap()
		if !srcIP.Is4() || !dstIP.Is4() {
			panic("ppv2: AddrFamilyInet requires IPv4 source and destination addresses")
		}
		addr = make([]byte, 12)
		src4 := srcIP.As4()
		dst4 := dstIP.As4()
		copy(addr[0:4], src4[:])
		copy(addr[4:8], dst4[:])
		binary.BigEndian.PutUint16(addr[8:10], b.src.Port())
		binary.BigEndian.PutUint16(addr[10:12], b.dst.Port())
	case AddrFamilyInet6:
		if !b.src.Addr().IsValid() || !b.dst.Addr().IsValid() {
			panic("ppv2: AddrFamilyInet6 requires source and destination addresses")
		}
		// As16 returns the IPv4-mapped-IPv6 form for an IPv4 address, which
		// is exactly the wire representation the spec requires here.
		src16 := b.src.Addr().As16()
		dst16 := b.dst.Addr().As16()
		addr = make([]byte, 36)
		copy(addr[0:16], src16[:])
		copy(addr[16:32], dst16[:])
		binary.BigEndian.PutUint16(addr[32:34], b.src.Port())
		binary.BigEndian.PutUint16(addr[34:36], b.dst.Port())
	default:
		panic("ppv2: unsupported address family for Encode")
	}

	varLen := len(addr) + encodedLen(b.tlvs)
	buf := make([]byte, 0, 16+varLen)
	buf = append(buf, signature[:]...)
	buf = append(buf, (2<<4)|byte(b.command), (byte(family)<<4)|byte(b.transport))
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(varLen))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, addr...)
	buf = appendTLVs(buf, b.tlvs)
	return buf
}
