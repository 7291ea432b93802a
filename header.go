package ppv2

import "net/netip"

// Header is an immutable, decoded PPv2 header. The zero value reports
// CommandLocal with HeaderLength 0; every Header returned by a decoder has
// HeaderLength of at least 16.
type Header struct {
	command   Command
	family    AddrFamily
	transport Transport

	hasAddr bool
	srcAddr netip.Addr
	dstAddr netip.Addr
	srcPort uint16
	dstPort uint16

	tlvs []TLV

	headerLength int
}

// Command reports whether this is a LOCAL or PROXY header.
func (h Header) Command() Command { return h.command }

// IsLocal is a convenience for Command() == CommandLocal.
func (h Header) IsLocal() bool { return h.command == CommandLocal }

// Family reports the address family the header was decoded for.
func (h Header) Family() AddrFamily { return h.family }

// Transport reports the transport protocol the header was decoded for.
func (h Header) Transport() Transport { return h.transport }

// Source returns the client-side address and port, if the header carries
// one. Absent for LOCAL headers, AF_UNSPEC, and AF_UNIX (unix paths are
// consumed from the wire but never decoded into addresses).
func (h Header) Source() (netip.AddrPort, bool) {
	if !h.hasAddr {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(h.srcAddr, h.srcPort), true
}

// Dest returns the balancer-facing destination address and port, under the
// same presence rules as Source.
func (h Header) Dest() (netip.AddrPort, bool) {
	if !h.hasAddr {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(h.dstAddr, h.dstPort), true
}

// TLVs returns the TLVs decoded from the header, in wire order. Empty
// unless the caller opted into TLV parsing (see DecodeOptions).
func (h Header) TLVs() []TLV { return h.tlvs }

// HeaderLength is the total number of bytes this header occupies on the
// wire, fixed prefix included. At least 16 for any decoded header.
func (h Header) HeaderLength() int { return h.headerLength }
