package ppv2udp

import "net/netip"

// Datagram is a single UDP packet as it moves through Endpoint.Receive and
// Endpoint.Send. The pipeline never retains the backing buffer past the
// call that produced it -- callers own it for as long as they like.
type Datagram struct {
	buf    []byte
	off, n int
	remote netip.AddrPort
	dest   netip.AddrPort
}

// Payload is the application data: on a received datagram that carried a
// PPv2 header, this is the buffer narrowed past HeaderLength bytes; on one
// that didn't (no header, untrusted sender, or parse failure) it is the
// datagram exactly as read.
func (d *Datagram) Payload() []byte { return d.buf[d.off : d.off+d.n] }

// Remote is the apparent sender address: the real client address if a
// trusted PROXY/DGRAM header was decoded, otherwise the address the
// datagram was physically received from (the balancer, or whatever device
// actually sent it).
func (d *Datagram) Remote() netip.AddrPort { return d.remote }

// Destination is read by Send to decide where the reply is logically
// addressed (the client). Set it before calling Send; Receive never sets
// it.
func (d *Datagram) Destination() netip.AddrPort { return d.dest }

// SetDestination sets the client address a reply should be delivered to.
func (d *Datagram) SetDestination(addr netip.AddrPort) { d.dest = addr }

// SetPayload replaces the datagram's payload ahead of Send, e.g. to build
// a reply in the same buffer a Receive populated.
func (d *Datagram) SetPayload(p []byte) {
	d.buf = p
	d.off, d.n = 0, len(p)
}

// NewDatagram builds a Datagram to send to dest with the given payload.
func NewDatagram(dest netip.AddrPort, payload []byte) *Datagram {
	return &Datagram{buf: payload, off: 0, n: len(payload), dest: dest}
}
