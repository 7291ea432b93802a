// Package ppv2udp wraps a UDP socket with PROXY protocol v2 datagram
// framing: a trusted load balancer prepends a PPv2/DGRAM header to every
// packet it forwards, carrying the real client's address; Endpoint decodes
// that header on receive and consults a client->balancer cache on send so
// replies can be addressed back to the balancer that owns the client.
package ppv2udp

import (
	"net/netip"

	"github.com/relayproto/ppv2"
	"github.com/relayproto/ppv2/ppv2cache"
	"github.com/relayproto/ppv2/ppv2metrics"
	"github.com/relayproto/ppv2/ppv2trust"
)

// Conn is the socket interface Endpoint drives. *net.UDPConn satisfies it.
type Conn interface {
	ReadFromUDPAddrPort(b []byte) (n int, addr netip.AddrPort, err error)
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (n int, err error)
}

// Endpoint is an immutable, concurrency-safe wrapper around a UDP Conn that
// implements the receive/send sides of the PPv2 datagram pipeline. Build
// one with NewEndpointBuilder.
type Endpoint struct {
	conn               Conn
	cache              ppv2cache.Cache
	metrics            ppv2metrics.Listener
	trust              func(netip.Addr) bool
	forwardOnCacheMiss bool
	decodeOpts         ppv2.DecodeOptions
}

// EndpointBuilder accumulates configuration for an Endpoint. Its zero value
// (via NewEndpointBuilder) trusts every sender, caches nothing, and reports
// to ppv2metrics.Noop.
type EndpointBuilder struct {
	e Endpoint
}

// NewEndpointBuilder starts building an Endpoint around conn.
func NewEndpointBuilder(conn Conn) *EndpointBuilder {
	return &EndpointBuilder{e: Endpoint{
		conn:    conn,
		metrics: ppv2metrics.Noop,
		trust:   ppv2trust.Any(),
	}}
}

// WithCache sets the balancer/client address cache Receive populates and
// Send consults. Without one, Send always forwards datagrams unchanged to
// their set Destination -- there is nothing to look up.
func (b *EndpointBuilder) WithCache(c ppv2cache.Cache) *EndpointBuilder {
	b.e.cache = c
	return b
}

// WithMetrics sets the observability sink. Without one, Endpoint reports
// to ppv2metrics.Noop.
func (b *EndpointBuilder) WithMetrics(m ppv2metrics.Listener) *EndpointBuilder {
	if m != nil {
		b.e.metrics = m
	}
	return b
}

// WithTrust sets the predicate deciding whether a PPv2 header from a given
// balancer address is honored. Without one, every sender is trusted.
func (b *EndpointBuilder) WithTrust(trust func(netip.Addr) bool) *EndpointBuilder {
	if trust != nil {
		b.e.trust = trust
	}
	return b
}

// WithForwardOnCacheMiss makes Send forward a datagram straight to its
// physical Destination when no cache entry exists, instead of silently
// dropping it. Off by default: dropping is the safer default when a reply
// target cannot be proven to have come through the balancer.
func (b *EndpointBuilder) WithForwardOnCacheMiss(forward bool) *EndpointBuilder {
	b.e.forwardOnCacheMiss = forward
	return b
}

// WithDecodeOptions sets the ppv2.DecodeOptions used to parse each
// datagram's header, e.g. to enable TLV parsing.
func (b *EndpointBuilder) WithDecodeOptions(opt ppv2.DecodeOptions) *EndpointBuilder {
	b.e.decodeOpts = opt
	return b
}

// Build finalizes the Endpoint.
func (b *EndpointBuilder) Build() *Endpoint {
	e := b.e
	return &e
}

// Receive reads one datagram into buf and returns it with Remote resolved
// to the real client address when a trusted PPv2/DGRAM header was present.
//
// A read from an untrusted sender, or one whose bytes do not decode as a
// PPv2 header, is passed through unmodified -- Remote is simply the socket
// peer address, and Payload is the full buffer as read. A LOCAL header is
// stripped with Remote left as the balancer's own address, per protocol
// convention for health checks and keepalives.
func (e *Endpoint) Receive(buf []byte) (*Datagram, error) {
	n, peer, err := e.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return nil, err
	}

	d := &Datagram{buf: buf, off: 0, n: n, remote: peer}

	if !e.trust(peer.Addr()) {
		e.metrics.OnUntrustedProxy(peer)
		return d, nil
	}

	h, err := ppv2.DecodeWithOptions(buf[:n], e.decodeOpts)
	if err != nil {
		e.metrics.OnParseError(err)
		return d, nil
	}
	e.metrics.OnHeaderParsed(h)

	if h.IsLocal() {
		e.metrics.OnLocal(peer)
		d.off = h.HeaderLength()
		d.n = n - h.HeaderLength()
		return d, nil
	}

	src, ok := h.Source()
	if h.Transport() == ppv2.TransportDGram && ok {
		e.metrics.OnTrustedProxy(peer)
		if e.cache != nil {
			e.cache.Put(src, peer)
		}
		d.remote = src
	}
	d.off = h.HeaderLength()
	d.n = n - h.HeaderLength()
	return d, nil
}

// Send writes d's payload to its Destination. If a cache is configured,
// Destination is first translated to the balancer address that last
// delivered a datagram claiming to be from it; with no cache entry, Send
// either drops the datagram or forwards it to Destination directly, per
// WithForwardOnCacheMiss. A cache miss is a policy outcome, not an error:
// Send records it via OnCacheMiss, returns nil when it drops the datagram,
// and returns only the write's own error when it forwards it.
//
// With no cache configured at all, Send always forwards to Destination
// unchanged -- the pipeline has no notion of "who owns this client" to
// consult.
func (e *Endpoint) Send(d *Datagram) error {
	target := d.dest
	if e.cache != nil {
		balancer, ok := e.cache.Get(d.dest)
		if !ok {
			e.metrics.OnCacheMiss(d.dest)
			if !e.forwardOnCacheMiss {
				return nil
			}
		} else {
			e.metrics.OnCacheHit(d.dest)
			target = balancer
		}
	}
	_, err := e.conn.WriteToUDPAddrPort(d.Payload(), target)
	return err
}
