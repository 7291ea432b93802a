// Package ppv2metrics defines the passive observability sink the
// datagram pipeline (ppv2udp) reports through,
// plus two optional concrete implementations: a logrus-backed logger and
// a Prometheus counter set.
package ppv2metrics

import (
	"net/netip"

	"github.com/relayproto/ppv2"
)

// Listener receives the pipeline's observability events. Every method is
// optional to implement meaningfully -- Noop below implements all of them
// as no-ops -- and every method must be safe for concurrent use, since the
// pipeline calls it from whatever goroutine is driving Receive/Send.
type Listener interface {
	// OnHeaderParsed fires once a PPv2 header has been successfully
	// decoded, before any cache or source-rewrite side effects.
	OnHeaderParsed(h ppv2.Header)

	// OnParseError fires when the datagram's data window did not decode
	// as a PPv2 header; cause is the error Decode/DecodeTLV returned.
	OnParseError(cause error)

	// OnCacheHit fires on Send when the destination has a known balancer
	// mapping.
	OnCacheHit(client netip.AddrPort)

	// OnCacheMiss fires on Send when the destination has no known
	// balancer mapping and the datagram is (by default) dropped.
	OnCacheMiss(client netip.AddrPort)

	// OnTrustedProxy fires on Receive when a PROXY/DGRAM header with a
	// source address was accepted from balancer.
	OnTrustedProxy(balancer netip.AddrPort)

	// OnUntrustedProxy fires on Receive when the trust predicate rejected
	// balancer; the datagram is passed through unmodified.
	OnUntrustedProxy(balancer netip.AddrPort)

	// OnLocal fires on Receive for a LOCAL header arriving from balancer.
	OnLocal(balancer netip.AddrPort)
}

type noopListener struct{}

func (noopListener) OnHeaderParsed(ppv2.Header)      {}
func (noopListener) OnParseError(error)              {}
func (noopListener) OnCacheHit(netip.AddrPort)       {}
func (noopListener) OnCacheMiss(netip.AddrPort)      {}
func (noopListener) OnTrustedProxy(netip.AddrPort)   {}
func (noopListener) OnUntrustedProxy(netip.AddrPort) {}
func (noopListener) OnLocal(netip.AddrPort)          {}

// Noop is a Listener whose every callback does nothing. It is the default
// an Endpoint uses when no metrics listener is configured.
var Noop Listener = noopListener{}
