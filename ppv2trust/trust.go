// Package ppv2trust builds the address predicates Endpoint uses to decide
// whether a PPv2 header from a given peer should be honored at all (the
// TCP listener in ppv2tcp matches its own Rule subnets instead). Nothing in the PPv2 wire format itself is authenticated,
// so this decision rests entirely on network-layer trust: typically "did
// this arrive from one of our known load balancers' addresses."
package ppv2trust

import "net/netip"

// FromCIDRs returns a predicate that reports whether an address falls
// within any of the given CIDR blocks, matching IPv4 and IPv6 blocks
// independently (a v4 CIDR never matches a v6 address and vice versa). The
// port component of whatever the pipeline is checking is never considered
// here: the predicate is handed a bare netip.Addr.
//
// A malformed CIDR or an out-of-range prefix length is rejected loudly:
// FromCIDRs returns the underlying netip.ParsePrefix error rather than
// silently ignoring the bad entry.
func FromCIDRs(cidrs ...string) (func(netip.Addr) bool, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, p)
	}
	return func(addr netip.Addr) bool {
		if !addr.IsValid() {
			return false
		}
		ip := addr.Unmap()
		for _, p := range prefixes {
			if p.Contains(ip) {
				return true
			}
		}
		return false
	}, nil
}

// Any returns a predicate that trusts every peer. It is the Endpoint
// default, suitable for a balancer reachable only from a closed network,
// and a convenient stand-in in tests.
func Any() func(netip.Addr) bool {
	return func(netip.Addr) bool { return true }
}

// None returns a predicate that trusts no peer; every datagram is treated
// as arriving directly from the client with no PPv2 header honored.
func None() func(netip.Addr) bool {
	return func(netip.Addr) bool { return false }
}
