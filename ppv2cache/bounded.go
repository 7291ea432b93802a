package ppv2cache

import (
	"net/netip"
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
)

// boundedCache is a capacity-bounded, idle-expiring Cache backed by
// hashicorp/golang-lru's generic expirable LRU. Grounded on the
// long-standing kubernetes use of hashicorp/golang-lru for bounded caches
// (vendored throughout kubernetes-kubernetes), generalized here to the v2
// generic API and its expirable variant.
//
// The expirable LRU's own Get does not refresh an entry's expiry deadline
// on access (only its LRU position); to get idle-TTL semantics --
// "absent after idle-timeout since last access" -- a successful Get
// re-Adds the entry, which the library documents as resetting both the
// expiry bucket and the LRU position.
type boundedCache struct {
	lru *expirable.LRU[netip.AddrPort, netip.AddrPort]
	ttl time.Duration
}

// NewBounded returns a Cache holding at most maxEntries mappings (maxEntries
// < 1 is treated as 1). If idleTTL <= 0, entries never expire by time and
// eviction is purely by LRU order once the cache is at capacity.
func NewBounded(maxEntries int, idleTTL time.Duration) Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if idleTTL < 0 {
		idleTTL = 0
	}
	return &boundedCache{
		lru: expirable.NewLRU[netip.AddrPort, netip.AddrPort](maxEntries, nil, idleTTL),
		ttl: idleTTL,
	}
}

func (c *boundedCache) Put(client, balancer netip.AddrPort) {
	if !client.IsValid() || !balancer.IsValid() {
		return
	}
	c.lru.Add(client, balancer)
}

func (c *boundedCache) Get(client netip.AddrPort) (netip.AddrPort, bool) {
	if !client.IsValid() {
		return netip.AddrPort{}, false
	}
	v, ok := c.lru.Get(client)
	if !ok {
		return netip.AddrPort{}, false
	}
	if c.ttl > 0 {
		c.lru.Add(client, v)
	}
	return v, true
}

func (c *boundedCache) Invalidate(client netip.AddrPort) {
	c.lru.Remove(client)
}

func (c *boundedCache) Clear() {
	c.lru.Purge()
}
