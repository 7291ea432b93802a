package ppv2cache

import (
	"net/netip"
	"sync"
)

// unboundedCache is a thread-safe map with no capacity limit and no
// expiry: entries persist until explicitly removed via Invalidate or
// Clear.
type unboundedCache struct {
	mu      sync.RWMutex
	entries map[netip.AddrPort]netip.AddrPort
}

// NewUnbounded returns a Cache backed by a plain mutex-guarded map. Safe
// for any number of concurrent callers; for two concurrent Put calls on
// the same key, the final stored value is one of the two (never torn).
func NewUnbounded() Cache {
	return &unboundedCache{entries: make(map[netip.AddrPort]netip.AddrPort)}
}

func (c *unboundedCache) Put(client, balancer netip.AddrPort) {
	if !client.IsValid() || !balancer.IsValid() {
		return
	}
	c.mu.Lock()
	c.entries[client] = balancer
	c.mu.Unlock()
}

func (c *unboundedCache) Get(client netip.AddrPort) (netip.AddrPort, bool) {
	if !client.IsValid() {
		return netip.AddrPort{}, false
	}
	c.mu.RLock()
	v, ok := c.entries[client]
	c.mu.RUnlock()
	return v, ok
}

func (c *unboundedCache) Invalidate(client netip.AddrPort) {
	c.mu.Lock()
	delete(c.entries, client)
	c.mu.Unlock()
}

func (c *unboundedCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[netip.AddrPort]netip.AddrPort)
	c.mu.Unlock()
}
