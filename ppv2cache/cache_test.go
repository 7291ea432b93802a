package ppv2cache

import (
	"fmt"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(s string) netip.AddrPort {
	return netip.MustParseAddrPort(s)
}

func TestUnbounded_PutGet(t *testing.T) {
	c := NewUnbounded()
	k := addr("10.0.0.1:1111")
	v1 := addr("10.0.0.2:2222")
	v2 := addr("10.0.0.3:3333")

	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Put(k, v1)
	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, v1, got)

	c.Put(k, v2)
	got, ok = c.Get(k)
	require.True(t, ok)
	assert.Equal(t, v2, got)

	c.Invalidate(k)
	_, ok = c.Get(k)
	assert.False(t, ok)
}

func TestUnbounded_InvalidArgsAreNoops(t *testing.T) {
	c := NewUnbounded()
	var zero netip.AddrPort
	c.Put(zero, addr("10.0.0.1:1"))
	c.Put(addr("10.0.0.1:1"), zero)
	_, ok := c.Get(zero)
	assert.False(t, ok)
	c.Invalidate(zero) // must not panic
}

func TestUnbounded_Clear(t *testing.T) {
	c := NewUnbounded()
	c.Put(addr("10.0.0.1:1"), addr("10.0.0.2:2"))
	c.Clear()
	_, ok := c.Get(addr("10.0.0.1:1"))
	assert.False(t, ok)
}

func TestUnbounded_ConcurrentDisjointKeys(t *testing.T) {
	c := NewUnbounded()
	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				k := addr(fmt.Sprintf("10.0.%d.%d:%d", g, i%256, 10000+i))
				v := addr(fmt.Sprintf("192.168.%d.%d:%d", g, i%256, 20000+i))
				c.Put(k, v)
				got, ok := c.Get(k)
				assert.True(t, ok)
				assert.Equal(t, v, got)
			}
		}(g)
	}
	wg.Wait()
}

func TestUnbounded_ConcurrentPutSameKeyNeverTorn(t *testing.T) {
	c := NewUnbounded()
	k := addr("10.0.0.1:1")
	v1 := addr("10.0.0.2:1")
	v2 := addr("10.0.0.2:2")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.Put(k, v1) }()
	go func() { defer wg.Done(); c.Put(k, v2) }()
	wg.Wait()

	got, ok := c.Get(k)
	require.True(t, ok)
	assert.True(t, got == v1 || got == v2)
}

func TestBounded_MaxEntries(t *testing.T) {
	c := NewBounded(3, time.Minute)
	for i := 0; i < 10; i++ {
		c.Put(addr(fmt.Sprintf("10.0.0.%d:1", i)), addr(fmt.Sprintf("192.168.0.%d:1", i)))
	}
	present := 0
	for i := 0; i < 10; i++ {
		if _, ok := c.Get(addr(fmt.Sprintf("10.0.0.%d:1", i))); ok {
			present++
		}
	}
	assert.LessOrEqual(t, present, 3)
}

func TestBounded_IdleTTL(t *testing.T) {
	const ttl = 200 * time.Millisecond
	c := NewBounded(10, ttl)
	k := addr("10.0.0.1:1")
	v := addr("192.168.0.1:1")
	c.Put(k, v)

	// Accessed before the TTL elapses: stays alive.
	time.Sleep(ttl / 2)
	_, ok := c.Get(k)
	require.True(t, ok)

	// No access for >= ttl: gone.
	time.Sleep(ttl + 50*time.Millisecond)
	_, ok = c.Get(k)
	assert.False(t, ok)
}

func TestBounded_IdleTTLRefreshedByAccess(t *testing.T) {
	const ttl = 200 * time.Millisecond
	c := NewBounded(10, ttl)
	k := addr("10.0.0.1:1")
	v := addr("192.168.0.1:1")
	c.Put(k, v)

	deadline := time.Now().Add(ttl * 3)
	for time.Now().Before(deadline) {
		time.Sleep(ttl / 3)
		_, ok := c.Get(k)
		require.True(t, ok, "entry accessed well within the idle window should not expire")
	}
}

func TestBounded_NonPositiveTTLBehavesUnbounded(t *testing.T) {
	c := NewBounded(2, 0)
	c.Put(addr("10.0.0.1:1"), addr("192.168.0.1:1"))
	time.Sleep(50 * time.Millisecond)
	_, ok := c.Get(addr("10.0.0.1:1"))
	assert.True(t, ok)
}

func TestBounded_InvalidateAndClear(t *testing.T) {
	c := NewBounded(10, time.Minute)
	k := addr("10.0.0.1:1")
	c.Put(k, addr("192.168.0.1:1"))
	c.Invalidate(k)
	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Put(k, addr("192.168.0.1:1"))
	c.Clear()
	_, ok = c.Get(k)
	assert.False(t, ok)
}
