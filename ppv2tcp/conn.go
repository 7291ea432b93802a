// Package ppv2tcp wraps a stream-oriented net.Conn/net.Listener so that a
// PPv2 header, if one is present, is transparently consumed from the start
// of the stream and exposed as LocalAddr/RemoteAddr, matching the teacher
// package's Conn/Listener shape but built on ppv2's generalized decoder
// instead of an adapter-specific header type.
package ppv2tcp

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/relayproto/ppv2"
	"github.com/relayproto/ppv2/ppv1compat"
)

// Conn wraps a net.Conn, parsing a PPv2 header from the start of the
// stream on first use (first Read, or first call to RemoteAddr/LocalAddr/
// ProxyHeader) and caching the result. The stream is sniffed for either the
// binary v2 signature or the text v1 "PROXY " preamble; a balancer still
// emitting v1 is handled transparently through ppv1compat.
type Conn struct {
	net.Conn

	once     sync.Once
	r        *bufio.Reader
	deadline time.Time

	hdr   ppv2.Header
	v1hdr ppv1compat.Header
	isV1  bool
	err   error

	local, remote net.Addr
}

// NewConn wraps c, reading the PPv2 header (if any) no later than deadline.
// A zero deadline means no read deadline is imposed beyond whatever is
// already set on c.
func NewConn(c net.Conn, deadline time.Time) *Conn {
	return &Conn{Conn: c, deadline: deadline, r: bufio.NewReader(c)}
}

// v1Preamble is the first byte of every v1 header ("PROXY ..."); a v2
// header always starts with 0x0D, so peeking one byte tells them apart.
const v1Preamble = 'P'

func (c *Conn) parse() {
	if !c.deadline.IsZero() {
		c.Conn.SetReadDeadline(c.deadline)
		defer c.Conn.SetReadDeadline(time.Time{})
	}

	first, err := c.r.Peek(1)
	if err != nil {
		c.err = err
		return
	}

	if first[0] == v1Preamble {
		c.parseV1()
		return
	}
	c.parseV2()
}

func (c *Conn) parseV1() {
	c.v1hdr, c.err = ppv1compat.Parse(c.r)
	if c.err != nil {
		return
	}
	c.isV1 = true
	if c.v1hdr.Family != ppv1compat.FamilyUnknown {
		c.remote = net.TCPAddrFromAddrPort(c.v1hdr.Source)
		c.local = net.TCPAddrFromAddrPort(c.v1hdr.Dest)
	}
}

func (c *Conn) parseV2() {
	var prefix [16]byte
	if _, err := readFull(c.r, prefix[:]); err != nil {
		c.err = err
		return
	}

	length, err := ppv2.PeekLength(prefix)
	if err != nil {
		c.err = err
		return
	}

	buf := make([]byte, length)
	copy(buf, prefix[:])
	if length > 16 {
		if _, err := readFull(c.r, buf[16:]); err != nil {
			c.err = err
			return
		}
	}

	c.hdr, c.err = ppv2.DecodeWithOptions(buf, ppv2.DecodeOptions{})
	if c.err != nil {
		return
	}

	if src, ok := c.hdr.Source(); ok {
		c.remote = net.TCPAddrFromAddrPort(src)
	}
	if dst, ok := c.hdr.Dest(); ok {
		c.local = net.TCPAddrFromAddrPort(dst)
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ProxyHeader returns the decoded v2 header, parsing it from the stream if
// this is the first call into the Conn. Only meaningful when IsV1 is
// false; a connection that spoke v1 has no v2 Header to return.
func (c *Conn) ProxyHeader() (ppv2.Header, error) {
	c.once.Do(c.parse)
	return c.hdr, c.err
}

// IsV1 reports whether the connection's header was the legacy v1 text
// format, parsed via ppv1compat.
func (c *Conn) IsV1() bool {
	c.once.Do(c.parse)
	return c.isV1
}

// V1Header returns the decoded v1 header. Only meaningful when IsV1 is
// true.
func (c *Conn) V1Header() (ppv1compat.Header, error) {
	c.once.Do(c.parse)
	return c.v1hdr, c.err
}

// Read reads application data, after consuming and parsing the PPv2 header
// if it hasn't been already.
func (c *Conn) Read(p []byte) (int, error) {
	c.once.Do(c.parse)
	if c.err != nil {
		return 0, c.err
	}
	return c.r.Read(p)
}

// RemoteAddr returns the client address from the PPv2 header when one was
// present and trusted, otherwise the connection's own socket peer address.
func (c *Conn) RemoteAddr() net.Addr {
	c.once.Do(c.parse)
	if c.err != nil || c.remote == nil {
		return c.Conn.RemoteAddr()
	}
	return c.remote
}

// LocalAddr returns the balancer-facing destination address from the PPv2
// header when one was present, otherwise the connection's own local
// address.
func (c *Conn) LocalAddr() net.Addr {
	c.once.Do(c.parse)
	if c.err != nil || c.local == nil {
		return c.Conn.LocalAddr()
	}
	return c.local
}
