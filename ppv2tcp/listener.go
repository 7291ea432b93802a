package ppv2tcp

import (
	"net"
	"sort"
	"time"
)

// Rule configures how connections from a subnet are handled.
type Rule struct {
	// Subnet matches incoming IP addresses against this rule.
	Subnet *net.IPNet

	// Timeout bounds how long to wait for the PPv2 header before failing
	// the connection. Zero means no deadline beyond the listener's own.
	Timeout time.Duration
}

// Listener wraps a net.Listener, handling PPv2 headers for connections
// whose remote address matches a configured Rule. Connections from
// unmatched addresses are returned unwrapped.
type Listener struct {
	net.Listener

	rules []*Rule
	index map[string]*Rule
}

// NewListener wraps nl, applying rules to decide which accepted
// connections get PPv2 parsing.
func NewListener(nl net.Listener, rules ...Rule) *Listener {
	l := &Listener{
		Listener: nl,
		index:    make(map[string]*Rule, len(rules)),
		rules:    make([]*Rule, 0, len(rules)),
	}
	l.AddRules(rules)
	return l
}

// Accept waits for the next connection, wrapping it in a Conn if its
// remote address matches a registered rule.
func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	var remoteIP net.IP
	switch r := c.RemoteAddr().(type) {
	case *net.TCPAddr:
		remoteIP = r.IP
	default:
		return c, nil
	}
	for _, rule := range l.rules {
		if rule.Subnet.Contains(remoteIP) {
			if rule.Timeout == 0 {
				return NewConn(c, time.Time{}), nil
			}
			return NewConn(c, time.Now().Add(rule.Timeout)), nil
		}
	}
	return c, nil
}

// AddRules merges rules into the listener. Rules sharing a subnet keep the
// smaller nonzero timeout. Rules are matched most-specific subnet first.
func (l *Listener) AddRules(rules []Rule) {
	for _, r := range rules {
		name := r.Subnet.String()
		if existing, ok := l.index[name]; ok {
			if r.Timeout > 0 && (existing.Timeout == 0 || r.Timeout < existing.Timeout) {
				existing.Timeout = r.Timeout
			}
			continue
		}
		cpy := r
		l.index[name] = &cpy
		l.rules = append(l.rules, &cpy)
	}
	sort.Slice(l.rules, func(i, j int) bool {
		iOnes, iBits := l.rules[i].Subnet.Mask.Size()
		jOnes, jBits := l.rules[j].Subnet.Mask.Size()
		if iOnes == jOnes {
			return iBits > jBits
		}
		return iOnes > jOnes
	})
}
