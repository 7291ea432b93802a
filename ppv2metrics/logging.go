package ppv2metrics

import (
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/relayproto/ppv2"
)

// Logging reports every event as a structured logrus entry. Useful on its
// own for small deployments, or alongside Prometheus when operators want
// both a metrics surface and an audit trail of individual header-parse
// failures.
type Logging struct {
	Log *logrus.Logger
}

// NewLogging returns a Logging listener. If log is nil, logrus.StandardLogger
// is used.
func NewLogging(log *logrus.Logger) *Logging {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logging{Log: log}
}

func (l *Logging) OnHeaderParsed(h ppv2.Header) {
	entry := l.Log.WithFields(logrus.Fields{
		"command":   h.Command().String(),
		"family":    h.Family().String(),
		"transport": h.Transport().String(),
	})
	if src, ok := h.Source(); ok {
		entry = entry.WithField("source", src)
	}
	entry.Debug("ppv2udp: header parsed")
}

func (l *Logging) OnParseError(cause error) {
	l.Log.WithError(cause).Warn("ppv2udp: header parse failed")
}

func (l *Logging) OnCacheHit(client netip.AddrPort) {
	l.Log.WithField("client", client).Debug("ppv2udp: cache hit")
}

func (l *Logging) OnCacheMiss(client netip.AddrPort) {
	l.Log.WithField("client", client).Debug("ppv2udp: cache miss")
}

func (l *Logging) OnTrustedProxy(balancer netip.AddrPort) {
	l.Log.WithField("balancer", balancer).Debug("ppv2udp: trusted proxy header accepted")
}

func (l *Logging) OnUntrustedProxy(balancer netip.AddrPort) {
	l.Log.WithField("balancer", balancer).Warn("ppv2udp: untrusted sender, passing through")
}

func (l *Logging) OnLocal(balancer netip.AddrPort) {
	l.Log.WithField("balancer", balancer).Debug("ppv2udp: local header received")
}
