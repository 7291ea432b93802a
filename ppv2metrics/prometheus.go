package ppv2metrics

import (
	"net/netip"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relayproto/ppv2"
)

// Event labels for Prometheus.events, Prometheus's single CounterVec.
const (
	EventHeaderParsed   = "header_parsed"
	EventParseError     = "parse_error"
	EventCacheHit       = "cache_hit"
	EventCacheMiss      = "cache_miss"
	EventTrustedProxy   = "trusted_proxy"
	EventUntrustedProxy = "untrusted_proxy"
	EventLocal          = "local"
)

// Prometheus reports pipeline events as a single event-labelled counter,
// plus a latency histogram the embedding application populates itself.
// Register it with a prometheus.Registerer once at startup.
type Prometheus struct {
	// Events counts every callback, labelled by event name (see the Event*
	// constants) and, for OnHeaderParsed, by PPv2 command.
	Events *prometheus.CounterVec

	// HeaderParseLatency is registered but never observed by this package:
	// the embedding application times its own decode call (or the interval
	// between Receive calls) and reports it here, since Endpoint itself has
	// no opinion on what "latency" should measure for a given deployment.
	HeaderParseLatency prometheus.Histogram
}

// NewPrometheus builds a Prometheus listener and registers its collectors
// with reg. namespace is used as the metric name prefix, e.g. "ppv2udp".
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	p := &Prometheus{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "PPv2 pipeline events, by event and (for header_parsed) command.",
		}, []string{"event", "command"}),
		HeaderParseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "header_parse_latency_seconds",
			Help:      "Header parse latency as observed by the embedding application.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 20),
		}),
	}
	reg.MustRegister(p.Events, p.HeaderParseLatency)
	return p
}

func (p *Prometheus) OnHeaderParsed(h ppv2.Header) {
	p.Events.WithLabelValues(EventHeaderParsed, h.Command().String()).Inc()
}

func (p *Prometheus) OnParseError(error) { p.Events.WithLabelValues(EventParseError, "").Inc() }
func (p *Prometheus) OnCacheHit(netip.AddrPort) { p.Events.WithLabelValues(EventCacheHit, "").Inc() }
func (p *Prometheus) OnCacheMiss(netip.AddrPort) { p.Events.WithLabelValues(EventCacheMiss, "").Inc() }
func (p *Prometheus) OnTrustedProxy(netip.AddrPort) { p.Events.WithLabelValues(EventTrustedProxy, "").Inc() }
func (p *Prometheus) OnUntrustedProxy(netip.AddrPort) { p.Events.WithLabelValues(EventUntrustedProxy, "").Inc() }
func (p *Prometheus) OnLocal(netip.AddrPort) { p.Events.WithLabelValues(EventLocal, "").Inc() }
