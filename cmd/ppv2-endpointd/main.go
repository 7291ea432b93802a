// Command ppv2-endpointd runs a standalone PPv2 datagram endpoint: it
// listens on a UDP socket, decodes PPv2/DGRAM headers from trusted
// balancers, and logs every pipeline event. Intended as a reference
// daemon and a manual test harness for ppv2udp.Endpoint, not a complete
// forwarding proxy -- operators embedding the pipeline into an actual
// backend should use ppv2udp directly.
package main

import (
	"flag"
	"log"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relayproto/ppv2"
	"github.com/relayproto/ppv2/ppv2cache"
	"github.com/relayproto/ppv2/ppv2conf"
	"github.com/relayproto/ppv2/ppv2metrics"
	"github.com/relayproto/ppv2/ppv2trust"
	"github.com/relayproto/ppv2/ppv2udp"
)

// patternFormatter renders a logrus entry against a template string with
// %time%, %level% and %msg% placeholders, per ppv2conf.LoggerConfig.Pattern.
type patternFormatter struct {
	pattern string
}

func (f *patternFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	out := f.pattern
	out = strings.Replace(out, "%time%", entry.Time.Format(time.RFC3339), 1)
	out = strings.Replace(out, "%level%", strings.ToUpper(entry.Level.String()), 1)
	out = strings.Replace(out, "%msg%", entry.Message, 1)
	return []byte(out + "\n"), nil
}

func main() {
	log.SetFlags(log.Lshortfile)

	configPath := flag.String("config", "", "Path to a YAML endpoint config file (see ppv2conf.Config).")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("-config is required")
	}

	cfg, err := ppv2conf.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("resolve listen address: %v", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	var cache ppv2cache.Cache
	if cfg.Cache.Bounded {
		cache = ppv2cache.NewBounded(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.IdleTTL))
	} else {
		cache = ppv2cache.NewUnbounded()
	}

	trust := ppv2trust.None()
	if len(cfg.TrustedCIDRs) > 0 {
		t, err := ppv2trust.FromCIDRs(cfg.TrustedCIDRs...)
		if err != nil {
			log.Fatalf("invalid trustedCIDRs: %v", err)
		}
		trust = t
	}

	logger := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("invalid logger.level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&patternFormatter{pattern: cfg.Logger.Pattern})

	ep := ppv2udp.NewEndpointBuilder(conn).
		WithCache(cache).
		WithTrust(trust).
		WithForwardOnCacheMiss(cfg.ForwardOnCacheMiss).
		WithMetrics(ppv2metrics.NewLogging(logger)).
		WithDecodeOptions(ppv2.DecodeOptions{ParseTLV: cfg.ParseTLV}).
		Build()

	log.Printf("ppv2-endpointd listening on %s", cfg.ListenAddr)
	buf := make([]byte, 65535)
	for {
		d, err := ep.Receive(buf)
		if err != nil {
			log.Printf("receive: %v", err)
			continue
		}
		log.Printf("datagram from %s: %d bytes", d.Remote(), len(d.Payload()))
	}
}
