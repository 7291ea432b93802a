// Package ppv2conf loads operator configuration for a PPv2 endpoint from
// YAML: which balancers to trust, how to cache client addresses, and how
// to behave when a reply's destination has no cached balancer.
package ppv2conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s"
// or "5m", since yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("ppv2conf: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LoggerConfig configures the ppv2metrics.Logging listener.
type LoggerConfig struct {
	// Level is a logrus level name ("debug", "info", "warn", ...).
	// Defaults to "info".
	Level string `yaml:"level"`

	// Pattern is a log line template with %time%, %level% and %msg%
	// placeholders, rendered by ppv2-endpointd's pattern formatter.
	// Defaults to "%time% [%level%] %msg%".
	Pattern string `yaml:"pattern"`
}

// CacheConfig configures the client/balancer address cache.
type CacheConfig struct {
	// Bounded enables the capacity-limited, idle-expiring cache. When
	// false, an unbounded cache with no expiry is used.
	Bounded bool `yaml:"bounded"`

	// MaxEntries bounds the cache when Bounded is set. Defaults to 65536.
	MaxEntries int `yaml:"maxEntries"`

	// IdleTTL expires a bounded entry after this long without access.
	// Zero disables time-based expiry (capacity-only eviction).
	IdleTTL Duration `yaml:"idleTTL"`
}

// Config is the full operator-facing configuration for a PPv2 endpoint.
type Config struct {
	// ListenAddr is the UDP address to bind, e.g. "0.0.0.0:5000".
	ListenAddr string `yaml:"listenAddr"`

	// TrustedCIDRs lists the balancer subnets whose PPv2 headers are
	// honored. An empty list trusts no sender -- PPv2 headers are never
	// parsed, and every datagram is treated as arriving directly from
	// its physical sender.
	TrustedCIDRs []string `yaml:"trustedCIDRs"`

	// ForwardOnCacheMiss forwards a reply straight to its destination
	// when no balancer mapping is cached, instead of dropping it.
	ForwardOnCacheMiss bool `yaml:"forwardOnCacheMiss"`

	// ParseTLV enables decoding the TLV region of received headers.
	ParseTLV bool `yaml:"parseTLV"`

	Cache CacheConfig `yaml:"cache"`

	Logger LoggerConfig `yaml:"logger"`
}

func applyDefaults(c *Config) {
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 65536
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Pattern == "" {
		c.Logger.Pattern = "%time% [%level%] %msg%"
	}
}

// Load reads and parses a Config from the YAML file at path, applying
// defaults for any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ppv2conf: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ppv2conf: parse %s: %w", path, err)
	}
	if c.ListenAddr == "" {
		return nil, fmt.Errorf("ppv2conf: %s: listenAddr is required", path)
	}
	applyDefaults(&c)
	return &c, nil
}
