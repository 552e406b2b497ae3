// Package config holds the zping runtime configuration, loadable from a
// YAML file and overridable by CLI flags.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/silexio/zping/common/constant"
)

// Target is one probe target row: an IPv4 address, how many attempts to
// make, and the gap between attempts in milliseconds.
type Target struct {
	Addr     string `yaml:"addr"`
	Count    int    `yaml:"count"`
	Interval int    `yaml:"interval"`
}

// Config is the complete runtime configuration.
type Config struct {
	Interface   string        `yaml:"interface"`    // outgoing interface; empty picks one
	Timeout     time.Duration `yaml:"timeout"`      // per-attempt reply deadline
	Slots       int           `yaml:"slots"`        // send-buffer pool size
	Rate        float64       `yaml:"rate"`         // global probes per second; 0 disables
	MetricsAddr string        `yaml:"metrics_addr"` // promhttp listen address; empty disables
	GeoIPDB     string        `yaml:"geoip_db"`     // GeoIP2 country database; empty disables
	Targets     []Target      `yaml:"targets"`
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	return &Config{
		Timeout: constant.DEFAULT_TIMEOUT,
		Slots:   constant.DEFAULT_SLOT_COUNT,
	}
}

// Load reads and parses the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and collects all violations.
func (c *Config) Validate() error {
	var errs []string

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("timeout %v, must be > 0", c.Timeout))
	}
	if c.Slots < 1 {
		errs = append(errs, fmt.Sprintf("slots %d, must be >= 1", c.Slots))
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Sprintf("rate %v, must be >= 0", c.Rate))
	}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("targets[%d]: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks one target row against the accepted bounds.
func (t Target) Validate() error {
	addr, err := netip.ParseAddr(t.Addr)
	if err != nil {
		return fmt.Errorf("address %q: %w", t.Addr, err)
	}
	if !addr.Is4() {
		return fmt.Errorf("address %q is not IPv4", t.Addr)
	}
	if t.Count < constant.MIN_PROBE_COUNT || t.Count > constant.MAX_PROBE_COUNT {
		return fmt.Errorf("count %d out of range [%d, %d]", t.Count, constant.MIN_PROBE_COUNT, constant.MAX_PROBE_COUNT)
	}
	interval := time.Duration(t.Interval) * time.Millisecond
	if interval < constant.MIN_PROBE_INTERVAL || interval > constant.MAX_PROBE_INTERVAL {
		return fmt.Errorf("interval %dms out of range [%v, %v]", t.Interval, constant.MIN_PROBE_INTERVAL, constant.MAX_PROBE_INTERVAL)
	}
	return nil
}
