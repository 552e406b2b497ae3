package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Timeout != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Slots != 100 {
		t.Errorf("default slots = %d, want 100", cfg.Slots)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
interface: eth1
slots: 8
rate: 50
metrics_addr: ":9273"
targets:
  - addr: 1.1.1.1
    count: 3
    interval: 100
  - addr: 8.8.8.8
    count: 1
    interval: 1000
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Interface != "eth1" {
		t.Errorf("interface = %q, want eth1", cfg.Interface)
	}
	if cfg.Slots != 8 {
		t.Errorf("slots = %d, want 8", cfg.Slots)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want default 5s preserved", cfg.Timeout)
	}
	if len(cfg.Targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(cfg.Targets))
	}
	if cfg.Targets[0].Addr != "1.1.1.1" || cfg.Targets[0].Count != 3 || cfg.Targets[0].Interval != 100 {
		t.Errorf("targets[0] = %+v", cfg.Targets[0])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero slots", func(c *Config) { c.Slots = 0 }, "slots"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"negative rate", func(c *Config) { c.Rate = -1 }, "rate"},
		{"bad address", func(c *Config) {
			c.Targets = []Target{{Addr: "not-an-ip", Count: 1, Interval: 100}}
		}, "targets[0]"},
		{"ipv6 address", func(c *Config) {
			c.Targets = []Target{{Addr: "::1", Count: 1, Interval: 100}}
		}, "not IPv4"},
		{"count too high", func(c *Config) {
			c.Targets = []Target{{Addr: "1.1.1.1", Count: 11, Interval: 100}}
		}, "count"},
		{"count too low", func(c *Config) {
			c.Targets = []Target{{Addr: "1.1.1.1", Count: 0, Interval: 100}}
		}, "count"},
		{"interval too high", func(c *Config) {
			c.Targets = []Target{{Addr: "1.1.1.1", Count: 1, Interval: 1001}}
		}, "interval"},
		{"interval too low", func(c *Config) {
			c.Targets = []Target{{Addr: "1.1.1.1", Count: 1, Interval: 0}}
		}, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := Default()
	cfg.Slots = 0
	cfg.Targets = []Target{{Addr: "1.1.1.1", Count: 99, Interval: 100}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"slots", "targets[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, missing %q", err, want)
		}
	}
}
