package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	c := &Config{}
	c.Environment = "development"
	c.Backend.Type = "clickhouse"
	c.Polymarket.WebSocketURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	c.Polymarket.AssetIDs = []string{"1234"}
	return c
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }, "environment"},
		{"missing backend", func(c *Config) { c.Backend.Type = "" }, "backend.type"},
		{"unknown backend", func(c *Config) { c.Backend.Type = "postgres" }, "backend.type"},
		{"missing websocket url", func(c *Config) { c.Polymarket.WebSocketURL = "" }, "websocket_url"},
		{"no asset ids", func(c *Config) { c.Polymarket.AssetIDs = nil }, "asset_ids"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

// Out-of-range engine knobs must not fail validation: the engine falls
// back to its defaults when a tuning value is unusable.
func TestValidateToleratesOutOfRangeEngineKnobs(t *testing.T) {
	c := validConfig()
	c.Engine.EntryThreshold = 1.5
	if err := c.Validate(); err != nil {
		t.Fatalf("entry_threshold=1.5 must not fail validation, got %v", err)
	}
	c.Engine.EntryThreshold = -0.2
	if err := c.Validate(); err != nil {
		t.Fatalf("entry_threshold=-0.2 must not fail validation, got %v", err)
	}
}
