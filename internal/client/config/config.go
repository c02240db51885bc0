package config

import "time"

// Config holds runtime settings for the TripKeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DocPollInterval: how often document subscriptions poll for changes.
//   - DatabaseDSN: path to the local SQLite database.
//
// Units: intervals are time.Duration values (e.g., 3*time.Second).
type Config struct {
	ServerEndpointAddr  string
	DatabaseDSN         string
	OnlineCheckInterval time.Duration
	DocPollInterval     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "tripkeeper.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.DocPollInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
