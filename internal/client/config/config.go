package config

import "time"

// Config holds runtime settings for the Rycus client.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - DBPath: path of the local SQLite database file.
//   - PollInterval: how often the notification poller refreshes counters.
//   - RequestTimeout: per-request timeout for backend calls.
//   - DevMode: development bypass for the billing gate; never set in
//     production builds.
//   - VIPEmails: allow-listed owner emails exempt from billing checks.
type Config struct {
	APIBaseURL     string
	DBPath         string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DevMode        bool
	VIPEmails      []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DBPath = "rycus.db"
	c.PollInterval = 12 * time.Second
	c.RequestTimeout = 20 * time.Second
	c.DevMode = false
	c.VIPEmails = nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// environment variables, a JSON file (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
