// Package config holds runtime settings for the examgate client.
//
// Values come from three layers, later layers overriding earlier ones:
// built-in defaults, a JSON file named by -c/-config, and command-line
// flags.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerBaseURL: root of the backend API, including the version prefix.
//   - CaptureSourcePath: path the capture device keeps its current still
//     frame at.
//   - DatabasePath: sqlite file for locally persisted session data.
//   - RequestTimeout: per-request timeout for backend calls.
//   - LogLevel: zerolog level string.
type Config struct {
	ServerBaseURL     string
	CaptureSourcePath string
	DatabasePath      string
	RequestTimeout    time.Duration
	LogLevel          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000/api/v1"
	c.CaptureSourcePath = "/var/run/examgate/frame.jpg"
	c.DatabasePath = "examgate.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// Load constructs a Config: defaults, then the JSON file (if given), then
// flags.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
