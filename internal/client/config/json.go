package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dkarpov/examgate/internal/flagx"
)

// duration unmarshals either a duration string ("15s") or a bare number of
// seconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(val) * time.Second
	default:
		return fmt.Errorf("invalid duration %q", string(b))
	}
	return nil
}

// jsonConfig is a DTO used exclusively for JSON unmarshalling.
type jsonConfig struct {
	ServerBaseURL     string   `json:"server_base_url"`
	CaptureSourcePath string   `json:"capture_source_path"`
	DatabasePath      string   `json:"database_path"`
	RequestTimeout    duration `json:"request_timeout"`
	LogLevel          string   `json:"log_level"`
}

// parseJSON overlays cfg with values from the JSON file named by the
// -c/-config flags. Absent file path means no JSON layer; absent fields
// keep their previous values. Read or unmarshal errors panic, matching the
// flag layer: a broken explicit configuration should stop startup.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.CaptureSourcePath != "" {
		cfg.CaptureSourcePath = jc.CaptureSourcePath
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
