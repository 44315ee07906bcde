package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkarpov/examgate/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags:
//
//	-a string   base URL of the backend API
//	-s string   path of the capture device's still frame
//	-f string   sqlite file for local session data
//	-t int      request timeout in seconds
//	-l string   log level
//
// Args are filtered through flagx.Pick so only these flags are parsed here.
func parseFlags(cfg *Config) {
	args := flagx.Pick(os.Args[1:], "-a", "-s", "-f", "-t", "-l")

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.CaptureSourcePath, "s", cfg.CaptureSourcePath, "capture source path")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
