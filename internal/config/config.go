// Package config provides configuration for the client binary using
// command-line flags and environment variables, and for the development
// server using environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// DefaultBackendURL is the production backend the client talks to when no
// override is given.
const DefaultBackendURL = "https://rainflowweb.com/demo/react_test"

// Options holds the configuration values for the client.
type Options struct {
	// BackendURL is the base URL of the account backend.
	BackendURL string

	// SessionFile is the path of the durable session record.
	SessionFile string

	// Timeout bounds each backend request.
	Timeout time.Duration

	// LogLevel is the minimum level emitted by the logger.
	LogLevel string

	// Config is the path to an optional JSON config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.BackendURL, "url", DefaultBackendURL, "backend base URL")
	flag.StringVar(&options.SessionFile, "session", "session.json", "path to the durable session record")
	flag.DurationVar(&options.Timeout, "timeout", 15*time.Second, "per-request timeout")
	flag.StringVar(&options.LogLevel, "level", "info", "log level")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	// Environment overrides win over flags and file.
	if url := os.Getenv("BACKEND_URL"); url != "" {
		options.BackendURL = url
	}
	if path := os.Getenv("SESSION_FILE"); path != "" {
		options.SessionFile = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	return options
}
