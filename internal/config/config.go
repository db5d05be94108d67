package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
)

// DefaultFileName is looked up in the working directory when no explicit
// path is given.
const DefaultFileName = "scconsole.json"

// Config is the client configuration. File values override the defaults,
// environment variables override the file.
type Config struct {
	// ServerURL is the ws:// or wss:// base URL of the session server.
	ServerURL string `json:"server_url" env:"SCCONSOLE_SERVER_URL"`

	// Token authenticates the operator.
	Token string `json:"token" env:"SCCONSOLE_TOKEN"`

	// DebugAddr serves /metrics and /status locally. Empty disables it.
	DebugAddr string `json:"debug_addr" env:"SCCONSOLE_DEBUG_ADDR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" env:"SCCONSOLE_LOG_LEVEL"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format" env:"SCCONSOLE_LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL: "ws://localhost:8443",
		DebugAddr: "127.0.0.1:9090",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the effective configuration. path may be empty, in which case
// DefaultFileName is used if present; a missing default file is not an
// error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file; defaults plus environment.
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("config: server_url required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}
