package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	defaultAPIBase   = "http://127.0.0.1:8787"
	defaultSimListen = "127.0.0.1:8787"
)

// Client captures the engine-side configuration, loaded from the
// environment with opinionated defaults.
type Client struct {
	APIBase          string
	APIKey           string
	Model            string
	Verbosity        string
	Thinking         string
	DeveloperMessage string
}

// Sim captures the scripted backend's configuration.
type Sim struct {
	ListenAddr string
	APIKey     string
}

// FromEnv loads the client configuration.
func FromEnv() (Client, error) {
	cfg := Client{
		APIBase:          getenv("GRIDPILOT_API_BASE", defaultAPIBase),
		APIKey:           os.Getenv("GRIDPILOT_API_KEY"),
		Model:            os.Getenv("GRIDPILOT_MODEL"),
		Verbosity:        os.Getenv("GRIDPILOT_VERBOSITY"),
		Thinking:         os.Getenv("GRIDPILOT_THINKING"),
		DeveloperMessage: os.Getenv("GRIDPILOT_DEVELOPER_MESSAGE"),
	}
	parsed, err := url.Parse(strings.TrimSpace(cfg.APIBase))
	if err != nil {
		return Client{}, fmt.Errorf("invalid api base %q: %w", cfg.APIBase, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Client{}, fmt.Errorf("invalid api base %q: scheme must be http or https", cfg.APIBase)
	}
	if parsed.Host == "" {
		return Client{}, fmt.Errorf("invalid api base %q: host required", cfg.APIBase)
	}
	return cfg, nil
}

// SimFromEnv loads the scripted backend configuration.
func SimFromEnv() (Sim, error) {
	cfg := Sim{
		ListenAddr: getenv("GRIDPILOT_SIM_LISTEN", defaultSimListen),
		APIKey:     os.Getenv("GRIDPILOT_SIM_API_KEY"),
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return Sim{}, fmt.Errorf("sim listen address required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
