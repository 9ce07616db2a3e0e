// Package config defines the configuration for the push delivery agent.
// Configuration is loaded once at process initialization (daemon start or
// Lambda cold start) and is immutable thereafter. It follows 12-Factor App
// principles by strictly separating code from configuration.
//
// Values are resolved from the OS environment, with a dotenv file as a
// lower-priority source for local development. Any invalid value causes the
// process to fail immediately on startup (fail fast).
//
// On top of the environment-sourced values, the package implements the
// backend base URL resolution chain: a launch-URL `api` query override wins
// over the compiled-in default, which wins over the agent's own origin.
package config

import "time"

// Config is the top-level configuration struct for the push agent.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"push-agent"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server  ServerConfig
	Backend BackendConfig
	Bridge  BridgeConfig

	Observability ObservabilityConfig
}

// ServerConfig holds HTTP ingress settings for the daemon host.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// BackendConfig holds settings for outbound engagement reporting.
type BackendConfig struct {
	// LaunchURL is the URL the agent was registered under. Its `api` query
	// parameter, when present, overrides every other base URL source.
	LaunchURL string `envconfig:"AGENT_LAUNCH_URL"`

	// DefaultBaseURL is the compiled-in fallback base URL for the campaign
	// backend, used when the launch URL carries no override.
	DefaultBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:3000"`

	UserAgent string        `envconfig:"REPORT_USER_AGENT" default:"NotivIQ-Agent/1.0"`
	Timeout   time.Duration `envconfig:"REPORT_TIMEOUT" default:"10s"`
}

// BridgeConfig holds settings for the platform display bridge: the surface
// that renders notifications, opens windows, and owns the current push
// subscription on the agent's behalf.
type BridgeConfig struct {
	URL     string        `envconfig:"PLATFORM_BRIDGE_URL" validate:"omitempty,url"`
	Timeout time.Duration `envconfig:"PLATFORM_BRIDGE_TIMEOUT" default:"5s"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"PushAgent"`
}

// ReportBaseURL resolves the effective backend base URL for this process
// using the override chain described in the package comment. The result
// never carries a trailing slash.
func (c *Config) ReportBaseURL() string {
	return ResolveBaseURL(c.Backend.LaunchURL, c.Backend.DefaultBaseURL)
}
