// Package config provides agent and client configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/agentmesh/pkg/agents"
	"github.com/morezero/agentmesh/pkg/auth"
)

const logPrefix = "config:LoadConfig"

// Config holds agentmesh configuration for agent servers, DB tooling and the support client.
type Config struct {
	// Agent identity: which of the built-in agents `serve` hosts.
	AgentName      string `envconfig:"AGENT_NAME" default:"product_catalog_agent"`
	AgentPublicURL string `envconfig:"AGENT_PUBLIC_URL"`
	AgentVersion   string `envconfig:"AGENT_VERSION" default:"1.0.0"`

	// Shared-secret auth (empty key = auth disabled)
	APIKey   string `envconfig:"A2A_API_KEY"`
	AuthMode string `envconfig:"A2A_AUTH_MODE" default:"soft"`

	// COMMS: auth events are published to NATS at COMMSURL when set.
	COMMSURL         string `envconfig:"COMMS_URL"`
	COMMSName        string `envconfig:"SERVICE_NAME" default:"agentmesh"`
	AuthEventSubject string `envconfig:"AUTH_EVENT_SUBJECT"`

	// Timeouts
	RequestTimeout          time.Duration `envconfig:"TASK_REQUEST_TIMEOUT" default:"25s"`
	ProxyTimeout            time.Duration `envconfig:"PROXY_TIMEOUT" default:"10s"`
	OrchestratorCallTimeout time.Duration `envconfig:"ORCHESTRATOR_CALL_TIMEOUT" default:"20s"`

	// Upper bound on concurrent sub-agent calls per orchestrated request (0 = no limit)
	OrchestratorMaxConcurrency int `envconfig:"ORCHESTRATOR_MAX_CONCURRENCY" default:"0"`

	// Catalog storage: Postgres when DatabaseURL is set, in-memory otherwise.
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"migrations"`
	CatalogFile   string `envconfig:"CATALOG_FILE"`

	// Mesh topology used by the support client
	MeshFile string `envconfig:"MESH_FILE"`

	// HTTP (0 = the agent's default port)
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"0"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`
	MetricsEnabled     bool          `envconfig:"METRICS_ENABLED" default:"true"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running an agent server.
func (c *Config) ValidateForServe() error {
	if _, ok := agents.Lookup(c.AgentName); !ok {
		return fmt.Errorf("%s - AGENT_NAME %q is not a known agent (want one of %v)", logPrefix, c.AgentName, agents.Names())
	}
	if _, err := auth.ParseMode(c.AuthMode); err != nil {
		return fmt.Errorf("%s - A2A_AUTH_MODE: %w", logPrefix, err)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("%s - HTTP_PORT %d out of range", logPrefix, c.HTTPPort)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - TASK_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if c.RunMigrations && c.DatabaseURL == "" {
		return fmt.Errorf("%s - RUN_MIGRATIONS requires DATABASE_URL", logPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate, clear, seed).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}

// ValidateForClient checks required config when running the support client.
func (c *Config) ValidateForClient() error {
	if c.ProxyTimeout <= 0 {
		return fmt.Errorf("%s - PROXY_TIMEOUT must be positive", logPrefix)
	}
	if c.OrchestratorCallTimeout <= 0 {
		return fmt.Errorf("%s - ORCHESTRATOR_CALL_TIMEOUT must be positive", logPrefix)
	}
	if c.OrchestratorMaxConcurrency < 0 {
		return fmt.Errorf("%s - ORCHESTRATOR_MAX_CONCURRENCY must not be negative", logPrefix)
	}
	return nil
}

// AuthContext derives the immutable auth context. Call after ValidateForServe.
func (c *Config) AuthContext() (auth.Context, error) {
	mode, err := auth.ParseMode(c.AuthMode)
	if err != nil {
		return auth.Context{}, fmt.Errorf("%s - A2A_AUTH_MODE: %w", logPrefix, err)
	}
	return auth.NewContext(c.APIKey, mode), nil
}

// ListenPort returns HTTP_PORT, or the agent's default port when unset.
func (c *Config) ListenPort() int {
	if c.HTTPPort > 0 {
		return c.HTTPPort
	}
	if def, ok := agents.Lookup(c.AgentName); ok {
		return def.DefaultPort
	}
	return 8080
}

// PublicURL returns the endpoint advertised in the capability descriptor.
func (c *Config) PublicURL() string {
	if c.AgentPublicURL != "" {
		return c.AgentPublicURL
	}
	return fmt.Sprintf("http://localhost:%d", c.ListenPort())
}
