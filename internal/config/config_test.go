package config

import (
	"os"
	"testing"
	"time"

	"github.com/morezero/agentmesh/pkg/auth"
)

var configEnvVars = []string{
	"AGENT_NAME", "AGENT_PUBLIC_URL", "AGENT_VERSION",
	"A2A_API_KEY", "A2A_AUTH_MODE",
	"COMMS_URL", "SERVICE_NAME", "AUTH_EVENT_SUBJECT",
	"TASK_REQUEST_TIMEOUT", "PROXY_TIMEOUT", "ORCHESTRATOR_CALL_TIMEOUT", "ORCHESTRATOR_MAX_CONCURRENCY",
	"DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH", "CATALOG_FILE",
	"MESH_FILE", "HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "METRICS_ENABLED", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range configEnvVars {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.AgentName != "product_catalog_agent" {
		t.Errorf("config:config_test - AgentName = %q, want product_catalog_agent", cfg.AgentName)
	}
	if cfg.AgentVersion != "1.0.0" {
		t.Errorf("config:config_test - AgentVersion = %q, want 1.0.0", cfg.AgentVersion)
	}
	if cfg.APIKey != "" {
		t.Errorf("config:config_test - APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.AuthMode != "soft" {
		t.Errorf("config:config_test - AuthMode = %q, want soft", cfg.AuthMode)
	}
	if cfg.COMMSURL != "" {
		t.Errorf("config:config_test - COMMSURL = %q, want empty", cfg.COMMSURL)
	}
	if cfg.COMMSName != "agentmesh" {
		t.Errorf("config:config_test - COMMSName = %q, want agentmesh", cfg.COMMSName)
	}
	if cfg.RequestTimeout != 25*time.Second {
		t.Errorf("config:config_test - RequestTimeout = %v, want 25s", cfg.RequestTimeout)
	}
	if cfg.ProxyTimeout != 10*time.Second {
		t.Errorf("config:config_test - ProxyTimeout = %v, want 10s", cfg.ProxyTimeout)
	}
	if cfg.OrchestratorCallTimeout != 20*time.Second {
		t.Errorf("config:config_test - OrchestratorCallTimeout = %v, want 20s", cfg.OrchestratorCallTimeout)
	}
	if cfg.OrchestratorMaxConcurrency != 0 {
		t.Errorf("config:config_test - OrchestratorMaxConcurrency = %d, want 0", cfg.OrchestratorMaxConcurrency)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("config:config_test - DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if cfg.MigrationPath != "migrations" {
		t.Errorf("config:config_test - MigrationPath = %q, want %q", cfg.MigrationPath, "migrations")
	}
	if cfg.HTTPPort != 0 {
		t.Errorf("config:config_test - HTTPPort = %d, want 0", cfg.HTTPPort)
	}
	if cfg.HealthCheckTimeout != 5*time.Second {
		t.Errorf("config:config_test - HealthCheckTimeout = %v, want 5s", cfg.HealthCheckTimeout)
	}
	if !cfg.MetricsEnabled {
		t.Error("config:config_test - expected MetricsEnabled=true by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("config:config_test - LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"AGENT_NAME":                   "shipping_agent",
		"AGENT_PUBLIC_URL":             "http://shipping.internal:8003",
		"A2A_API_KEY":                  "s3cr3t",
		"A2A_AUTH_MODE":                "hard",
		"COMMS_URL":                    "nats://custom:4222",
		"SERVICE_NAME":                 "shipping",
		"AUTH_EVENT_SUBJECT":           "custom.auth",
		"TASK_REQUEST_TIMEOUT":         "10s",
		"PROXY_TIMEOUT":                "3s",
		"ORCHESTRATOR_CALL_TIMEOUT":    "7s",
		"ORCHESTRATOR_MAX_CONCURRENCY": "2",
		"DATABASE_URL":                 "postgres://test@localhost/test",
		"RUN_MIGRATIONS":               "true",
		"MIGRATION_PATH":               "/tmp/migrations",
		"CATALOG_FILE":                 "/tmp/catalog.json",
		"MESH_FILE":                    "/tmp/mesh.json",
		"HTTP_PORT":                    "9090",
		"HEALTH_CHECK_TIMEOUT":         "10s",
		"METRICS_ENABLED":              "false",
		"LOG_LEVEL":                    "debug",
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.AgentName != "shipping_agent" {
		t.Errorf("config:config_test - AgentName = %q", cfg.AgentName)
	}
	if cfg.APIKey != "s3cr3t" || cfg.AuthMode != "hard" {
		t.Errorf("config:config_test - auth = (%q, %q)", cfg.APIKey, cfg.AuthMode)
	}
	if cfg.AuthEventSubject != "custom.auth" {
		t.Errorf("config:config_test - AuthEventSubject = %q", cfg.AuthEventSubject)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.ProxyTimeout != 3*time.Second || cfg.OrchestratorCallTimeout != 7*time.Second {
		t.Errorf("config:config_test - timeouts = %v %v %v", cfg.RequestTimeout, cfg.ProxyTimeout, cfg.OrchestratorCallTimeout)
	}
	if cfg.OrchestratorMaxConcurrency != 2 {
		t.Errorf("config:config_test - OrchestratorMaxConcurrency = %d, want 2", cfg.OrchestratorMaxConcurrency)
	}
	if !cfg.RunMigrations || cfg.MigrationPath != "/tmp/migrations" {
		t.Errorf("config:config_test - migrations = (%v, %q)", cfg.RunMigrations, cfg.MigrationPath)
	}
	if cfg.CatalogFile != "/tmp/catalog.json" || cfg.MeshFile != "/tmp/mesh.json" {
		t.Errorf("config:config_test - files = (%q, %q)", cfg.CatalogFile, cfg.MeshFile)
	}
	if cfg.HTTPPort != 9090 || cfg.ListenPort() != 9090 {
		t.Errorf("config:config_test - HTTPPort = %d, ListenPort = %d", cfg.HTTPPort, cfg.ListenPort())
	}
	if cfg.MetricsEnabled {
		t.Error("config:config_test - expected MetricsEnabled=false")
	}
	if cfg.PublicURL() != "http://shipping.internal:8003" {
		t.Errorf("config:config_test - PublicURL = %q", cfg.PublicURL())
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASK_REQUEST_TIMEOUT", "not-a-duration")

	if _, err := LoadConfig(); err == nil {
		t.Error("config:config_test - expected error for invalid duration")
	}
}

func TestListenPortAndPublicURL_AgentDefaults(t *testing.T) {
	tests := []struct {
		agent string
		port  int
	}{
		{"product_catalog_agent", 8001},
		{"inventory_agent", 8002},
		{"shipping_agent", 8003},
		{"payment_agent", 8004},
		{"unknown_agent", 8080},
	}
	for _, tt := range tests {
		cfg := &Config{AgentName: tt.agent}
		if got := cfg.ListenPort(); got != tt.port {
			t.Errorf("config:config_test - ListenPort(%s) = %d, want %d", tt.agent, got, tt.port)
		}
	}

	cfg := &Config{AgentName: "inventory_agent"}
	if got := cfg.PublicURL(); got != "http://localhost:8002" {
		t.Errorf("config:config_test - PublicURL = %q, want http://localhost:8002", got)
	}
}

func validServeConfig() *Config {
	return &Config{
		AgentName:          "payment_agent",
		AuthMode:           "soft",
		RequestTimeout:     25 * time.Second,
		HealthCheckTimeout: 5 * time.Second,
	}
}

func TestValidateForServe(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"hard mode", func(c *Config) { c.AuthMode = "HARD" }, false},
		{"unknown agent", func(c *Config) { c.AgentName = "billing_agent" }, true},
		{"bad mode", func(c *Config) { c.AuthMode = "strict" }, true},
		{"negative port", func(c *Config) { c.HTTPPort = -1 }, true},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"zero health timeout", func(c *Config) { c.HealthCheckTimeout = 0 }, true},
		{"migrations without db", func(c *Config) { c.RunMigrations = true }, true},
		{"migrations with db", func(c *Config) {
			c.RunMigrations = true
			c.DatabaseURL = "postgres://localhost/agentmesh"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validServeConfig()
			tt.mutate(cfg)
			err := cfg.ValidateForServe()
			if (err != nil) != tt.wantErr {
				t.Errorf("config:config_test - ValidateForServe() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForDB(t *testing.T) {
	if err := (&Config{}).ValidateForDB(); err == nil {
		t.Error("config:config_test - expected error without DATABASE_URL")
	}
	if err := (&Config{DatabaseURL: "postgres://localhost/agentmesh"}).ValidateForDB(); err != nil {
		t.Errorf("config:config_test - unexpected error: %v", err)
	}
}

func TestValidateForClient(t *testing.T) {
	ok := &Config{ProxyTimeout: time.Second, OrchestratorCallTimeout: time.Second}
	if err := ok.ValidateForClient(); err != nil {
		t.Errorf("config:config_test - unexpected error: %v", err)
	}
	if err := (&Config{OrchestratorCallTimeout: time.Second}).ValidateForClient(); err == nil {
		t.Error("config:config_test - expected error for zero PROXY_TIMEOUT")
	}
	if err := (&Config{ProxyTimeout: time.Second}).ValidateForClient(); err == nil {
		t.Error("config:config_test - expected error for zero ORCHESTRATOR_CALL_TIMEOUT")
	}
	neg := &Config{ProxyTimeout: time.Second, OrchestratorCallTimeout: time.Second, OrchestratorMaxConcurrency: -1}
	if err := neg.ValidateForClient(); err == nil {
		t.Error("config:config_test - expected error for negative ORCHESTRATOR_MAX_CONCURRENCY")
	}
}

func TestAuthContext(t *testing.T) {
	cfg := &Config{APIKey: "s3cr3t", AuthMode: "hard"}
	ac, err := cfg.AuthContext()
	if err != nil {
		t.Fatalf("config:config_test - AuthContext: %v", err)
	}
	if !ac.Enabled() || ac.Mode() != auth.ModeHard {
		t.Errorf("config:config_test - AuthContext = %s", ac)
	}

	disabled, err := (&Config{}).AuthContext()
	if err != nil {
		t.Fatalf("config:config_test - AuthContext: %v", err)
	}
	if disabled.Enabled() || disabled.Mode() != auth.ModeSoft {
		t.Errorf("config:config_test - empty config AuthContext = %s", disabled)
	}

	if _, err := (&Config{AuthMode: "strict"}).AuthContext(); err == nil {
		t.Error("config:config_test - expected error for unknown mode")
	}
}
