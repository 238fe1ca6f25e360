package db

import (
	"context"
	"strings"
	"testing"
)

const ensureTestPrefix = "db:ensure_test"

func TestWithDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		db      string
		want    string
		wantErr bool
	}{
		{"keeps query", "postgres://u:p@localhost:5432/agentmesh?sslmode=disable", "agentmesh_test",
			"postgres://u:p@localhost:5432/agentmesh_test?sslmode=disable", false},
		{"adds path", "postgres://localhost:5432", "agentmesh", "postgres://localhost:5432/agentmesh", false},
		{"invalid url", "://bad", "agentmesh", "", true},
		{"hyphen rejected", "postgres://localhost/agentmesh", "agent-mesh", "", true},
		{"injection rejected", "postgres://localhost/agentmesh", `x"; DROP`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithDatabaseName(tt.url, tt.db)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s - WithDatabaseName error = %v, wantErr %v", ensureTestPrefix, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("%s - WithDatabaseName = %q, want %q", ensureTestPrefix, got, tt.want)
			}
		})
	}
}

func TestCatalogDatabase(t *testing.T) {
	name, admin, err := catalogDatabase("postgres://u:p@db:5432/agentmesh_test?sslmode=disable")
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", ensureTestPrefix, err)
	}
	if name != "agentmesh_test" {
		t.Errorf("%s - name = %q", ensureTestPrefix, name)
	}
	if admin != "postgres://u:p@db:5432/postgres?sslmode=disable" {
		t.Errorf("%s - admin URL = %q", ensureTestPrefix, admin)
	}

	for _, bad := range []string{
		"://invalid",
		"postgres://localhost:5432/?sslmode=disable",
		"postgres://localhost:5432/agent-mesh",
	} {
		if _, _, err := catalogDatabase(bad); err == nil {
			t.Errorf("%s - catalogDatabase(%q) expected error", ensureTestPrefix, bad)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := map[string]string{
		"agentmesh": `"agentmesh"`,
		"uuid-ossp": `"uuid-ossp"`,
		`db"name`:   `"db""name"`,
	}
	for in, want := range tests {
		if got := quoteIdent(in); got != want {
			t.Errorf("%s - quoteIdent(%q) = %q, want %q", ensureTestPrefix, in, got, want)
		}
	}
}

func TestEnsureDatabase_RejectsBadNameBeforeConnecting(t *testing.T) {
	// No server listens here; the name check must fail first.
	err := EnsureDatabase(context.Background(), "postgres://localhost:1/agent-mesh", "pgcrypto")
	if err == nil || !strings.Contains(err.Error(), "invalid characters") {
		t.Errorf("%s - err = %v, want invalid characters", ensureTestPrefix, err)
	}
}
