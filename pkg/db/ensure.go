package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ensureLogPrefix = "db:ensure"

// safeDBName matches allowed database names (alphanumeric and underscore only).
var safeDBName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// WithDatabaseName returns databaseURL pointing at dbName; the query (e.g. sslmode) is kept.
func WithDatabaseName(databaseURL, dbName string) (string, error) {
	if !safeDBName.MatchString(dbName) {
		return "", fmt.Errorf("%s - database name %q contains invalid characters", ensureLogPrefix, dbName)
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("%s - invalid database URL: %w", ensureLogPrefix, err)
	}
	u.Path = "/" + dbName
	u.RawPath = ""
	return u.String(), nil
}

// catalogDatabase extracts the catalog database name from databaseURL and returns it
// with the URL of the maintenance database on the same server.
func catalogDatabase(databaseURL string) (name, adminURL string, err error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", fmt.Errorf("%s - invalid database URL: %w", ensureLogPrefix, err)
	}
	name = strings.TrimSpace(strings.TrimPrefix(u.Path, "/"))
	if name == "" {
		return "", "", fmt.Errorf("%s - database name empty in URL", ensureLogPrefix)
	}
	if !safeDBName.MatchString(name) {
		return "", "", fmt.Errorf("%s - database name %q contains invalid characters", ensureLogPrefix, name)
	}
	adminURL, err = WithDatabaseName(databaseURL, "postgres")
	if err != nil {
		return "", "", err
	}
	return name, adminURL, nil
}

// EnsureDatabase creates the catalog database named in databaseURL if it does not
// exist, then enables the given extensions in it. `agentmesh ensure-db` calls it
// before migrations so a fresh server (e.g. agentmesh_test in CI) needs no manual setup.
func EnsureDatabase(ctx context.Context, databaseURL string, extensions ...string) error {
	name, adminURL, err := catalogDatabase(databaseURL)
	if err != nil {
		return err
	}

	created, err := createDatabase(ctx, adminURL, name)
	if err != nil {
		return err
	}
	if created {
		slog.Info(fmt.Sprintf("%s - Created database %q", ensureLogPrefix, name))
	} else {
		slog.Info(fmt.Sprintf("%s - Database %q already exists", ensureLogPrefix, name))
	}

	if len(extensions) == 0 {
		return nil
	}
	return enableExtensions(ctx, databaseURL, extensions)
}

// createDatabase connects to the maintenance database and creates name when missing.
func createDatabase(ctx context.Context, adminURL, name string) (bool, error) {
	cfg, err := pgxpool.ParseConfig(adminURL)
	if err != nil {
		return false, fmt.Errorf("%s - failed to parse postgres URL: %w", ensureLogPrefix, err)
	}
	// CREATE DATABASE cannot run inside the implicit transaction of the extended protocol.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return false, fmt.Errorf("%s - failed to connect to postgres: %w", ensureLogPrefix, err)
	}
	defer pool.Close()

	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s - failed to check database %q: %w", ensureLogPrefix, name, err)
	}
	if exists {
		return false, nil
	}
	if _, err := pool.Exec(ctx, "CREATE DATABASE "+quoteIdent(name)); err != nil {
		return false, fmt.Errorf("%s - CREATE DATABASE %q failed: %w", ensureLogPrefix, name, err)
	}
	return true, nil
}

func enableExtensions(ctx context.Context, databaseURL string, extensions []string) error {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, ext := range extensions {
		if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS "+quoteIdent(ext)); err != nil {
			return fmt.Errorf("%s - CREATE EXTENSION %s: %w", ensureLogPrefix, ext, err)
		}
		slog.Info(fmt.Sprintf("%s - Extension %s enabled", ensureLogPrefix, ext))
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
