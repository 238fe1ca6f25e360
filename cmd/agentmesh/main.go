// Package main is the entrypoint for an agentmesh agent (binary name "agentmesh").
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/agentmesh/internal/config"
	"github.com/morezero/agentmesh/internal/server"
	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/db"
)

const usage = `Usage: agentmesh [command]
       agentmesh serve [agent]             Start an agent (HTTP card, tasks, health, metrics).
       agentmesh migrate up                Run database migrations.
       agentmesh migrate down              Roll back (not supported; migrations are forward-only).
       agentmesh migrate status            Show migration status.
       agentmesh ensure-db [name] [ext...] Create database if missing (default name: agentmesh_test), enabling extensions.
       agentmesh clear                     Truncate all catalog tables; schema is preserved.
       agentmesh seed [file]               Upsert a catalog JSON file (default: built-in demo catalog).
       agentmesh agents                    List the agents this binary can serve.

Commands:
  serve [agent]   (default) Start the agent named by the argument or AGENT_NAME
                  (product_catalog_agent, inventory_agent, shipping_agent, payment_agent).
  migrate up      Run database migrations only.
  migrate down    No-op; migrations are forward-only.
  migrate status  Show current migration status.
  ensure-db       Create database (e.g. agentmesh_test) on same host as DATABASE_URL.
  clear           Truncate catalog data; schema preserved.
  seed [file]     Seed products, inventory, shipping, tracking and payments (file or CATALOG_FILE).

Environment: AGENT_NAME, HTTP_PORT, AGENT_PUBLIC_URL, A2A_API_KEY, A2A_AUTH_MODE (soft|hard),
COMMS_URL, DATABASE_URL (required for DB commands), MIGRATION_PATH, CATALOG_FILE, LOG_LEVEL.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("agentmesh migrate: require subcommand (up, down, status)")
		}
		sub := args[1]
		switch sub {
		case "up":
			if err := withPool(runMigrateUp); err != nil {
				log.Fatalf("agentmesh migrate up: %v", err)
			}
		case "status":
			if err := withPool(runMigrateStatus); err != nil {
				log.Fatalf("agentmesh migrate status: %v", err)
			}
		case "down":
			if err := withPool(runMigrateDown); err != nil {
				log.Fatalf("agentmesh migrate down: %v", err)
			}
		default:
			log.Fatalf("agentmesh migrate: unknown subcommand %q (use up, down, status)", sub)
		}
		return
	case "clear":
		if err := withPool(runClear); err != nil {
			log.Fatalf("agentmesh clear: %v", err)
		}
		return
	case "seed":
		file := ""
		if len(args) > 1 {
			file = args[1]
		}
		err := withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
			return runSeed(ctx, cfg, pool, file)
		})
		if err != nil {
			log.Fatalf("agentmesh seed: %v", err)
		}
		return
	case "ensure-db":
		dbName := "agentmesh_test"
		if len(args) > 1 && args[1] != "" {
			dbName = args[1]
		}
		var extensions []string
		if len(args) > 2 {
			extensions = args[2:]
		}
		if err := runEnsureDB(dbName, extensions); err != nil {
			log.Fatalf("agentmesh ensure-db: %v", err)
		}
		return
	case "agents":
		for _, line := range agentLines() {
			fmt.Println(line)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
		break
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	agentName := ""
	if len(args) > 1 {
		agentName = args[1]
	}
	if err := server.Run(agentName); err != nil {
		log.Fatalf("agentmesh: %v", err)
	}
}

// withPool loads config, connects to DATABASE_URL and runs fn.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	server.SetupLogging(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func runMigrateUp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	migrations, err := db.LoadMigrationFiles(cfg.MigrationPath)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := db.RunMigrations(ctx, pool, migrations); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runMigrateStatus(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	return db.MigrationStatus(ctx, pool, cfg.MigrationPath)
}

func runMigrateDown(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
	return db.MigrationDown(ctx, pool, cfg.MigrationPath)
}

func runClear(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
	if err := db.ClearCatalog(ctx, pool); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, fileOverride string) error {
	path := fileOverride
	if path == "" {
		path = cfg.CatalogFile
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := db.SeedCatalog(ctx, pool, c); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func runEnsureDB(dbName string, extensions []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	targetURL, err := db.WithDatabaseName(cfg.DatabaseURL, dbName)
	if err != nil {
		return err
	}
	if err := db.EnsureDatabase(context.Background(), targetURL, extensions...); err != nil {
		return err
	}
	fmt.Printf("Database %q is ready.\n", dbName)
	return nil
}
