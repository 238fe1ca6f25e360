package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// catalogTables lists every table created by the catalog migrations.
var catalogTables = []string{"products", "inventory", "shipping_estimates", "tracking_info", "payments"}

// ClearCatalog truncates all catalog tables. Schema is preserved; RESTART IDENTITY
// resets sequences.
func ClearCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing catalog tables", clearLogPrefix))

	_, err := pool.Exec(ctx, `TRUNCATE TABLE
		products,
		inventory,
		shipping_estimates,
		tracking_info,
		payments
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Catalog cleared", clearLogPrefix))
	return nil
}
