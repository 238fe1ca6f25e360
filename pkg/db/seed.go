package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/agentmesh/pkg/catalog"
)

const seedLogPrefix = "db:seed"

// SeedCatalog upserts every record of c in one transaction. Idempotent: re-seeding the
// same file leaves the tables unchanged.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool, c *catalog.Catalog) error {
	if c == nil {
		return fmt.Errorf("%s - nil catalog", seedLogPrefix)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%s - invalid catalog: %w", seedLogPrefix, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s - begin tx: %w", seedLogPrefix, err)
	}
	defer tx.Rollback(ctx)

	if err := seedRows(ctx, tx, c); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s - commit: %w", seedLogPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - Seeded %d products, %d inventory, %d shipping, %d tracking, %d payments",
		seedLogPrefix, len(c.Products), len(c.Inventory), len(c.ShippingEstimates), len(c.Tracking), len(c.Payments)))
	return nil
}

func seedRows(ctx context.Context, tx pgx.Tx, c *catalog.Catalog) error {
	for _, p := range c.Products {
		_, err := tx.Exec(ctx,
			`INSERT INTO products (name, description, price_cents)
			 VALUES ($1, $2, $3)
			 ON CONFLICT ((LOWER(name))) DO UPDATE SET
			   name = EXCLUDED.name,
			   description = EXCLUDED.description,
			   price_cents = EXCLUDED.price_cents,
			   modified = NOW()`,
			p.Name, p.Description, p.PriceCents)
		if err != nil {
			return fmt.Errorf("%s - product %s: %w", seedLogPrefix, p.Name, err)
		}
	}

	for _, r := range c.Inventory {
		_, err := tx.Exec(ctx,
			`INSERT INTO inventory (product_name, quantity, status)
			 VALUES ($1, $2, $3)
			 ON CONFLICT ((LOWER(product_name))) DO UPDATE SET
			   quantity = EXCLUDED.quantity,
			   status = EXCLUDED.status,
			   modified = NOW()`,
			r.ProductName, r.Quantity, r.Status)
		if err != nil {
			return fmt.Errorf("%s - inventory %s: %w", seedLogPrefix, r.ProductName, err)
		}
	}

	for _, e := range c.ShippingEstimates {
		_, err := tx.Exec(ctx,
			`INSERT INTO shipping_estimates (product_name, standard_days, standard_cost, express_days, express_cost)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT ((LOWER(product_name))) DO UPDATE SET
			   standard_days = EXCLUDED.standard_days,
			   standard_cost = EXCLUDED.standard_cost,
			   express_days = EXCLUDED.express_days,
			   express_cost = EXCLUDED.express_cost`,
			e.ProductName, e.StandardDays, e.StandardCost, e.ExpressDays, e.ExpressCost)
		if err != nil {
			return fmt.Errorf("%s - shipping estimate %s: %w", seedLogPrefix, e.ProductName, err)
		}
	}

	for _, t := range c.Tracking {
		_, err := tx.Exec(ctx,
			`INSERT INTO tracking_info (tracking_number, status, last_location, eta)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (tracking_number) DO UPDATE SET
			   status = EXCLUDED.status,
			   last_location = EXCLUDED.last_location,
			   eta = EXCLUDED.eta`,
			t.TrackingNumber, t.Status, t.LastLocation, t.ETA)
		if err != nil {
			return fmt.Errorf("%s - tracking %s: %w", seedLogPrefix, t.TrackingNumber, err)
		}
	}

	for _, p := range c.Payments {
		_, err := tx.Exec(ctx, upsertPaymentSQL,
			p.IntentID, p.AmountCents, p.Currency, p.CustomerEmail, p.Status, nullTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("%s - payment %s: %w", seedLogPrefix, p.IntentID, err)
		}
	}
	return nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
