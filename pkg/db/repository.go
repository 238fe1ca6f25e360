package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/agentmesh/pkg/catalog"
)

const repoLogPrefix = "db:repository"

var _ catalog.Store = (*Repository)(nil)

// Repository is the Postgres implementation of catalog.Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// =========================================================================
// CATALOG LOOKUPS
// =========================================================================

// ProductByName finds a product by name, case-insensitively.
func (r *Repository) ProductByName(ctx context.Context, name string) (*catalog.Product, error) {
	slog.Debug(fmt.Sprintf("%s - ProductByName name=%s", repoLogPrefix, name))

	var p catalog.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price_cents
		 FROM products
		 WHERE LOWER(name) = LOWER(TRIM($1))
		 LIMIT 1`, name).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - ProductByName failed: %w", repoLogPrefix, err)
	}
	return &p, nil
}

// InventoryByProduct finds the stock record of a product, case-insensitively.
func (r *Repository) InventoryByProduct(ctx context.Context, productName string) (*catalog.InventoryRecord, error) {
	var rec catalog.InventoryRecord
	err := r.pool.QueryRow(ctx,
		`SELECT product_name, quantity, status
		 FROM inventory
		 WHERE LOWER(product_name) = LOWER(TRIM($1))
		 LIMIT 1`, productName).Scan(&rec.ProductName, &rec.Quantity, &rec.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - InventoryByProduct failed: %w", repoLogPrefix, err)
	}
	return &rec, nil
}

// ShippingEstimateByProduct finds the delivery options of a product, case-insensitively.
func (r *Repository) ShippingEstimateByProduct(ctx context.Context, productName string) (*catalog.ShippingEstimate, error) {
	var e catalog.ShippingEstimate
	err := r.pool.QueryRow(ctx,
		`SELECT product_name, standard_days, standard_cost, express_days, express_cost
		 FROM shipping_estimates
		 WHERE LOWER(product_name) = LOWER(TRIM($1))
		 LIMIT 1`, productName).Scan(&e.ProductName, &e.StandardDays, &e.StandardCost, &e.ExpressDays, &e.ExpressCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - ShippingEstimateByProduct failed: %w", repoLogPrefix, err)
	}
	return &e, nil
}

// TrackingByNumber finds a shipment by tracking number; surrounding whitespace is ignored.
func (r *Repository) TrackingByNumber(ctx context.Context, trackingNumber string) (*catalog.TrackingInfo, error) {
	var t catalog.TrackingInfo
	err := r.pool.QueryRow(ctx,
		`SELECT tracking_number, status, last_location, eta
		 FROM tracking_info
		 WHERE tracking_number = TRIM($1)
		 LIMIT 1`, trackingNumber).Scan(&t.TrackingNumber, &t.Status, &t.LastLocation, &t.ETA)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - TrackingByNumber failed: %w", repoLogPrefix, err)
	}
	return &t, nil
}

// =========================================================================
// PAYMENTS
// =========================================================================

// UpsertPayment records a payment. An existing intent only has its status updated.
func (r *Repository) UpsertPayment(ctx context.Context, p *catalog.Payment) error {
	slog.Info(fmt.Sprintf("%s - UpsertPayment id=%s status=%s", repoLogPrefix, p.IntentID, p.Status))

	_, err := r.pool.Exec(ctx, upsertPaymentSQL,
		p.IntentID, p.AmountCents, p.Currency, p.CustomerEmail, p.Status, nullTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("%s - UpsertPayment failed: %w", repoLogPrefix, err)
	}
	return nil
}

// PaymentByIntent finds a payment by intent id.
func (r *Repository) PaymentByIntent(ctx context.Context, intentID string) (*catalog.Payment, error) {
	var p catalog.Payment
	err := r.pool.QueryRow(ctx,
		`SELECT payment_intent_id, amount_cents, currency, COALESCE(customer_email, ''), status, created_at
		 FROM payments
		 WHERE payment_intent_id = TRIM($1)
		 LIMIT 1`, intentID).Scan(&p.IntentID, &p.AmountCents, &p.Currency, &p.CustomerEmail, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - PaymentByIntent failed: %w", repoLogPrefix, err)
	}
	return &p, nil
}

const upsertPaymentSQL = `INSERT INTO payments (payment_intent_id, amount_cents, currency, customer_email, status, created_at)
	 VALUES ($1, $2, $3, NULLIF($4, ''), $5, COALESCE($6, NOW()))
	 ON CONFLICT (payment_intent_id) DO UPDATE SET
	   status = EXCLUDED.status`
