// Package catalog holds the product, inventory, shipping and payment data the agents serve.
package catalog

import (
	"context"
	"time"
)

// Product is a catalog entry. Prices are in cents.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// InventoryRecord is the stock level of one product.
type InventoryRecord struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
}

// ShippingEstimate holds the delivery options for one product.
type ShippingEstimate struct {
	ProductName  string `json:"product_name"`
	StandardDays string `json:"standard_days"`
	StandardCost string `json:"standard_cost"`
	ExpressDays  string `json:"express_days"`
	ExpressCost  string `json:"express_cost"`
}

// TrackingInfo is the last known state of a shipment.
type TrackingInfo struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
	LastLocation   string `json:"last_location"`
	ETA            string `json:"eta"`
}

// Payment is a recorded payment intent.
type Payment struct {
	IntentID      string    `json:"payment_intent_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is the data access the skills need. Lookups return (nil, nil) when nothing
// matches and ignore surrounding whitespace in their argument. Product names match
// case-insensitively; tracking numbers and intent ids match exactly.
type Store interface {
	Ping(ctx context.Context) error
	ProductByName(ctx context.Context, name string) (*Product, error)
	InventoryByProduct(ctx context.Context, productName string) (*InventoryRecord, error)
	ShippingEstimateByProduct(ctx context.Context, productName string) (*ShippingEstimate, error)
	TrackingByNumber(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
	// UpsertPayment inserts a payment or, if the intent id exists, updates its status.
	UpsertPayment(ctx context.Context, p *Payment) error
	PaymentByIntent(ctx context.Context, intentID string) (*Payment, error)
}

// Catalog is the file format used to seed a store.
type Catalog struct {
	Products          []Product          `json:"products"`
	Inventory         []InventoryRecord  `json:"inventory"`
	ShippingEstimates []ShippingEstimate `json:"shipping_estimates"`
	Tracking          []TrackingInfo     `json:"tracking"`
	Payments          []Payment          `json:"payments,omitempty"`
}

// ProductNames returns the product names in file order.
func (c *Catalog) ProductNames() []string {
	names := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		names = append(names, p.Name)
	}
	return names
}
