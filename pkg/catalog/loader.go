package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const logPrefix = "catalog:loader"

// LoadFile reads a catalog JSON file. An empty path returns the default catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read %s: %w", logPrefix, path, err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s - failed to parse %s: %w", logPrefix, path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s - invalid catalog %s: %w", logPrefix, path, err)
	}
	slog.Info(fmt.Sprintf("%s - Loaded catalog from %s (%d products)", logPrefix, path, len(c.Products)))
	return &c, nil
}

// Validate checks required fields and duplicate keys.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, p := range c.Products {
		key := strings.ToLower(p.Name)
		if key == "" {
			return fmt.Errorf("product with empty name")
		}
		if seen[key] {
			return fmt.Errorf("duplicate product %q", p.Name)
		}
		if p.PriceCents < 0 {
			return fmt.Errorf("product %q has negative price", p.Name)
		}
		seen[key] = true
	}
	for _, r := range c.Inventory {
		if r.ProductName == "" {
			return fmt.Errorf("inventory record with empty product name")
		}
		if r.Quantity < 0 {
			return fmt.Errorf("inventory for %q has negative quantity", r.ProductName)
		}
	}
	for _, s := range c.ShippingEstimates {
		if s.ProductName == "" {
			return fmt.Errorf("shipping estimate with empty product name")
		}
	}
	for _, t := range c.Tracking {
		if t.TrackingNumber == "" {
			return fmt.Errorf("tracking entry with empty number")
		}
	}
	for _, p := range c.Payments {
		if p.IntentID == "" {
			return fmt.Errorf("payment with empty intent id")
		}
	}
	return nil
}

// DefaultCatalog is the built-in demo data.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Products: []Product{
			{ID: 1, Name: "iPhone 15 Pro", Description: "6.1-inch Super Retina XDR display, A17 Pro chip, titanium design", PriceCents: 99900},
			{ID: 2, Name: "MacBook Pro 14", Description: "14-inch Liquid Retina XDR display, M3 Pro chip, 18GB unified memory", PriceCents: 199900},
			{ID: 3, Name: "AirPods Pro", Description: "Active noise cancellation, adaptive audio, USB-C charging case", PriceCents: 24900},
		},
		Inventory: []InventoryRecord{
			{ProductName: "iPhone 15 Pro", Quantity: 42, Status: "in stock"},
			{ProductName: "MacBook Pro 14", Quantity: 3, Status: "low stock"},
			{ProductName: "AirPods Pro", Quantity: 0, Status: "out of stock"},
		},
		ShippingEstimates: []ShippingEstimate{
			{ProductName: "iPhone 15 Pro", StandardDays: "3-5 business days", StandardCost: "free", ExpressDays: "1-2 business days", ExpressCost: "$19.99"},
			{ProductName: "MacBook Pro 14", StandardDays: "5-7 business days", StandardCost: "free", ExpressDays: "2 business days", ExpressCost: "$29.99"},
			{ProductName: "AirPods Pro", StandardDays: "3-5 business days", StandardCost: "$4.99", ExpressDays: "next business day", ExpressCost: "$14.99"},
		},
		Tracking: []TrackingInfo{
			{TrackingNumber: "1Z999", Status: "in transit", LastLocation: "Memphis, TN", ETA: "2 business days"},
			{TrackingNumber: "1Z12345", Status: "delivered", LastLocation: "San Francisco, CA", ETA: "delivered"},
		},
	}
}
