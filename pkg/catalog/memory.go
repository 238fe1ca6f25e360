package catalog

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a Store backed by maps. It is safe for concurrent use.
type MemoryStore struct {
	products  map[string]Product
	inventory map[string]InventoryRecord
	shipping  map[string]ShippingEstimate
	tracking  map[string]TrackingInfo

	mu       sync.RWMutex
	payments map[string]Payment
}

// NewMemoryStore builds a store from a catalog. A nil catalog yields an empty store.
func NewMemoryStore(c *Catalog) *MemoryStore {
	s := &MemoryStore{
		products:  map[string]Product{},
		inventory: map[string]InventoryRecord{},
		shipping:  map[string]ShippingEstimate{},
		tracking:  map[string]TrackingInfo{},
		payments:  map[string]Payment{},
	}
	if c == nil {
		return s
	}
	for _, p := range c.Products {
		s.products[key(p.Name)] = p
	}
	for _, r := range c.Inventory {
		s.inventory[key(r.ProductName)] = r
	}
	for _, e := range c.ShippingEstimates {
		s.shipping[key(e.ProductName)] = e
	}
	for _, t := range c.Tracking {
		s.tracking[t.TrackingNumber] = t
	}
	for _, p := range c.Payments {
		s.payments[p.IntentID] = p
	}
	return s
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) ProductByName(_ context.Context, name string) (*Product, error) {
	if p, ok := s.products[key(name)]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) InventoryByProduct(_ context.Context, productName string) (*InventoryRecord, error) {
	if r, ok := s.inventory[key(productName)]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *MemoryStore) ShippingEstimateByProduct(_ context.Context, productName string) (*ShippingEstimate, error) {
	if e, ok := s.shipping[key(productName)]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *MemoryStore) TrackingByNumber(_ context.Context, trackingNumber string) (*TrackingInfo, error) {
	if t, ok := s.tracking[strings.TrimSpace(trackingNumber)]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpsertPayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.payments[p.IntentID]; ok {
		existing.Status = p.Status
		s.payments[p.IntentID] = existing
		return nil
	}
	stored := *p
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.payments[p.IntentID] = stored
	return nil
}

func (s *MemoryStore) PaymentByIntent(_ context.Context, intentID string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.payments[strings.TrimSpace(intentID)]; ok {
		return &p, nil
	}
	return nil, nil
}
