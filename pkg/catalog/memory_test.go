package catalog

import (
	"context"
	"testing"
)

const memoryTestPrefix = "catalog:memory_test"

func TestMemoryStore_CaseInsensitiveLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(DefaultCatalog())

	p, err := s.ProductByName(ctx, "iphone 15 PRO")
	if err != nil || p == nil {
		t.Fatalf("%s - ProductByName: got %v, %v", memoryTestPrefix, p, err)
	}
	if p.PriceCents != 99900 {
		t.Errorf("%s - PriceCents = %d, want 99900", memoryTestPrefix, p.PriceCents)
	}

	inv, err := s.InventoryByProduct(ctx, " MacBook Pro 14 ")
	if err != nil || inv == nil {
		t.Fatalf("%s - InventoryByProduct: got %v, %v", memoryTestPrefix, inv, err)
	}
	if inv.Quantity != 3 {
		t.Errorf("%s - Quantity = %d, want 3", memoryTestPrefix, inv.Quantity)
	}

	est, err := s.ShippingEstimateByProduct(ctx, "airpods pro")
	if err != nil || est == nil {
		t.Fatalf("%s - ShippingEstimateByProduct: got %v, %v", memoryTestPrefix, est, err)
	}

	tr, err := s.TrackingByNumber(ctx, " 1Z999\n")
	if err != nil || tr == nil {
		t.Fatalf("%s - TrackingByNumber: got %v, %v", memoryTestPrefix, tr, err)
	}
}

func TestMemoryStore_NotFoundIsNilNil(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	if p, err := s.ProductByName(ctx, "Pixel"); p != nil || err != nil {
		t.Errorf("%s - ProductByName = %v, %v; want nil, nil", memoryTestPrefix, p, err)
	}
	if r, err := s.InventoryByProduct(ctx, "Pixel"); r != nil || err != nil {
		t.Errorf("%s - InventoryByProduct = %v, %v; want nil, nil", memoryTestPrefix, r, err)
	}
	if tr, err := s.TrackingByNumber(ctx, "nope"); tr != nil || err != nil {
		t.Errorf("%s - TrackingByNumber = %v, %v; want nil, nil", memoryTestPrefix, tr, err)
	}
	if p, err := s.PaymentByIntent(ctx, "pi_x"); p != nil || err != nil {
		t.Errorf("%s - PaymentByIntent = %v, %v; want nil, nil", memoryTestPrefix, p, err)
	}
}

func TestMemoryStore_UpsertPayment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	if err := s.UpsertPayment(ctx, &Payment{IntentID: "pi_1", AmountCents: 999, Currency: "usd", Status: "requires_payment_method"}); err != nil {
		t.Fatalf("%s - insert: %v", memoryTestPrefix, err)
	}
	if err := s.UpsertPayment(ctx, &Payment{IntentID: "pi_1", AmountCents: 1, Currency: "eur", Status: "succeeded"}); err != nil {
		t.Fatalf("%s - update: %v", memoryTestPrefix, err)
	}

	got, err := s.PaymentByIntent(ctx, " pi_1 ")
	if err != nil || got == nil {
		t.Fatalf("%s - PaymentByIntent: %v, %v", memoryTestPrefix, got, err)
	}
	if got.Status != "succeeded" {
		t.Errorf("%s - Status = %q, want succeeded", memoryTestPrefix, got.Status)
	}
	if got.AmountCents != 999 || got.Currency != "usd" {
		t.Errorf("%s - upsert must only change status, got %+v", memoryTestPrefix, got)
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("%s - CreatedAt not set", memoryTestPrefix)
	}
}
