package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/dispatcher"
)

const agentsTestPrefix = "agents:agents_test"

// failingStore fails product lookups.
type failingStore struct{ *catalog.MemoryStore }

var errStoreDown = errors.New("connection refused")

func (failingStore) ProductByName(context.Context, string) (*catalog.Product, error) {
	return nil, errStoreDown
}

// recordingStore remembers the last tracking number it was asked for.
type recordingStore struct {
	*catalog.MemoryStore
	lastTracking string
}

func (s *recordingStore) TrackingByNumber(ctx context.Context, n string) (*catalog.TrackingInfo, error) {
	s.lastTracking = n
	return s.MemoryStore.TrackingByNumber(ctx, n)
}

func newDispatcher(t *testing.T, name string, store catalog.Store) *dispatcher.Dispatcher {
	t.Helper()
	reg, err := NewRegistry(name, "http://localhost:0", "", store)
	if err != nil {
		t.Fatalf("%s - NewRegistry(%s): %v", agentsTestPrefix, name, err)
	}
	return dispatcher.NewDispatcher(reg)
}

func dispatch(t *testing.T, d *dispatcher.Dispatcher, skill string, args map[string]interface{}) *dispatcher.TaskResult {
	t.Helper()
	return d.Dispatch(context.Background(), &dispatcher.TaskRequest{SkillName: skill, Arguments: args, RequestID: "r1"})
}

func payloadOf(t *testing.T, res *dispatcher.TaskResult) map[string]interface{} {
	t.Helper()
	if !res.Succeeded() {
		t.Fatalf("%s - expected success, got %+v", agentsTestPrefix, res.Error)
	}
	m, ok := res.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("%s - payload is %T", agentsTestPrefix, res.Payload)
	}
	return m
}

func TestLookupAndNames(t *testing.T) {
	names := Names()
	if len(names) != 4 {
		t.Fatalf("%s - Names() = %v", agentsTestPrefix, names)
	}
	ports := map[int]bool{}
	for _, n := range names {
		d, ok := Lookup(n)
		if !ok {
			t.Fatalf("%s - Lookup(%s) missing", agentsTestPrefix, n)
		}
		ports[d.DefaultPort] = true
	}
	if len(ports) != 4 {
		t.Errorf("%s - default ports must be distinct", agentsTestPrefix)
	}
	if _, err := NewRegistry("weather_agent", "http://x", "", nil); err == nil {
		t.Errorf("%s - expected error for unknown agent", agentsTestPrefix)
	}
}

func TestDescriptors(t *testing.T) {
	store := catalog.NewMemoryStore(catalog.DefaultCatalog())
	want := map[string][]string{
		ProductCatalog: {"get_product_info"},
		Inventory:      {"get_inventory_info"},
		Shipping:       {"get_shipping_estimate", "get_tracking_info"},
		Payment:        {"create_payment_intent", "get_payment_status"},
	}
	for name, skills := range want {
		d := newDispatcher(t, name, store).Capabilities()
		if d.Name != name || d.Version != "1.0.0" {
			t.Errorf("%s - descriptor %s@%s", agentsTestPrefix, d.Name, d.Version)
		}
		if got := strings.Join(d.SkillNames(), ","); got != strings.Join(skills, ",") {
			t.Errorf("%s - %s skills = %s, want %v", agentsTestPrefix, name, got, skills)
		}
	}
}

func TestGetProductInfo(t *testing.T) {
	d := newDispatcher(t, ProductCatalog, catalog.NewMemoryStore(catalog.DefaultCatalog()))

	p := payloadOf(t, dispatch(t, d, "get_product_info", map[string]interface{}{"product_name": "iPhone 15 Pro"}))
	if p["price"] != "999.00" || p["found"] != true {
		t.Errorf("%s - payload = %v", agentsTestPrefix, p)
	}
	if !strings.Contains(p["summary"].(string), "Price: $999.00") {
		t.Errorf("%s - summary = %q", agentsTestPrefix, p["summary"])
	}

	p = payloadOf(t, dispatch(t, d, "get_product_info", map[string]interface{}{"product_name": "Pixel"}))
	if p["found"] != false {
		t.Errorf("%s - expected found=false, got %v", agentsTestPrefix, p)
	}

	res := dispatch(t, d, "get_product_info", map[string]interface{}{})
	if res.Kind() != dispatcher.KindInvalidArguments {
		t.Errorf("%s - missing product_name: kind = %q", agentsTestPrefix, res.Kind())
	}
}

func TestGetProductInfo_StoreErrorIsExecutionError(t *testing.T) {
	d := newDispatcher(t, ProductCatalog, failingStore{catalog.NewMemoryStore(nil)})

	res := dispatch(t, d, "get_product_info", map[string]interface{}{"product_name": "iPhone 15 Pro"})
	if res.Kind() != dispatcher.KindExecutionError {
		t.Fatalf("%s - kind = %q, want EXECUTION_ERROR", agentsTestPrefix, res.Kind())
	}
	if strings.Contains(res.Error.Message, "connection refused") {
		t.Errorf("%s - internal error leaked: %q", agentsTestPrefix, res.Error.Message)
	}
}

func TestGetInventoryInfo(t *testing.T) {
	d := newDispatcher(t, Inventory, catalog.NewMemoryStore(catalog.DefaultCatalog()))

	p := payloadOf(t, dispatch(t, d, "get_inventory_info", map[string]interface{}{"product_name": "MacBook Pro 14"}))
	if p["summary"] != "MacBook Pro 14 is low stock with 3 units available." {
		t.Errorf("%s - summary = %q", agentsTestPrefix, p["summary"])
	}

	// The stored name is reported however the caller wrote it.
	p = payloadOf(t, dispatch(t, d, "get_inventory_info", map[string]interface{}{"product_name": "  macbook PRO 14 "}))
	if p["product_name"] != "MacBook Pro 14" {
		t.Errorf("%s - product_name = %q, want the stored name", agentsTestPrefix, p["product_name"])
	}
	if p["summary"] != "MacBook Pro 14 is low stock with 3 units available." {
		t.Errorf("%s - summary = %q", agentsTestPrefix, p["summary"])
	}
}

func TestSkillArgumentsAreTrimmed(t *testing.T) {
	store := &recordingStore{MemoryStore: catalog.NewMemoryStore(catalog.DefaultCatalog())}
	d := newDispatcher(t, Shipping, store)

	p := payloadOf(t, dispatch(t, d, "get_tracking_info", map[string]interface{}{"tracking_number": "\t1Z999 "}))
	if store.lastTracking != "1Z999" {
		t.Errorf("%s - store saw %q, want 1Z999", agentsTestPrefix, store.lastTracking)
	}
	if p["found"] != true {
		t.Errorf("%s - padded tracking number not found: %v", agentsTestPrefix, p)
	}
}

func TestShippingSkills(t *testing.T) {
	d := newDispatcher(t, Shipping, catalog.NewMemoryStore(catalog.DefaultCatalog()))

	p := payloadOf(t, dispatch(t, d, "get_shipping_estimate", map[string]interface{}{
		"product_name": "iPhone 15 Pro", "destination": "San Francisco",
	}))
	if !strings.HasSuffix(p["summary"].(string), "Destination: San Francisco.") {
		t.Errorf("%s - summary = %q", agentsTestPrefix, p["summary"])
	}

	p = payloadOf(t, dispatch(t, d, "get_tracking_info", map[string]interface{}{"tracking_number": "1Z999"}))
	if p["status"] != "in transit" {
		t.Errorf("%s - tracking payload = %v", agentsTestPrefix, p)
	}

	p = payloadOf(t, dispatch(t, d, "get_tracking_info", map[string]interface{}{"tracking_number": "NOPE"}))
	if p["found"] != false {
		t.Errorf("%s - expected found=false, got %v", agentsTestPrefix, p)
	}
}

func TestPaymentSkills(t *testing.T) {
	store := catalog.NewMemoryStore(nil)
	d := newDispatcher(t, Payment, store)

	p := payloadOf(t, dispatch(t, d, "create_payment_intent", map[string]interface{}{
		"amount": 9.99, "currency": "USD", "customer_email": "test@example.com",
	}))
	if p["amount_cents"] != int64(999) || p["currency"] != "usd" {
		t.Fatalf("%s - payload = %v", agentsTestPrefix, p)
	}
	id := p["payment_intent_id"].(string)
	if !strings.HasPrefix(id, "pi_") {
		t.Errorf("%s - intent id = %q", agentsTestPrefix, id)
	}

	stored, err := store.PaymentByIntent(context.Background(), id)
	if err != nil || stored == nil {
		t.Fatalf("%s - payment not recorded: %v", agentsTestPrefix, err)
	}
	if stored.CustomerEmail != "test@example.com" {
		t.Errorf("%s - email = %q", agentsTestPrefix, stored.CustomerEmail)
	}

	p = payloadOf(t, dispatch(t, d, "get_payment_status", map[string]interface{}{"payment_intent_id": id}))
	if p["summary"] != "Payment intent "+id+" has status 'requires_payment_method'. Amount: 9.99 USD." {
		t.Errorf("%s - summary = %q", agentsTestPrefix, p["summary"])
	}

	res := dispatch(t, d, "create_payment_intent", map[string]interface{}{"amount": 0, "currency": "usd"})
	if res.Kind() != dispatcher.KindInvalidArguments {
		t.Errorf("%s - zero amount: kind = %q", agentsTestPrefix, res.Kind())
	}
	res = dispatch(t, d, "create_payment_intent", map[string]interface{}{"amount": 5, "currency": "dollars"})
	if res.Kind() != dispatcher.KindInvalidArguments {
		t.Errorf("%s - bad currency: kind = %q", agentsTestPrefix, res.Kind())
	}
}

func TestPaymentSkills_AmountOutOfRange(t *testing.T) {
	store := catalog.NewMemoryStore(nil)
	d := newDispatcher(t, Payment, store)

	for _, amount := range []float64{1e17, 2e17, maxPaymentAmount + 0.01} {
		res := dispatch(t, d, "create_payment_intent", map[string]interface{}{"amount": amount, "currency": "usd"})
		if res.Kind() != dispatcher.KindInvalidArguments {
			t.Errorf("%s - amount %v: kind = %q, want INVALID_ARGUMENTS", agentsTestPrefix, amount, res.Kind())
		}
	}

	p := payloadOf(t, dispatch(t, d, "create_payment_intent", map[string]interface{}{
		"amount": float64(maxPaymentAmount), "currency": "usd",
	}))
	if p["amount_cents"] != int64(maxPaymentAmount)*100 {
		t.Errorf("%s - maximum amount: amount_cents = %v", agentsTestPrefix, p["amount_cents"])
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"9.99", 999, false},
		{"0.005", 1, false},
		{"0.004", 0, true},
		{"1000000000", 100000000000, false},
		{"1000000000.01", 0, true},
		{"200000000000000000", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		got, err := toCents(decimal.RequireFromString(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s - toCents(%s) = %d, expected error", agentsTestPrefix, tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s - toCents(%s) = %d, %v; want %d", agentsTestPrefix, tt.in, got, err, tt.want)
		}
	}
}

func TestAmountArg(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    string
		wantErr bool
	}{
		{9.99, "9.99", false},
		{int64(5), "5", false},
		{"12.50", "12.5", false},
		{true, "", true},
	}
	for _, tt := range tests {
		got, err := amountArg(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s - amountArg(%v) expected error", agentsTestPrefix, tt.in)
			}
			continue
		}
		if err != nil || got.String() != tt.want {
			t.Errorf("%s - amountArg(%v) = %s, %v; want %s", agentsTestPrefix, tt.in, got, err, tt.want)
		}
	}
}
