package agents

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/registry"
)

// Status of a newly created payment intent.
const paymentStatusCreated = "requires_payment_method"

// maxPaymentAmount is the largest amount, in major units, a payment intent accepts.
const maxPaymentAmount = 1_000_000_000

var maxCents = decimal.NewFromInt(math.MaxInt64)

func paymentSkills(store catalog.Store) []registry.Skill {
	return []registry.Skill{
		{
			Name:        "create_payment_intent",
			Description: "Create a payment intent for an amount in major units (e.g. 99.99) and record it.",
			InputSchema: objectSchema([]string{"amount", "currency"}, map[string]interface{}{
				"amount":         map[string]interface{}{"type": "number", "minimum": 0.01, "maximum": maxPaymentAmount},
				"currency":       map[string]interface{}{"type": "string", "pattern": "^[A-Za-z]{3}$"},
				"customer_email": map[string]interface{}{"type": "string"},
			}),
			OutputSchema: summaryOutput(map[string]interface{}{
				"payment_intent_id": map[string]interface{}{"type": "string"},
				"status":            map[string]interface{}{"type": "string"},
				"amount":            map[string]interface{}{"type": "string"},
				"amount_cents":      map[string]interface{}{"type": "integer"},
				"currency":          map[string]interface{}{"type": "string"},
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				amount, err := amountArg(args["amount"])
				if err != nil {
					return nil, err
				}
				cents, err := toCents(amount)
				if err != nil {
					return nil, err
				}

				p := &catalog.Payment{
					IntentID:      "pi_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
					AmountCents:   cents,
					Currency:      strings.ToLower(stringArg(args, "currency")),
					CustomerEmail: stringArg(args, "customer_email"),
					Status:        paymentStatusCreated,
					CreatedAt:     time.Now().UTC(),
				}
				if err := store.UpsertPayment(ctx, p); err != nil {
					return nil, fmt.Errorf("record payment %s: %w", p.IntentID, err)
				}

				display := formatCents(cents)
				return map[string]interface{}{
					"found":             true,
					"payment_intent_id": p.IntentID,
					"status":            p.Status,
					"amount":            display,
					"amount_cents":      cents,
					"currency":          p.Currency,
					"summary": fmt.Sprintf("Created payment intent.\nID: %s\nStatus: %s\nAmount: %s %s",
						p.IntentID, p.Status, display, strings.ToUpper(p.Currency)),
				}, nil
			},
		},
		{
			Name:        "get_payment_status",
			Description: "Look up the current status of a payment intent.",
			InputSchema: objectSchema([]string{"payment_intent_id"}, map[string]interface{}{
				"payment_intent_id": nonEmptyString("Payment intent id, e.g. pi_123"),
			}),
			OutputSchema: summaryOutput(map[string]interface{}{
				"payment_intent_id": map[string]interface{}{"type": "string"},
				"status":            map[string]interface{}{"type": "string"},
				"amount":            map[string]interface{}{"type": "string"},
				"currency":          map[string]interface{}{"type": "string"},
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id := stringArg(args, "payment_intent_id")
				p, err := store.PaymentByIntent(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("payment lookup %s: %w", id, err)
				}
				if p == nil {
					return map[string]interface{}{
						"found":   false,
						"summary": fmt.Sprintf("No payment found for intent '%s'.", id),
					}, nil
				}
				display := formatCents(p.AmountCents)
				return map[string]interface{}{
					"found":             true,
					"payment_intent_id": p.IntentID,
					"status":            p.Status,
					"amount":            display,
					"currency":          p.Currency,
					"summary": fmt.Sprintf("Payment intent %s has status '%s'. Amount: %s %s.",
						p.IntentID, p.Status, display, strings.ToUpper(p.Currency)),
				}, nil
			},
		},
	}
}

// toCents converts a major-unit amount to positive cents within range.
func toCents(amount decimal.Decimal) (int64, error) {
	if amount.GreaterThan(decimal.NewFromInt(maxPaymentAmount)) {
		return 0, fmt.Errorf("amount %s exceeds the maximum of %d", amount, maxPaymentAmount)
	}
	c := amount.Mul(decimal.NewFromInt(100)).Round(0)
	if c.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %s does not fit in cents", amount)
	}
	if !c.IsPositive() {
		return 0, fmt.Errorf("amount %s rounds to zero cents", amount)
	}
	return c.IntPart(), nil
}

// amountArg converts a decoded JSON amount to a decimal.
func amountArg(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("amount must be a number, got %T", v)
	}
}
