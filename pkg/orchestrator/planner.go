package orchestrator

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Default sub-agent names used by KeywordPlanner.
const (
	AgentCatalog   = "product_catalog_agent"
	AgentInventory = "inventory_agent"
	AgentShipping  = "shipping_agent"
	AgentPayment   = "payment_agent"
)

var (
	trackingRegex    = regexp.MustCompile(`(?i)tracking\s+(?:number\s+)?#?([a-z0-9]{4,})`)
	paymentIDRegex   = regexp.MustCompile(`\bpi_[A-Za-z0-9_]+`)
	amountRegex      = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`)
	currencyRegex    = regexp.MustCompile(`(?i)\b(usd|eur|gbp|cad|aud|jpy)\b`)
	emailRegex       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	destinationRegex = regexp.MustCompile(`\bto\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
)

var (
	catalogWords   = []string{"tell me about", "price", "cost of", "how much", "spec", "describe", "description", "details"}
	inventoryWords = []string{"stock", "available", "availability"}
	shippingWords  = []string{"ship", "deliver"}
	paymentWords   = []string{"charge", "pay", "refund", "bill"}
)

// KeywordPlanner routes requests with fixed keyword rules. It is deterministic and
// needs no model; product names are matched against a known list.
type KeywordPlanner struct {
	products []string
}

// NewKeywordPlanner creates a planner that recognizes the given product names.
func NewKeywordPlanner(products []string) *KeywordPlanner {
	p := append([]string(nil), products...)
	// Longest first, so "MacBook Pro 14" wins over "MacBook Pro".
	sort.SliceStable(p, func(i, j int) bool { return len(p[i]) > len(p[j]) })
	return &KeywordPlanner{products: p}
}

// Plan implements Planner.
func (k *KeywordPlanner) Plan(_ context.Context, req Request) ([]Call, error) {
	q := req.Query
	lower := strings.ToLower(q)
	product := k.findProduct(lower)

	var calls []Call

	if id := paymentIDRegex.FindString(q); id != "" {
		calls = append(calls, Call{Agent: AgentPayment, Skill: "get_payment_status",
			Arguments: map[string]interface{}{"payment_intent_id": id}})
	} else if m := amountRegex.FindStringSubmatch(q); m != nil && containsAny(lower, paymentWords) {
		amount, _ := strconv.ParseFloat(m[1], 64)
		args := map[string]interface{}{"amount": amount, "currency": "usd"}
		if c := currencyRegex.FindString(q); c != "" {
			args["currency"] = strings.ToLower(c)
		}
		if e := emailRegex.FindString(q); e != "" {
			args["customer_email"] = e
		}
		calls = append(calls, Call{Agent: AgentPayment, Skill: "create_payment_intent", Arguments: args})
	}

	if m := trackingRegex.FindStringSubmatch(q); m != nil {
		calls = append(calls, Call{Agent: AgentShipping, Skill: "get_tracking_info",
			Arguments: map[string]interface{}{"tracking_number": strings.ToUpper(m[1])}})
	}

	if product == "" {
		return calls, nil
	}

	wantsCatalog := containsAny(lower, catalogWords)
	wantsInventory := containsAny(lower, inventoryWords)
	wantsShipping := containsAny(lower, shippingWords) && !strings.Contains(lower, "tracking")

	if wantsCatalog {
		calls = append(calls, Call{Agent: AgentCatalog, Skill: "get_product_info",
			Arguments: map[string]interface{}{"product_name": product}})
	}
	if wantsInventory {
		calls = append(calls, Call{Agent: AgentInventory, Skill: "get_inventory_info",
			Arguments: map[string]interface{}{"product_name": product}})
	}
	if wantsShipping {
		args := map[string]interface{}{"product_name": product}
		if m := destinationRegex.FindStringSubmatch(q); m != nil {
			args["destination"] = m[1]
		}
		calls = append(calls, Call{Agent: AgentShipping, Skill: "get_shipping_estimate", Arguments: args})
	}
	if len(calls) == 0 {
		calls = append(calls, Call{Agent: AgentCatalog, Skill: "get_product_info",
			Arguments: map[string]interface{}{"product_name": product}})
	}
	return calls, nil
}

func (k *KeywordPlanner) findProduct(lower string) string {
	for _, p := range k.products {
		if strings.Contains(lower, strings.ToLower(p)) {
			return p
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
