package agents

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/registry"
)

func productSkills(store catalog.Store) []registry.Skill {
	return []registry.Skill{{
		Name:        "get_product_info",
		Description: "Get product information (name, description, price) for a product name.",
		InputSchema: objectSchema([]string{"product_name"}, map[string]interface{}{
			"product_name": nonEmptyString("Name of the product, e.g. \"iPhone 15 Pro\""),
		}),
		OutputSchema: summaryOutput(map[string]interface{}{
			"name":        map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"price":       map[string]interface{}{"type": "string"},
			"price_cents": map[string]interface{}{"type": "integer"},
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			name := stringArg(args, "product_name")
			p, err := store.ProductByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("product lookup %q: %w", name, err)
			}
			if p == nil {
				return map[string]interface{}{
					"found":   false,
					"summary": fmt.Sprintf("No product found for '%s'.", name),
				}, nil
			}
			price := formatCents(p.PriceCents)
			return map[string]interface{}{
				"found":       true,
				"name":        p.Name,
				"description": p.Description,
				"price":       price,
				"price_cents": p.PriceCents,
				"summary":     fmt.Sprintf("Product: %s\nDescription: %s\nPrice: $%s", p.Name, p.Description, price),
			}, nil
		},
	}}
}

// formatCents renders an amount in cents as a two-decimal string.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
