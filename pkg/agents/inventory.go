package agents

import (
	"context"
	"fmt"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/registry"
)

func inventorySkills(store catalog.Store) []registry.Skill {
	return []registry.Skill{{
		Name:        "get_inventory_info",
		Description: "Get the stock status and available quantity of a product.",
		InputSchema: objectSchema([]string{"product_name"}, map[string]interface{}{
			"product_name": nonEmptyString("Name of the product"),
		}),
		OutputSchema: summaryOutput(map[string]interface{}{
			"product_name": map[string]interface{}{"type": "string"},
			"status":       map[string]interface{}{"type": "string"},
			"quantity":     map[string]interface{}{"type": "integer"},
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			name := stringArg(args, "product_name")
			r, err := store.InventoryByProduct(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("inventory lookup %q: %w", name, err)
			}
			if r == nil {
				return map[string]interface{}{
					"found":   false,
					"summary": fmt.Sprintf("No inventory information found for '%s'.", name),
				}, nil
			}
			return map[string]interface{}{
				"found":        true,
				"product_name": r.ProductName,
				"status":       r.Status,
				"quantity":     r.Quantity,
				"summary":      fmt.Sprintf("%s is %s with %d units available.", r.ProductName, r.Status, r.Quantity),
			}, nil
		},
	}}
}
