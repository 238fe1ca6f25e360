package agents

import (
	"context"
	"fmt"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/registry"
)

func shippingSkills(store catalog.Store) []registry.Skill {
	return []registry.Skill{
		{
			Name:        "get_shipping_estimate",
			Description: "Get standard and express delivery estimates for a product to a destination.",
			InputSchema: objectSchema([]string{"product_name"}, map[string]interface{}{
				"product_name": nonEmptyString("Name of the product"),
				"destination":  map[string]interface{}{"type": "string", "description": "Destination city"},
			}),
			OutputSchema: summaryOutput(map[string]interface{}{
				"standard_days": map[string]interface{}{"type": "string"},
				"standard_cost": map[string]interface{}{"type": "string"},
				"express_days":  map[string]interface{}{"type": "string"},
				"express_cost":  map[string]interface{}{"type": "string"},
				"destination":   map[string]interface{}{"type": "string"},
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				name := stringArg(args, "product_name")
				destination := stringArg(args, "destination")
				e, err := store.ShippingEstimateByProduct(ctx, name)
				if err != nil {
					return nil, fmt.Errorf("shipping estimate lookup %q: %w", name, err)
				}
				if e == nil {
					return map[string]interface{}{
						"found":   false,
						"summary": fmt.Sprintf("No shipping estimate found for '%s'.", name),
					}, nil
				}
				summary := fmt.Sprintf("Standard: %s (%s), Express: %s (%s).",
					e.StandardDays, e.StandardCost, e.ExpressDays, e.ExpressCost)
				if destination != "" {
					summary += fmt.Sprintf(" Destination: %s.", destination)
				}
				return map[string]interface{}{
					"found":         true,
					"standard_days": e.StandardDays,
					"standard_cost": e.StandardCost,
					"express_days":  e.ExpressDays,
					"express_cost":  e.ExpressCost,
					"destination":   destination,
					"summary":       summary,
				}, nil
			},
		},
		{
			Name:        "get_tracking_info",
			Description: "Get the status, last location and ETA of a package.",
			InputSchema: objectSchema([]string{"tracking_number"}, map[string]interface{}{
				"tracking_number": nonEmptyString("Carrier tracking number"),
			}),
			OutputSchema: summaryOutput(map[string]interface{}{
				"status":        map[string]interface{}{"type": "string"},
				"last_location": map[string]interface{}{"type": "string"},
				"eta":           map[string]interface{}{"type": "string"},
			}),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				number := stringArg(args, "tracking_number")
				t, err := store.TrackingByNumber(ctx, number)
				if err != nil {
					return nil, fmt.Errorf("tracking lookup %q: %w", number, err)
				}
				if t == nil {
					return map[string]interface{}{
						"found":   false,
						"summary": fmt.Sprintf("No tracking data found for tracking number '%s'.", number),
					}, nil
				}
				return map[string]interface{}{
					"found":         true,
					"status":        t.Status,
					"last_location": t.LastLocation,
					"eta":           t.ETA,
					"summary":       fmt.Sprintf("Status: %s. Last seen in %s. Estimated delivery: %s.", t.Status, t.LastLocation, t.ETA),
				}, nil
			},
		},
	}
}
