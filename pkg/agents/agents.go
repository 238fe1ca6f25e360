// Package agents defines the four catalog agents and the skills each one serves.
package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/registry"
)

// Agent names.
const (
	ProductCatalog = "product_catalog_agent"
	Inventory      = "inventory_agent"
	Shipping       = "shipping_agent"
	Payment        = "payment_agent"
)

// Definition describes an agent service: its identity, default port and skills.
type Definition struct {
	Name        string
	Description string
	DefaultPort int
	Skills      func(store catalog.Store) []registry.Skill
}

var definitions = map[string]Definition{
	ProductCatalog: {
		Name:        ProductCatalog,
		Description: "Product catalog agent that provides product information and pricing.",
		DefaultPort: 8001,
		Skills:      productSkills,
	},
	Inventory: {
		Name:        Inventory,
		Description: "Inventory agent that reports stock levels for products.",
		DefaultPort: 8002,
		Skills:      inventorySkills,
	},
	Shipping: {
		Name:        Shipping,
		Description: "Shipping agent that provides delivery estimates and package tracking information.",
		DefaultPort: 8003,
		Skills:      shippingSkills,
	},
	Payment: {
		Name:        Payment,
		Description: "Payment agent that creates payment intents and reports payment status.",
		DefaultPort: 8004,
		Skills:      paymentSkills,
	},
}

// Lookup returns the definition of a named agent.
func Lookup(name string) (Definition, bool) {
	d, ok := definitions[name]
	return d, ok
}

// Names returns all agent names, sorted.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for n := range definitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRegistry builds the skill registry for a named agent.
func NewRegistry(name, endpoint, version string, store catalog.Store) (*registry.Registry, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("agents:agents - unknown agent %q (known: %v)", name, Names())
	}
	return registry.NewRegistry(registry.NewRegistryParams{
		Config: registry.Config{
			Name:        def.Name,
			Description: def.Description,
			Endpoint:    endpoint,
			Version:     version,
		},
		Skills: def.Skills(store),
		Store:  store,
	})
}

// --- helpers ---

// stringArg returns a string argument without surrounding whitespace.
func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

func objectSchema(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func nonEmptyString(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1, "description": description}
}

func summaryOutput(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"found":   map[string]interface{}{"type": "boolean"},
		"summary": map[string]interface{}{"type": "string"},
	}
	for k, v := range extra {
		props[k] = v
	}
	return objectSchema([]string{"summary"}, props)
}
