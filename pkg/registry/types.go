// Package registry holds the skills an agent exposes and the capability descriptor built from them.
package registry

import "context"

// HTTP paths every agent service publishes.
const (
	// DiscoveryPrefix is never subject to authentication.
	DiscoveryPrefix = "/.well-known"
	// CardPath serves the CapabilityDescriptor.
	CardPath = "/.well-known/agent-card.json"
	// TasksPath accepts TaskRequests.
	TasksPath = "/tasks"
)

// CapabilityDescriptor is the published description of an agent and its skills.
// Identity is Endpoint.
type CapabilityDescriptor struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Endpoint    string            `json:"endpoint"`
	Version     string            `json:"version"`
	Skills      []SkillDescriptor `json:"skills"`
}

// SkillDescriptor describes one callable skill.
type SkillDescriptor struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	InputSchema  map[string]interface{} `json:"input_schema"`
	OutputSchema map[string]interface{} `json:"output_schema"`
}

// HasSkill reports whether the descriptor lists a skill with the given name.
func (d *CapabilityDescriptor) HasSkill(name string) bool {
	if d == nil {
		return false
	}
	for _, s := range d.Skills {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SkillNames returns skill names in published order.
func (d *CapabilityDescriptor) SkillNames() []string {
	names := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Validate checks the fields a proxy relies on.
func (d *CapabilityDescriptor) Validate() error {
	if d.Name == "" {
		return NewRegistryError("INVALID_DESCRIPTOR", "descriptor name is empty")
	}
	if d.Endpoint == "" {
		return NewRegistryError("INVALID_DESCRIPTOR", "descriptor endpoint is empty")
	}
	seen := make(map[string]bool, len(d.Skills))
	for _, s := range d.Skills {
		if s.Name == "" {
			return NewRegistryError("INVALID_DESCRIPTOR", "skill with empty name")
		}
		if seen[s.Name] {
			return NewRegistryError("INVALID_DESCRIPTOR", "duplicate skill "+s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// SkillFunc is the callable behind a skill. The returned value must be JSON-serializable.
type SkillFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Skill is a named callable with declared input and output shapes.
type Skill struct {
	Name         string
	Description  string
	InputSchema  map[string]interface{}
	OutputSchema map[string]interface{}
	Handler      SkillFunc
}

// HealthChecker is the backing store dependency checked by Health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthOutput holds the result of the health check.
type HealthOutput struct {
	Status    string       `json:"status"`
	Agent     string       `json:"agent"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks holds individual health check results.
type HealthChecks struct {
	Store  bool `json:"store"`
	Skills int  `json:"skills"`
}

// RegistryError is a structured error from the registry.
type RegistryError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *RegistryError) Error() string {
	return e.Code + ": " + e.Message
}

// NewRegistryError creates a new RegistryError.
func NewRegistryError(code, message string) *RegistryError {
	return &RegistryError{Code: code, Message: message}
}
