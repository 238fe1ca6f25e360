package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"
)

const (
	logPrefix      = "registry:registry"
	defaultVersion = "1.0.0"
)

// Config holds the agent identity published in the descriptor.
type Config struct {
	Name        string
	Description string
	// Endpoint is the base URL other agents use to reach this service.
	Endpoint string
	Version  string
}

// Registry is the read-only set of skills served by one agent. It is built once at
// startup and never mutated afterwards, so it is safe for concurrent use.
type Registry struct {
	config     Config
	skills     map[string]*RegisteredSkill
	descriptor CapabilityDescriptor
	store      HealthChecker
}

// RegisteredSkill is a skill with its compiled argument schema.
type RegisteredSkill struct {
	Skill
	schema *gojsonschema.Schema
}

// NewRegistryParams holds parameters for NewRegistry.
type NewRegistryParams struct {
	Config Config
	Skills []Skill
	// Store is optional; nil reports the store check as healthy.
	Store HealthChecker
}

// NewRegistry validates and compiles the skills and builds the capability descriptor.
func NewRegistry(params NewRegistryParams) (*Registry, error) {
	cfg := params.Config
	if cfg.Name == "" {
		return nil, NewRegistryError("INVALID_CONFIG", "agent name is required")
	}
	if cfg.Endpoint == "" {
		return nil, NewRegistryError("INVALID_CONFIG", "agent endpoint is required")
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}

	r := &Registry{
		config: cfg,
		skills: make(map[string]*RegisteredSkill, len(params.Skills)),
		store:  params.Store,
	}
	descriptor := CapabilityDescriptor{
		Name:        cfg.Name,
		Description: cfg.Description,
		Endpoint:    cfg.Endpoint,
		Version:     cfg.Version,
		Skills:      make([]SkillDescriptor, 0, len(params.Skills)),
	}

	for _, s := range params.Skills {
		if s.Name == "" {
			return nil, NewRegistryError("INVALID_SKILL", "skill name is required")
		}
		if s.Handler == nil {
			return nil, NewRegistryError("INVALID_SKILL", fmt.Sprintf("skill %s has no handler", s.Name))
		}
		if _, dup := r.skills[s.Name]; dup {
			return nil, NewRegistryError("DUPLICATE_SKILL", fmt.Sprintf("skill %s registered twice", s.Name))
		}
		schema, err := compileSchema(s.InputSchema)
		if err != nil {
			return nil, &RegistryError{
				Code:    "INVALID_SCHEMA",
				Message: fmt.Sprintf("skill %s: input schema does not compile", s.Name),
				Details: err.Error(),
			}
		}
		r.skills[s.Name] = &RegisteredSkill{Skill: s, schema: schema}
		descriptor.Skills = append(descriptor.Skills, SkillDescriptor{
			Name:         s.Name,
			Description:  s.Description,
			InputSchema:  orEmptyObject(s.InputSchema),
			OutputSchema: orEmptyObject(s.OutputSchema),
		})
	}
	r.descriptor = descriptor

	slog.Info(fmt.Sprintf("%s - Registered %d skills for %s at %s", logPrefix, len(r.skills), cfg.Name, cfg.Endpoint))
	return r, nil
}

// Name returns the agent name.
func (r *Registry) Name() string {
	return r.config.Name
}

// Lookup returns the registered skill with the given name.
func (r *Registry) Lookup(name string) (*RegisteredSkill, bool) {
	s, ok := r.skills[name]
	return s, ok
}

func orEmptyObject(schema map[string]interface{}) map[string]interface{} {
	if schema == nil {
		return map[string]interface{}{"type": "object"}
	}
	return schema
}
