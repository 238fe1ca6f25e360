package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/morezero/agentmesh/pkg/semver"
)

const logPrefix = "bootstrap:loader"

// LoadMeshConfig loads the mesh config from file paths or environment.
// It tries paths in order: first any paths passed in, then MESH_FILE env, then defaults.
// The first readable file is merged over the default mesh, so a file only needs the
// agents it moves or adds. A file that cannot be parsed or fails validation is skipped
// with a warning.
func LoadMeshConfig(paths ...string) (*MeshConfig, error) {
	all := make([]string, 0, len(paths)+3)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("MESH_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/mesh.json", "mesh.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var override MeshConfig
		if err := json.Unmarshal(data, &override); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse mesh file %s: %v", logPrefix, p, err))
			continue
		}
		cfg := MergeMeshConfigs(GetDefaultMeshConfig(), &override)
		if err := ValidateMeshConfig(cfg); err != nil {
			slog.Warn(fmt.Sprintf("%s - Ignoring mesh file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded mesh config from %s (%d agents, %d from file)",
			logPrefix, p, len(cfg.Agents), len(override.Agents)))
		return cfg, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default mesh config", logPrefix))
	return GetDefaultMeshConfig(), nil
}

// ValidateMeshConfig checks that every agent has an endpoint, every range parses and
// every alias points at a known agent.
func ValidateMeshConfig(cfg *MeshConfig) error {
	if len(cfg.Agents) == 0 {
		return fmt.Errorf("%s - mesh config has no agents", logPrefix)
	}

	names := make([]string, 0, len(cfg.Agents))
	for name := range cfg.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := cfg.Agents[name]
		if a.Endpoint == "" {
			return fmt.Errorf("%s - agent %s has no endpoint", logPrefix, name)
		}
		if a.VersionRange != "" && !semver.ValidRange(a.VersionRange) {
			return fmt.Errorf("%s - agent %s has invalid versionRange %q", logPrefix, name, a.VersionRange)
		}
	}
	for alias, target := range cfg.Aliases {
		if _, ok := cfg.Agents[target]; !ok {
			return fmt.Errorf("%s - alias %s points at unknown agent %s", logPrefix, alias, target)
		}
	}
	return nil
}

// GetDefaultMeshConfig returns the built-in topology: the four agents on localhost.
func GetDefaultMeshConfig() *MeshConfig {
	return &MeshConfig{
		Name:        "agentmesh-local",
		Version:     "1.0.0",
		Description: "Default local mesh: four agents on localhost:8001..8004",
		Agents: map[string]MeshAgent{
			"product_catalog_agent": {
				Endpoint:     "http://localhost:8001",
				Description:  "Product information and pricing",
				VersionRange: "1",
			},
			"inventory_agent": {
				Endpoint:     "http://localhost:8002",
				Description:  "Stock levels",
				VersionRange: "1",
			},
			"shipping_agent": {
				Endpoint:     "http://localhost:8003",
				Description:  "Delivery estimates and package tracking",
				VersionRange: "1",
			},
			"payment_agent": {
				Endpoint:     "http://localhost:8004",
				Description:  "Payment intents and status",
				VersionRange: "1",
			},
		},
		Aliases: map[string]string{
			"catalog":   "product_catalog_agent",
			"inventory": "inventory_agent",
			"shipping":  "shipping_agent",
			"payment":   "payment_agent",
		},
	}
}

// CreateResolvedMesh builds a ResolvedMesh for fast lookups.
func CreateResolvedMesh(cfg *MeshConfig) *ResolvedMesh {
	agents := make(map[string]*MeshAgent, len(cfg.Agents))
	for name, a := range cfg.Agents {
		a := a
		agents[name] = &a
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for alias, target := range cfg.Aliases {
		aliases[alias] = target
	}

	return &ResolvedMesh{
		name:    cfg.Name,
		version: cfg.Version,
		agents:  agents,
		aliases: aliases,
	}
}

// MergeMeshConfigs merges an override config into a base config. Agents and aliases
// are merged by key; non-empty name, version and description replace the base's.
// Neither input is modified.
func MergeMeshConfigs(base, override *MeshConfig) *MeshConfig {
	merged := *base
	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	if override.Description != "" {
		merged.Description = override.Description
	}

	merged.Agents = make(map[string]MeshAgent, len(base.Agents)+len(override.Agents))
	for name, a := range base.Agents {
		merged.Agents[name] = a
	}
	for name, a := range override.Agents {
		merged.Agents[name] = a
	}

	merged.Aliases = make(map[string]string, len(base.Aliases)+len(override.Aliases))
	for alias, target := range base.Aliases {
		merged.Aliases[alias] = target
	}
	for alias, target := range override.Aliases {
		merged.Aliases[alias] = target
	}

	return &merged
}
