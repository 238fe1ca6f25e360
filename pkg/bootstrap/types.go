// Package bootstrap loads the mesh topology: which agents exist, where they listen and
// which versions a caller accepts.
package bootstrap

import "sort"

// MeshAgent is one remote agent entry in the mesh config.
type MeshAgent struct {
	Endpoint     string `json:"endpoint"`
	Description  string `json:"description,omitempty"`
	VersionRange string `json:"versionRange,omitempty"`
}

// MeshConfig is the root mesh configuration.
type MeshConfig struct {
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	Description string               `json:"description,omitempty"`
	Agents      map[string]MeshAgent `json:"agents"`
	Aliases     map[string]string    `json:"aliases"`
}

// ResolvedMesh provides fast lookup of mesh agents by name or alias.
type ResolvedMesh struct {
	name    string
	version string
	agents  map[string]*MeshAgent
	aliases map[string]string
}

// Get returns a mesh agent by name or alias (e.g. "shipping_agent" or "shipping").
func (rm *ResolvedMesh) Get(ref string) *MeshAgent {
	if a, ok := rm.agents[ref]; ok {
		return a
	}
	if resolved, ok := rm.aliases[ref]; ok {
		if a, ok := rm.agents[resolved]; ok {
			return a
		}
	}
	return nil
}

// ResolveAlias resolves an alias to the full agent name.
func (rm *ResolvedMesh) ResolveAlias(alias string) string {
	if resolved, ok := rm.aliases[alias]; ok {
		return resolved
	}
	return alias
}

// AliasesFor returns the aliases pointing at name, sorted.
func (rm *ResolvedMesh) AliasesFor(name string) []string {
	var out []string
	for alias, target := range rm.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns all agent names, sorted.
func (rm *ResolvedMesh) Names() []string {
	names := make([]string, 0, len(rm.agents))
	for n := range rm.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Name returns the mesh config name.
func (rm *ResolvedMesh) Name() string {
	return rm.name
}

// Version returns the mesh config version.
func (rm *ResolvedMesh) Version() string {
	return rm.version
}
