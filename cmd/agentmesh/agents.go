package main

import (
	"fmt"

	"github.com/morezero/agentmesh/pkg/agents"
)

// agentLines describes every servable agent, one per line.
func agentLines() []string {
	names := agents.Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		def, _ := agents.Lookup(name)
		lines = append(lines, fmt.Sprintf("%-22s :%d  %s", def.Name, def.DefaultPort, def.Description))
	}
	return lines
}
