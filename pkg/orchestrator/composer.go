package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const noAgentsText = "Sorry, I could not find an agent that can help with that request."

// TextComposer renders one line per outcome: the payload's summary for available
// sub-agents and an explicit unavailable marker for the rest.
type TextComposer struct{}

// Compose implements Composer.
func (TextComposer) Compose(_ context.Context, _ Request, outcomes []Outcome) (string, error) {
	if len(outcomes) == 0 {
		return noAgentsText, nil
	}
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Available {
			lines = append(lines, fmt.Sprintf("%s: unavailable (%s)", o.Call.Agent, o.Reason))
			continue
		}
		lines = append(lines, summarize(o))
	}
	return strings.Join(lines, "\n"), nil
}

func summarize(o Outcome) string {
	if s, ok := o.Result.Payload.(string); ok {
		return s
	}
	b, err := json.Marshal(o.Result.Payload)
	if err != nil {
		return fmt.Sprintf("%s: %v", o.Call.Agent, o.Result.Payload)
	}
	var withSummary struct {
		Summary string `json:"summary"`
	}
	if json.Unmarshal(b, &withSummary) == nil && withSummary.Summary != "" {
		return withSummary.Summary
	}
	return fmt.Sprintf("%s: %s", o.Call.Agent, b)
}
