package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/morezero/agentmesh/pkg/dispatcher"
)

// LocalAgent calls an in-process dispatcher as an Agent.
type LocalAgent struct {
	d *dispatcher.Dispatcher
}

// NewLocalAgent wraps a dispatcher.
func NewLocalAgent(d *dispatcher.Dispatcher) *LocalAgent {
	return &LocalAgent{d: d}
}

// Invoke dispatches with a fresh request id. It never returns an error.
func (a *LocalAgent) Invoke(ctx context.Context, skill string, args map[string]interface{}) (*dispatcher.TaskResult, error) {
	return a.d.Dispatch(ctx, &dispatcher.TaskRequest{
		SkillName: skill,
		Arguments: args,
		RequestID: uuid.NewString(),
	}), nil
}
