package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const healthLogPrefix = "registry:health"

// Health checks the backing store of the agent's skills.
func (r *Registry) Health(ctx context.Context) *HealthOutput {
	storeOk := true
	if r.store != nil {
		if err := r.store.Ping(ctx); err != nil {
			slog.Warn(fmt.Sprintf("%s - store ping failed: %v", healthLogPrefix, err))
			storeOk = false
		}
	}

	status := "healthy"
	if !storeOk {
		status = "unhealthy"
	}

	return &HealthOutput{
		Status: status,
		Agent:  r.config.Name,
		Checks: HealthChecks{
			Store:  storeOk,
			Skills: len(r.skills),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
