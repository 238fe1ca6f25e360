package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/morezero/agentmesh/pkg/registry"
)

const logPrefix = "dispatcher:dispatch"

// Dispatcher is the TaskService core of one agent: it publishes the capability
// descriptor and executes TaskRequests against the registered skills.
type Dispatcher struct {
	registry *registry.Registry
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Capabilities returns the agent's capability descriptor.
func (d *Dispatcher) Capabilities() registry.CapabilityDescriptor {
	return d.registry.Describe()
}

// Dispatch executes a TaskRequest. It never panics and never returns nil: every
// failure is reported inside the TaskResult.
func (d *Dispatcher) Dispatch(ctx context.Context, req *TaskRequest) *TaskResult {
	slog.Debug(fmt.Sprintf("%s - skill=%s id=%s", logPrefix, req.SkillName, req.RequestID))

	skill, ok := d.registry.Lookup(req.SkillName)
	if !ok {
		return FailureResult(req.RequestID, KindUnknownSkill,
			fmt.Sprintf("Unknown skill: %s", req.SkillName), false)
	}

	if err := skill.ValidateArguments(req.Arguments); err != nil {
		resp := FailureResult(req.RequestID, KindInvalidArguments,
			fmt.Sprintf("Invalid arguments for %s", req.SkillName), false)
		var verr *registry.ValidationError
		if errors.As(err, &verr) {
			resp.Error.Details = verr.Errors
		}
		return resp
	}

	args := req.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}
	payload, err := invoke(ctx, skill, args)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - skill %s failed id=%s: %v", logPrefix, req.SkillName, req.RequestID, err))
		return executionFailure(req.RequestID, req.SkillName, err)
	}
	// Payloads must encode as JSON.
	if _, err := json.Marshal(payload); err != nil {
		slog.Error(fmt.Sprintf("%s - skill %s returned an unencodable payload id=%s: %v", logPrefix, req.SkillName, req.RequestID, err))
		return executionFailure(req.RequestID, req.SkillName, err)
	}
	return SuccessResult(req.RequestID, payload)
}

// invoke calls the skill handler and converts a panic into an error.
func invoke(ctx context.Context, skill *registry.RegisteredSkill, args map[string]interface{}) (payload interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error(fmt.Sprintf("%s - skill %s panicked: %v\n%s", logPrefix, skill.Name, rec, debug.Stack()))
			payload = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return skill.Handler(ctx, args)
}

// --- helpers ---

// executionFailure summarizes a skill error. The underlying message stays in the
// server log and is not returned to the caller.
func executionFailure(requestID, skillName string, err error) *TaskResult {
	msg := fmt.Sprintf("Skill %s failed to execute", skillName)
	retryable := false
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = fmt.Sprintf("Skill %s timed out", skillName)
		retryable = true
	case errors.Is(err, context.Canceled):
		msg = fmt.Sprintf("Skill %s was cancelled", skillName)
	}
	return FailureResult(requestID, KindExecutionError, msg, retryable)
}
