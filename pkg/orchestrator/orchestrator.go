// Package orchestrator fans a user request out to sub-agents and composes their answers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/morezero/agentmesh/pkg/dispatcher"
)

const (
	logPrefix          = "orchestrator:orchestrator"
	defaultCallTimeout = 20 * time.Second
)

// Agent is anything the orchestrator can call: a remote proxy or a local dispatcher.
// A non-nil error means no TaskResult was produced.
type Agent interface {
	Invoke(ctx context.Context, skill string, args map[string]interface{}) (*dispatcher.TaskResult, error)
}

// Request is one user request.
type Request struct {
	ID    string
	Query string
}

// Call is one sub-agent invocation chosen by a Planner.
type Call struct {
	Agent     string
	Skill     string
	Arguments map[string]interface{}
}

// Planner decides which sub-agents a request needs.
type Planner interface {
	Plan(ctx context.Context, req Request) ([]Call, error)
}

// Composer merges the outcomes of all calls into the final answer. Outcomes are in
// plan order regardless of completion order.
type Composer interface {
	Compose(ctx context.Context, req Request, outcomes []Outcome) (string, error)
}

// Outcome is the result of one Call. Available is false when the sub-agent produced no
// successful result; Reason then says why.
type Outcome struct {
	Call      Call
	Result    *dispatcher.TaskResult
	Available bool
	Reason    string
	Duration  time.Duration
}

// Response is the composed answer to a Request.
type Response struct {
	RequestID string
	Text      string
	Outcomes  []Outcome
}

// Params holds parameters for New.
type Params struct {
	Agents   map[string]Agent
	Planner  Planner
	Composer Composer
	// CallTimeout bounds each sub-agent call. Zero uses 20s.
	CallTimeout time.Duration
	// MaxConcurrency limits parallel calls per request. Zero means unlimited.
	MaxConcurrency int
}

// Orchestrator routes requests to sub-agents. The agent map is fixed at construction.
type Orchestrator struct {
	agents         map[string]Agent
	planner        Planner
	composer       Composer
	callTimeout    time.Duration
	maxConcurrency int
}

// New creates an Orchestrator.
func New(params Params) (*Orchestrator, error) {
	if params.Planner == nil {
		return nil, fmt.Errorf("%s - planner is required", logPrefix)
	}
	if params.Composer == nil {
		return nil, fmt.Errorf("%s - composer is required", logPrefix)
	}
	agents := make(map[string]Agent, len(params.Agents))
	for name, a := range params.Agents {
		if a == nil {
			return nil, fmt.Errorf("%s - agent %s is nil", logPrefix, name)
		}
		agents[name] = a
	}
	timeout := params.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Orchestrator{
		agents:         agents,
		planner:        params.Planner,
		composer:       params.Composer,
		callTimeout:    timeout,
		maxConcurrency: params.MaxConcurrency,
	}, nil
}

// Agents returns the registered agent names, sorted.
func (o *Orchestrator) Agents() []string {
	names := make([]string, 0, len(o.agents))
	for n := range o.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Handle plans the request, runs every planned call concurrently and waits for all of
// them before composing. A failing or slow sub-agent never aborts the others; it shows
// up as an unavailable Outcome.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	calls, err := o.planner.Plan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s - plan failed for %s: %w", logPrefix, req.ID, err)
	}
	slog.Info(fmt.Sprintf("%s - request %s planned %d calls", logPrefix, req.ID, len(calls)))

	outcomes := make([]Outcome, len(calls))
	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}
	for i, c := range calls {
		i, c := i, c
		g.Go(func() error {
			outcomes[i] = o.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	text, err := o.composer.Compose(ctx, req, outcomes)
	if err != nil {
		return nil, fmt.Errorf("%s - compose failed for %s: %w", logPrefix, req.ID, err)
	}
	return &Response{RequestID: req.ID, Text: text, Outcomes: outcomes}, nil
}

type invokeResult struct {
	result *dispatcher.TaskResult
	err    error
}

// run performs one call under the per-call timeout. The call runs on its own goroutine
// so an agent that ignores cancellation cannot hold up the request.
func (o *Orchestrator) run(ctx context.Context, c Call) Outcome {
	start := time.Now()
	out := Outcome{Call: c}

	agent, ok := o.agents[c.Agent]
	if !ok {
		out.Reason = fmt.Sprintf("unknown agent %s", c.Agent)
		return out
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	done := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- invokeResult{err: fmt.Errorf("agent panicked: %v", rec)}
			}
		}()
		res, err := agent.Invoke(callCtx, c.Skill, c.Arguments)
		done <- invokeResult{result: res, err: err}
	}()

	var ir invokeResult
	select {
	case ir = <-done:
	case <-callCtx.Done():
		ir = invokeResult{err: callCtx.Err()}
	}
	out.Duration = time.Since(start)

	switch {
	case errors.Is(ir.err, context.DeadlineExceeded):
		out.Reason = fmt.Sprintf("timed out after %s", o.callTimeout)
	case ir.err != nil:
		out.Reason = ir.err.Error()
	case ir.result == nil:
		out.Reason = "no result"
	case !ir.result.Succeeded():
		out.Result = ir.result
		if ir.result.Error != nil {
			out.Reason = fmt.Sprintf("%s: %s", ir.result.Error.Kind, ir.result.Error.Message)
		} else {
			out.Reason = "failed"
		}
	default:
		out.Result = ir.result
		out.Available = true
	}

	if !out.Available {
		slog.Warn(fmt.Sprintf("%s - %s.%s unavailable: %s", logPrefix, c.Agent, c.Skill, out.Reason))
	}
	return out
}
