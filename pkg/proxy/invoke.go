package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/morezero/agentmesh/pkg/auth"
	"github.com/morezero/agentmesh/pkg/dispatcher"
	"github.com/morezero/agentmesh/pkg/registry"
)

const invokeLogPrefix = "proxy:invoke"

// maxResultBytes caps the TaskResult body read from a remote agent.
const maxResultBytes = 8 << 20

// Invoke calls a skill on the remote agent and returns its TaskResult unchanged.
//
// Failures the remote reports, and transport failures, come back as a failed
// TaskResult. The returned error is non-nil only for ErrDiscoveryUnavailable and
// ErrAuthenticationRejected, when no TaskResult exists.
func (p *Proxy) Invoke(ctx context.Context, skill string, args map[string]interface{}) (*dispatcher.TaskResult, error) {
	desc, err := p.EnsureCapabilities(ctx)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()

	if !desc.HasSkill(skill) {
		slog.Info(fmt.Sprintf("%s - skill %s not in cached descriptor of %s, refreshing", invokeLogPrefix, skill, p.endpoint))
		desc, err = p.refresh(ctx, desc)
		if err != nil {
			return nil, err
		}
		if !desc.HasSkill(skill) {
			return dispatcher.FailureResult(requestID, dispatcher.KindUnknownSkill,
				fmt.Sprintf("Unknown skill: %s (agent %s offers %v)", skill, desc.Name, desc.SkillNames()), false), nil
		}
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := p.send(ctx, &dispatcher.TaskRequest{
		SkillName: skill,
		Arguments: args,
		RequestID: requestID,
	})
	if err != nil {
		return nil, err
	}

	// The remote no longer knows a skill the cache listed: the cache is stale.
	if result.Kind() == dispatcher.KindUnknownSkill {
		p.invalidate(desc)
	}
	return result, nil
}

func (p *Proxy) send(ctx context.Context, task *dispatcher.TaskRequest) (*dispatcher.TaskResult, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return transportFailure(task.RequestID, fmt.Sprintf("could not encode arguments: %v", err), false), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := p.endpoint + registry.TasksPath
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return transportFailure(task.RequestID, fmt.Sprintf("could not build request: %v", err), false), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if p.secret != "" {
		req.Header.Set(auth.HeaderName, p.secret)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - POST %s skill=%s id=%s failed: %v", invokeLogPrefix, url, task.SkillName, task.RequestID, err))
		return transportFailure(task.RequestID, describeTransportErr(err), true), nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s - %w: %s returned %d", invokeLogPrefix, ErrAuthenticationRejected, url, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return transportFailure(task.RequestID,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url), resp.StatusCode >= 500), nil
	}

	var result dispatcher.TaskResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResultBytes)).Decode(&result); err != nil {
		return transportFailure(task.RequestID, fmt.Sprintf("unreadable response: %v", err), true), nil
	}
	if result.Status != dispatcher.StatusSuccess && result.Status != dispatcher.StatusFailure {
		return transportFailure(task.RequestID, fmt.Sprintf("response has unknown status %q", result.Status), false), nil
	}
	return &result, nil
}

func transportFailure(requestID, message string, retryable bool) *dispatcher.TaskResult {
	return dispatcher.FailureResult(requestID, dispatcher.KindTransportError, message, retryable)
}

func describeTransportErr(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	var ue interface{ Timeout() bool }
	if errors.As(err, &ue) && ue.Timeout() {
		return "request timed out"
	}
	return fmt.Sprintf("request failed: %v", err)
}
