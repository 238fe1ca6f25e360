package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/agentmesh/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// GlobalAuthSubject overrides the global auth event subject (e.g. from AUTH_EVENT_SUBJECT).
	GlobalAuthSubject string
}

// CommsPublisher publishes auth events to COMMS subjects.
type CommsPublisher struct {
	nc                *comms.Conn
	globalAuthSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	globalSubject := commsutil.SubjectAuthEvent
	if opts != nil && opts.GlobalAuthSubject != "" {
		globalSubject = opts.GlobalAuthSubject
	}
	return &CommsPublisher{nc: nc, globalAuthSubject: globalSubject}
}

// PublishAuth publishes an AuthEvent to both the per-agent and the global auth subjects.
func (p *CommsPublisher) PublishAuth(_ context.Context, event *AuthEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granularSubject := commsutil.BuildAuthSubject(event.Agent, event.Decision)
	if err := p.nc.Publish(granularSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granularSubject, err))
		return err
	}

	if err := p.nc.Publish(p.globalAuthSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.globalAuthSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published %s event for %s", commsPublisherLogPrefix, event.Decision, event.Agent))
	return nil
}
