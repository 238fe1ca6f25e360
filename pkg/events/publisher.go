package events

import "context"

// EventPublisher is the interface for publishing auth events.
type EventPublisher interface {
	PublishAuth(ctx context.Context, event *AuthEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (for agents without an event bus).
type NoOpPublisher struct{}

// PublishAuth is a no-op.
func (p *NoOpPublisher) PublishAuth(_ context.Context, _ *AuthEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *AuthEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *AuthEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishAuth calls the callback.
func (p *CallbackPublisher) PublishAuth(ctx context.Context, event *AuthEvent) error {
	return p.callback(ctx, event)
}
