// Package commsutil provides COMMS (NATS) connection helpers, subjects and payload encoding.
package commsutil

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// Client roles, appended to the service name so agents and auth watchers can be told
// apart in the server's connection list.
const (
	RoleAgent   = "agent"
	RoleWatcher = "watch"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultFlushTimeout   = 2 * time.Second
)

// ConnectOptions configures a COMMS connection.
type ConnectOptions struct {
	// Service is the client name prefix (SERVICE_NAME).
	Service string
	// Role is RoleAgent or RoleWatcher.
	Role string
	// Agent is the hosted agent, if any.
	Agent string
	// Timeout bounds the initial connect. Zero means 5s.
	Timeout time.Duration
}

// ClientName builds "<service>-<role>[-<agent>]", skipping empty parts.
func ClientName(service, role, agent string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{service, role, agent} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "agentmesh"
	}
	return strings.Join(parts, "-")
}

// Connect opens a COMMS connection. Auth events are best effort, so the client keeps
// reconnecting for as long as the process runs.
func Connect(url string, opts ConnectOptions) (*comms.Conn, error) {
	name := ClientName(opts.Service, opts.Role, opts.Agent)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	slog.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s", logPrefix, url, name))

	nc, err := comms.Connect(url,
		comms.Name(name),
		comms.Timeout(timeout),
		comms.ReconnectWait(2*time.Second),
		comms.MaxReconnects(-1),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - %s disconnected: %v", logPrefix, name, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - %s reconnected to %s", logPrefix, name, nc.ConnectedUrl()))
		}),
		comms.ErrorHandler(func(_ *comms.Conn, sub *comms.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			slog.Warn(fmt.Sprintf("%s - %s async error on %q: %v", logPrefix, name, subject, err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS as %s: %w", logPrefix, name, err)
	}

	slog.Info(fmt.Sprintf("%s - Connected to COMMS at %s", logPrefix, nc.ConnectedUrl()))
	return nc, nil
}

// Close flushes auth events still buffered in the client, then drains the connection.
// A nil or already closed connection is ignored. Zero timeout means 2s.
func Close(nc *comms.Conn, timeout time.Duration) {
	if nc == nil || nc.IsClosed() {
		return
	}
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	if err := nc.FlushTimeout(timeout); err != nil {
		slog.Warn(fmt.Sprintf("%s - flush before close: %v", logPrefix, err))
	}
	if err := nc.Drain(); err != nil {
		slog.Warn(fmt.Sprintf("%s - drain: %v", logPrefix, err))
		nc.Close()
	}
}
