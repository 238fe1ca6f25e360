package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/morezero/agentmesh/pkg/events"
	"github.com/morezero/agentmesh/pkg/metrics"
)

const logPrefix = "auth:middleware"

// Gate wraps HTTP handlers with the shared-secret check and reports every failed check.
type Gate struct {
	ctx       Context
	agent     string
	publisher events.EventPublisher
	metrics   *metrics.Collector
}

// NewGateParams holds parameters for NewGate.
type NewGateParams struct {
	Context Context
	// Agent names the service in emitted events.
	Agent string
	// Publisher is optional; nil disables bus events.
	Publisher events.EventPublisher
	// Metrics is optional.
	Metrics *metrics.Collector
}

// NewGate creates a Gate.
func NewGate(params NewGateParams) *Gate {
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	return &Gate{
		ctx:       params.Context,
		agent:     params.Agent,
		publisher: pub,
		metrics:   params.Metrics,
	}
}

// Decide applies the gate's policy to an inbound request.
func (g *Gate) Decide(r *http.Request) Decision {
	return Decide(g.ctx, r.URL.Path, r.Header.Get(HeaderName))
}

// Middleware returns next wrapped in the gate. A rejected request gets 401 with an
// empty body and never reaches next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		switch d.Verdict {
		case Allow:
			next.ServeHTTP(w, r)
		case WarnAndAllow:
			g.report(r, d)
			next.ServeHTTP(w, r)
		default:
			g.report(r, d)
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
}

// report emits exactly one event for a failed check. The secret is never included.
func (g *Gate) report(r *http.Request, d Decision) {
	decision := d.Verdict.String()
	slog.Warn(fmt.Sprintf("%s - auth check failed: decision=%s reason=%s method=%s path=%s remote=%s mode=%s",
		logPrefix, decision, d.Reason, r.Method, r.URL.Path, r.RemoteAddr, g.ctx.Mode()))

	g.metrics.RecordAuthEvent(g.agent, decision, d.Reason)

	event := &events.AuthEvent{
		Agent:      g.agent,
		Decision:   decision,
		Reason:     d.Reason,
		Mode:       string(g.ctx.Mode()),
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := g.publisher.PublishAuth(r.Context(), event); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish auth event: %v", logPrefix, err))
	}
}
