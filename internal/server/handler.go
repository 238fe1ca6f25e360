package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/morezero/agentmesh/pkg/auth"
	"github.com/morezero/agentmesh/pkg/dispatcher"
	"github.com/morezero/agentmesh/pkg/events"
	"github.com/morezero/agentmesh/pkg/metrics"
	"github.com/morezero/agentmesh/pkg/registry"
)

const handlerLogPrefix = "server:handler"

// maxTaskBodyBytes bounds the size of a POST /tasks body.
const maxTaskBodyBytes = 1 << 20

const (
	defaultRequestTimeout     = 25 * time.Second
	defaultHealthCheckTimeout = 5 * time.Second
)

// HandlerParams holds parameters for NewHandler.
type HandlerParams struct {
	Registry *registry.Registry
	Auth     auth.Context
	// Publisher is optional; nil disables auth events on the bus.
	Publisher events.EventPublisher
	// Metrics is optional; nil disables /metrics and all recording.
	Metrics            *metrics.Collector
	RequestTimeout     time.Duration
	HealthCheckTimeout time.Duration
}

// agentHandler serves one agent's HTTP surface.
type agentHandler struct {
	reg                *registry.Registry
	disp               *dispatcher.Dispatcher
	metrics            *metrics.Collector
	agent              string
	requestTimeout     time.Duration
	healthCheckTimeout time.Duration
}

// NewHandler builds the agent's HTTP handler: the capability card, POST /tasks and the
// operational endpoints, all behind the auth gate.
func NewHandler(params HandlerParams) http.Handler {
	h := &agentHandler{
		reg:                params.Registry,
		disp:               dispatcher.NewDispatcher(params.Registry),
		metrics:            params.Metrics,
		agent:              params.Registry.Name(),
		requestTimeout:     params.RequestTimeout,
		healthCheckTimeout: params.HealthCheckTimeout,
	}
	if h.requestTimeout <= 0 {
		h.requestTimeout = defaultRequestTimeout
	}
	if h.healthCheckTimeout <= 0 {
		h.healthCheckTimeout = defaultHealthCheckTimeout
	}

	mux := http.NewServeMux()
	mux.HandleFunc(registry.CardPath, h.handleCard())
	mux.HandleFunc(registry.TasksPath, h.handleTasks())
	mux.HandleFunc("/health", h.handleHealth())
	mux.HandleFunc("/ready", h.handleReady())
	mux.HandleFunc("/openapi.json", h.handleOpenAPI())
	mux.Handle("/metrics", params.Metrics.Handler())
	mux.HandleFunc("/", h.handleHome())

	gate := auth.NewGate(auth.NewGateParams{
		Context:   params.Auth,
		Agent:     h.agent,
		Publisher: params.Publisher,
		Metrics:   params.Metrics,
	})
	return gate.Middleware(mux)
}

func (h *agentHandler) handleCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, h.disp.Capabilities())
	}
}

// handleTasks decodes a TaskRequest, dispatches it under the request deadline and
// answers 200 with the TaskResult, whether the task succeeded or failed.
func (h *agentHandler) handleTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req dispatcher.TaskRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTaskBodyBytes)).Decode(&req); err != nil {
			slog.Warn(fmt.Sprintf("%s - failed to decode task request: %v", handlerLogPrefix, err))
			writeJSON(w, http.StatusBadRequest,
				dispatcher.FailureResult("", dispatcher.KindInvalidArguments, "Malformed task request", false))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		start := time.Now()
		result := h.disp.Dispatch(ctx, &req)
		h.metrics.RecordTask(h.agent, skillLabel(req.SkillName, result), string(result.Status), result.Kind(), time.Since(start))

		writeJSON(w, http.StatusOK, result)
	}
}

func (h *agentHandler) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.healthCheckTimeout)
		defer cancel()
		health := h.reg.Health(ctx)
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	}
}

func (h *agentHandler) handleReady() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (h *agentHandler) handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=60")
		writeJSON(w, http.StatusOK, buildOpenAPISpec(h.disp.Capabilities()))
	}
}

// --- helpers ---

// skillLabel keeps the metrics label set bounded: names of skills the agent does not
// serve are reported as "unknown".
func skillLabel(name string, result *dispatcher.TaskResult) string {
	if result.Kind() == dispatcher.KindUnknownSkill {
		return "unknown"
	}
	return name
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// writeJSON encodes v before writing the status, so an encoding failure becomes a
// 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", handlerLogPrefix, err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to write response: %v", handlerLogPrefix, err))
	}
}
