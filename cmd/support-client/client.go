package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/agentmesh/internal/config"
	"github.com/morezero/agentmesh/pkg/bootstrap"
	"github.com/morezero/agentmesh/pkg/catalog"
	"github.com/morezero/agentmesh/pkg/commsutil"
	"github.com/morezero/agentmesh/pkg/events"
	"github.com/morezero/agentmesh/pkg/orchestrator"
	"github.com/morezero/agentmesh/pkg/proxy"
	"github.com/morezero/agentmesh/pkg/semver"
)

const logPrefix = "support-client:client"

// demoQueries are answered by `ask` when no query is given.
var demoQueries = []string{
	"Can you tell me about the iPhone 15 Pro? Is it in stock?",
	"Is the MacBook Pro 14 in stock?",
	"How long will it take to ship an iPhone 15 Pro to San Francisco?",
	"Where is package with tracking number 1Z999?",
	"Can you charge me $9.99 in USD for my new iPhone? My email is test@example.com",
}

type client struct {
	cfg  *config.Config
	mesh *bootstrap.ResolvedMesh
	out  io.Writer
}

func newClient(cfg *config.Config, mesh *bootstrap.ResolvedMesh, out io.Writer) *client {
	return &client{cfg: cfg, mesh: mesh, out: out}
}

// proxyFor builds a proxy for "name[@range]". An explicit range overrides the mesh's.
func (c *client) proxyFor(ref string) (*proxy.Proxy, error) {
	parsed, err := semver.ParseAgentRef(ref)
	if err != nil {
		return nil, err
	}
	entry := c.mesh.Get(parsed.Name)
	if entry == nil {
		return nil, fmt.Errorf("%s - agent %q is not in the mesh (known: %s)",
			logPrefix, parsed.Name, strings.Join(c.mesh.Names(), ", "))
	}
	versionRange := entry.VersionRange
	if parsed.Range != "" {
		versionRange = parsed.Range
	}
	return proxy.New(proxy.Options{
		Endpoint:     entry.Endpoint,
		Secret:       c.cfg.APIKey,
		VersionRange: versionRange,
		Timeout:      c.cfg.ProxyTimeout,
	})
}

// orchestrator wires one proxy per mesh agent behind the keyword planner.
func (c *client) orchestrator() (*orchestrator.Orchestrator, error) {
	agentSet := make(map[string]orchestrator.Agent, len(c.mesh.Names()))
	for _, name := range c.mesh.Names() {
		p, err := c.proxyFor(name)
		if err != nil {
			return nil, err
		}
		agentSet[name] = p
	}
	return orchestrator.New(orchestrator.Params{
		Agents:         agentSet,
		Planner:        orchestrator.NewKeywordPlanner(catalog.DefaultCatalog().ProductNames()),
		Composer:       orchestrator.TextComposer{},
		CallTimeout:    c.cfg.OrchestratorCallTimeout,
		MaxConcurrency: c.cfg.OrchestratorMaxConcurrency,
	})
}

func (c *client) ask(ctx context.Context, queries []string) error {
	if len(queries) == 0 {
		queries = demoQueries
	} else {
		queries = []string{strings.Join(queries, " ")}
	}

	orch, err := c.orchestrator()
	if err != nil {
		return err
	}
	for i, q := range queries {
		resp, err := orch.Handle(ctx, orchestrator.Request{Query: q})
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		fmt.Fprintf(c.out, "Q: %s\nA: %s\n", q, strings.ReplaceAll(resp.Text, "\n", "\n   "))
	}
	return nil
}

func (c *client) call(ctx context.Context, ref, skill, argsJSON string) error {
	args := map[string]interface{}{}
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return fmt.Errorf("%s - arguments must be a JSON object: %w", logPrefix, err)
		}
	}
	p, err := c.proxyFor(ref)
	if err != nil {
		return err
	}
	res, err := p.Invoke(ctx, skill, args)
	if err != nil {
		return err
	}
	return c.printJSON(res)
}

func (c *client) card(ctx context.Context, ref string) error {
	p, err := c.proxyFor(ref)
	if err != nil {
		return err
	}
	d, err := p.EnsureCapabilities(ctx)
	if err != nil {
		return err
	}
	return c.printJSON(d)
}

func (c *client) listAgents() {
	fmt.Fprintf(c.out, "mesh %s v%s\n", c.mesh.Name(), c.mesh.Version())
	for _, name := range c.mesh.Names() {
		a := c.mesh.Get(name)
		line := fmt.Sprintf("%-32s %s", semver.BuildAgentRef(name, a.VersionRange), a.Endpoint)
		if al := c.mesh.AliasesFor(name); len(al) > 0 {
			line += fmt.Sprintf("  (alias %s)", strings.Join(al, ", "))
		}
		fmt.Fprintln(c.out, line)
	}
}

// watchAuth prints every per-agent auth event until ctx is done.
func (c *client) watchAuth(ctx context.Context) error {
	if c.cfg.COMMSURL == "" {
		return fmt.Errorf("%s - COMMS_URL is required for watch-auth", logPrefix)
	}
	nc, err := commsutil.Connect(c.cfg.COMMSURL, commsutil.ConnectOptions{
		Service: c.cfg.COMMSName,
		Role:    commsutil.RoleWatcher,
	})
	if err != nil {
		return err
	}
	defer commsutil.Close(nc, 0)

	sub, err := nc.Subscribe(commsutil.SubjectAuthWildcard, func(msg *comms.Msg) {
		c.printAuthEvent(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("%s - subscribe %s: %w", logPrefix, commsutil.SubjectAuthWildcard, err)
	}
	defer sub.Unsubscribe()

	slog.Info(fmt.Sprintf("%s - Watching %s", logPrefix, commsutil.SubjectAuthWildcard))
	<-ctx.Done()
	return nil
}

func (c *client) printAuthEvent(data []byte) {
	var ev events.AuthEvent
	if err := commsutil.DecodePayload(data, &ev); err != nil {
		slog.Warn(fmt.Sprintf("%s - undecodable auth event: %v", logPrefix, err))
		return
	}
	fmt.Fprintf(c.out, "%s %s %s reason=%s mode=%s %s %s from %s\n",
		ev.Timestamp, ev.Agent, ev.Decision, ev.Reason, ev.Mode, ev.Method, ev.Path, ev.RemoteAddr)
}

func (c *client) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
