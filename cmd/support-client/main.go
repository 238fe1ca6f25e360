// Package main is the support client: it routes customer questions through the
// orchestrator and lets operators call or inspect individual agents.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/morezero/agentmesh/internal/config"
	"github.com/morezero/agentmesh/internal/server"
	"github.com/morezero/agentmesh/pkg/bootstrap"
)

const usage = `Usage: support-client [command]
       support-client ask [query...]                        Answer queries via the orchestrator (default: demo queries).
       support-client call <agent[@range]> <skill> [json]   Invoke one skill through a proxy and print the TaskResult.
       support-client card <agent[@range]>                  Print an agent's capability descriptor.
       support-client agents                                List the agents in the mesh.
       support-client watch-auth                            Print auth warnings/rejections published on COMMS.

Agents are named by full name or alias (catalog, inventory, shipping, payment).

Environment: MESH_FILE (agent endpoints), A2A_API_KEY (sent as x-internal-api-key), PROXY_TIMEOUT,
ORCHESTRATOR_CALL_TIMEOUT, ORCHESTRATOR_MAX_CONCURRENCY, COMMS_URL (watch-auth), LOG_LEVEL.
`

func main() {
	args := os.Args[1:]
	cmd := "ask"
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
		args = args[1:]
	}

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("support-client: load config: %v", err)
	}
	if err := cfg.ValidateForClient(); err != nil {
		log.Fatalf("support-client: %v", err)
	}
	server.SetupLogging(cfg.LogLevel)

	meshCfg, err := bootstrap.LoadMeshConfig(cfg.MeshFile)
	if err != nil {
		log.Fatalf("support-client: load mesh: %v", err)
	}
	c := newClient(cfg, bootstrap.CreateResolvedMesh(meshCfg), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "ask":
		err = c.ask(ctx, args)
	case "call":
		if len(args) < 2 {
			log.Fatalf("support-client call: require <agent[@range]> <skill> [json-args]")
		}
		argsJSON := ""
		if len(args) > 2 {
			argsJSON = args[2]
		}
		err = c.call(ctx, args[0], args[1], argsJSON)
	case "card":
		if len(args) < 1 {
			log.Fatalf("support-client card: require <agent[@range]>")
		}
		err = c.card(ctx, args[0])
	case "agents":
		c.listAgents()
	case "watch-auth":
		err = c.watchAuth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("support-client %s: %v", cmd, err)
	}
}
