package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/morezero/agentmesh/pkg/registry"
)

// homePageTemplate lists the agent's health and skills (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Card.Name}}</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; vertical-align: top; }
    th { background: #f0f4f8; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    pre { background: #f5f5f5; padding: 0.75rem; overflow-x: auto; font-size: 0.85rem; margin: 0.25rem 0; border: 1px solid #eee; }
  </style>
</head>
<body>
  <h1>{{.Card.Name}}</h1>
  <p class="meta">{{.Card.Description}}</p>
  <p class="meta">Version {{.Card.Version}} at {{.Card.Endpoint}}. <a href="{{.CardPath}}">Agent card</a> | <a href="/openapi.json">OpenAPI</a></p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Store: {{if .Health.Checks.Store}}OK{{else}}<span class="status-unhealthy">Failed</span>{{end}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Skills</h2>
    {{if not .Card.Skills}}
    <p>No skills registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Skill</th><th>Description</th><th>Input schema</th></tr>
      </thead>
      <tbody>
        {{range .Card.Skills}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{.Description}}</td>
          <td><pre>{{json .InputSchema}}</pre></td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Card     registry.CapabilityDescriptor
	CardPath string
	Health   *registry.HealthOutput
}

// handleHome returns an HTTP handler for the agent home page.
func (h *agentHandler) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Funcs(template.FuncMap{
		"json": func(v interface{}) string {
			if v == nil {
				return ""
			}
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Sprintf("%v", v)
			}
			return string(b)
		},
	}).Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.healthCheckTimeout)
		defer cancel()

		data := homeData{
			Card:     h.disp.Capabilities(),
			CardPath: registry.CardPath,
			Health:   h.reg.Health(ctx),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", handlerLogPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
