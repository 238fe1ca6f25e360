package server

import (
	"strings"

	"github.com/morezero/agentmesh/pkg/auth"
	"github.com/morezero/agentmesh/pkg/registry"
)

// openAPI3 types for generating a document from the capability descriptor.
type openAPI3Spec struct {
	OpenAPI    string                      `json:"openapi"`
	Info       openAPI3Info                `json:"info"`
	Servers    []openAPI3Server            `json:"servers,omitempty"`
	Paths      map[string]openAPI3PathItem `json:"paths"`
	Components openAPI3Components          `json:"components"`
}

type openAPI3Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type openAPI3Server struct {
	URL string `json:"url"`
}

type openAPI3PathItem struct {
	Get  *openAPI3Operation `json:"get,omitempty"`
	Post *openAPI3Operation `json:"post,omitempty"`
}

type openAPI3Operation struct {
	Summary     string                      `json:"summary"`
	Description string                      `json:"description,omitempty"`
	OperationID string                      `json:"operationId"`
	Security    []map[string][]string       `json:"security,omitempty"`
	RequestBody *openAPI3RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]openAPI3Response `json:"responses"`
}

type openAPI3RequestBody struct {
	Required bool                         `json:"required,omitempty"`
	Content  map[string]openAPI3MediaType `json:"content"`
}

type openAPI3Response struct {
	Description string                       `json:"description"`
	Content     map[string]openAPI3MediaType `json:"content,omitempty"`
}

type openAPI3MediaType struct {
	Schema map[string]interface{} `json:"schema,omitempty"`
}

type openAPI3Components struct {
	Schemas         map[string]interface{} `json:"schemas"`
	SecuritySchemes map[string]interface{} `json:"securitySchemes"`
}

const apiKeyScheme = "internalApiKey"

// buildOpenAPISpec documents the agent's two wire operations. POST /tasks carries one
// request variant per skill, discriminated by skill_name.
func buildOpenAPISpec(d registry.CapabilityDescriptor) *openAPI3Spec {
	schemas := map[string]interface{}{
		"TaskResult":           taskResultSchema(),
		"CapabilityDescriptor": map[string]interface{}{"type": "object"},
	}

	variants := make([]interface{}, 0, len(d.Skills))
	for _, s := range d.Skills {
		input := s.InputSchema
		if input == nil {
			input = map[string]interface{}{"type": "object"}
		}
		output := s.OutputSchema
		if output == nil {
			output = map[string]interface{}{"type": "object"}
		}
		requestName := s.Name + "_request"
		schemas[s.Name+"_arguments"] = input
		schemas[s.Name+"_payload"] = output
		schemas[requestName] = map[string]interface{}{
			"type":        "object",
			"description": s.Description,
			"required":    []string{"skill_name", "arguments", "request_id"},
			"properties": map[string]interface{}{
				"skill_name": map[string]interface{}{"type": "string", "enum": []string{s.Name}},
				"arguments":  ref(s.Name + "_arguments"),
				"request_id": map[string]interface{}{"type": "string"},
			},
		}
		variants = append(variants, ref(requestName))
	}

	taskBody := map[string]interface{}{"oneOf": variants}
	if len(variants) == 0 {
		taskBody = map[string]interface{}{"type": "object"}
	}

	desc := d.Description
	if desc == "" {
		desc = "Agent " + d.Name
	}

	spec := &openAPI3Spec{
		OpenAPI: "3.0.0",
		Info: openAPI3Info{
			Title:       d.Name,
			Description: desc,
			Version:     d.Version,
		},
		Paths: map[string]openAPI3PathItem{
			registry.CardPath: {
				Get: &openAPI3Operation{
					Summary:     "Capability descriptor",
					OperationID: "getAgentCard",
					Responses: map[string]openAPI3Response{
						"200": jsonResponse("Capability descriptor", ref("CapabilityDescriptor")),
					},
				},
			},
			registry.TasksPath: {
				Post: &openAPI3Operation{
					Summary:     "Execute a skill",
					Description: "Skills: " + strings.Join(d.SkillNames(), ", "),
					OperationID: "executeTask",
					Security:    []map[string][]string{{apiKeyScheme: {}}},
					RequestBody: &openAPI3RequestBody{
						Required: true,
						Content:  map[string]openAPI3MediaType{"application/json": {Schema: taskBody}},
					},
					Responses: map[string]openAPI3Response{
						"200": jsonResponse("Task result (success or failure)", ref("TaskResult")),
						"400": jsonResponse("Malformed task request", ref("TaskResult")),
						"401": {Description: "Shared secret rejected"},
					},
				},
			},
		},
		Components: openAPI3Components{
			Schemas: schemas,
			SecuritySchemes: map[string]interface{}{
				apiKeyScheme: map[string]interface{}{"type": "apiKey", "in": "header", "name": auth.HeaderName},
			},
		},
	}
	if d.Endpoint != "" {
		spec.Servers = []openAPI3Server{{URL: d.Endpoint}}
	}
	return spec
}

func taskResultSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"request_id", "status"},
		"properties": map[string]interface{}{
			"request_id": map[string]interface{}{"type": "string"},
			"status":     map[string]interface{}{"type": "string", "enum": []string{"success", "failure"}},
			"payload":    map[string]interface{}{},
			"error": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"kind": map[string]interface{}{
						"type": "string",
						"enum": []string{"UNKNOWN_SKILL", "INVALID_ARGUMENTS", "EXECUTION_ERROR", "TRANSPORT_ERROR"},
					},
					"message":   map[string]interface{}{"type": "string"},
					"details":   map[string]interface{}{},
					"retryable": map[string]interface{}{"type": "boolean"},
				},
			},
		},
	}
}

func jsonResponse(description string, schema map[string]interface{}) openAPI3Response {
	return openAPI3Response{
		Description: description,
		Content:     map[string]openAPI3MediaType{"application/json": {Schema: schema}},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}
