package registry

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists the reasons arguments do not match a skill's input schema.
type ValidationError struct {
	Skill  string
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid arguments for " + e.Skill + ": " + strings.Join(e.Errors, "; ")
}

func compileSchema(schema map[string]interface{}) (*gojsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
}

// ValidateArguments checks args against the skill's input schema. A skill without a
// schema accepts any arguments.
func (s *RegisteredSkill) ValidateArguments(args map[string]interface{}) error {
	if s.schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return &ValidationError{Skill: s.Name, Errors: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		msgs = append(msgs, re.String())
	}
	return &ValidationError{Skill: s.Name, Errors: msgs}
}
