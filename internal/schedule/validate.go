package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	prompt "github.com/qpig0218/Rootplanner/internal/prompts/schedule"
)

// Validator checks parsed schedules against the schedule JSON schema.
// Validation is advisory: callers log violations but keep the schedule.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schedule schema.
func NewValidator() (*Validator, error) {
	return NewValidatorFromSchema(prompt.Schema())
}

// NewValidatorFromSchema compiles a caller-supplied schema document.
func NewValidatorFromSchema(raw []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(prompt.SchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schedule schema: %w", err)
	}
	schema, err := compiler.Compile(prompt.SchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schedule schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate reports whether doc conforms to the schema.
func (v *Validator) Validate(doc json.RawMessage) error {
	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		return fmt.Errorf("failed to decode schedule for validation: %w", err)
	}
	if err := v.schema.Validate(value); err != nil {
		return fmt.Errorf("schedule does not match schema: %w", err)
	}
	return nil
}
