// Package schedule holds the prompt text sent to the completion provider
// and the JSON schema describing the schedule the model is asked to return.
package schedule

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

//go:embed schema.json
var schemaJSON []byte

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SchemaURL is the resource name the schema is registered under.
const SchemaURL = "schedule.schema.json"

// SystemPrompt returns the role and formatting instructions for the planner.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt: the expected JSON shape followed by
// the case details, inserted verbatim.
func UserPrompt(caseDetails string) string {
	var buf bytes.Buffer
	data := struct{ CaseDetails string }{CaseDetails: caseDetails}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// Schema returns the raw JSON schema for a visit schedule.
func Schema() []byte {
	return schemaJSON
}
