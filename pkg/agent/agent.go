// Package agent provides the language-model agent capability: one
// conversational session per logical role, invoked with an input message
// and an optional structured-output schema.
package agent

import (
	"context"
	"strings"
)

// Role identifies a logical agent role. Each role owns its own
// conversational history; the pipeline resets it between unrelated items.
type Role string

const (
	RoleProfiler   Role = "profiler"
	RoleStrategist Role = "strategist"
	RoleScanner    Role = "scanner"
	RoleQualifier  Role = "qualifier"
	RoleEnrichment Role = "enrichment"
	RoleWriter     Role = "writer"
)

// Reply is the outcome of a single invocation. Structured carries the
// side-channel payload when the model answered through the output tool;
// Content and Blocks carry whatever free text it produced.
type Reply struct {
	Structured map[string]any
	Content    string
	Blocks     []string
}

// Text returns the concatenated text content, preferring Content.
func (r *Reply) Text() string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	return strings.Join(r.Blocks, "\n")
}

// Invoker is the capability contract consumed by the pipeline.
type Invoker interface {
	// Invoke sends message to the given role's session. When schema is
	// non-nil the model is offered a structured-output tool described by
	// it; a successful tool call lands in Reply.Structured.
	Invoke(ctx context.Context, role Role, message string, schema map[string]any) (*Reply, error)

	// Reset clears the role's conversational history so prior items
	// cannot leak context into the next.
	Reset(role Role)
}

// ObjectSchema builds a JSON schema for an object with the given
// properties; required lists the property names that must be present.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
