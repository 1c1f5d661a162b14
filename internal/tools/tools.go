// Package tools exposes side-effecting actions to the model through
// function calling. Every execution resolves to one of a closed set of
// outcomes so the conversation layer never has to interpret raw errors.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ragdesk/ragdesk/internal/llm"
)

// OutcomeKind is the closed set of tool results.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeInvalid   OutcomeKind = "invalid"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is what a tool execution resolves to. Reference carries a
// platform identifier when one exists.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Message   string      `json:"message"`
	Reference string      `json:"reference,omitempty"`
}

// Tool is one action the model may invoke.
type Tool interface {
	Name() string
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) Outcome
}

// Registry dispatches model tool calls to registered tools. It satisfies
// the completion client's executor interface.
type Registry struct {
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates a Registry with the given tools.
func NewRegistry(logger *slog.Logger, tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool), logger: logger}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Definitions returns the tool definitions to advertise to the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Execute runs one tool call and returns the outcome as JSON for the model.
// Unknown tools and execution failures still produce an outcome; the error
// return is reserved for encoding problems.
func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	tool, ok := r.tools[call.Name]

	var outcome Outcome
	if !ok {
		outcome = Outcome{
			Kind:    OutcomeFailed,
			Message: fmt.Sprintf("unknown tool %q", call.Name),
		}
	} else {
		outcome = tool.Execute(ctx, json.RawMessage(call.Arguments))
	}

	r.logger.Info("tool executed",
		"tool", call.Name, "outcome", outcome.Kind, "reference", outcome.Reference)

	encoded, err := json.Marshal(outcome)
	if err != nil {
		return "", fmt.Errorf("encoding outcome: %w", err)
	}
	return string(encoded), nil
}
