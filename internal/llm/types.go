package llm

import "encoding/json"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in a conversation.
// Assistant messages may carry tool calls; tool messages carry the result of
// one call and reference it via ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolDefinition declares a tool the model may request, with a JSON Schema
// describing its arguments.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is a model's request to execute a declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON matching the tool's parameter schema
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
	Tools       []ToolDefinition
}

// CompletionResponse contains the result of an LLM completion request.
// When the model requests tool execution, ToolCalls is non-empty and Content
// may be empty.
type CompletionResponse struct {
	Content      string
	ToolCalls    []ToolCall
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
