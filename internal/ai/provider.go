package ai

import (
	"context"
	"encoding/json"
)

// Message is one conversation turn in provider form.
type Message struct {
	Role    string
	Content string

	// Set on assistant messages that requested tool calls.
	ToolCalls []ToolCall

	// Set on role "tool" messages carrying a tool result.
	ToolCallID string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage // JSON object with the call arguments
}

// ToolSpec describes a callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema for the arguments
}

// Provider is a chat backend: conversation in, final text out.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ToolProvider is an optional interface. Providers may support
// tool-calling turns; the returned message carries either final content
// or tool calls to execute.
type ToolProvider interface {
	ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
}

// JSONProvider is an optional interface. Providers may support forcing a
// JSON-object response, used by the evaluation judge.
type JSONProvider interface {
	ChatJSON(ctx context.Context, messages []Message) (string, error)
}
