// Package agent runs the LLM agent for one chat request: it builds the
// system instructions, attaches the remote tool connection and drives the
// tool-calling loop until the model produces a final answer.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/techstore/support-api/internal/ai"
	"github.com/techstore/support-api/internal/chat"
)

// ErrMaxTurns indicates the model kept requesting tools past the turn cap.
var ErrMaxTurns = errors.New("agent: tool loop exceeded max turns")

// ToolSession is one live connection to the remote tool server.
type ToolSession interface {
	Tools(ctx context.Context) ([]ai.ToolSpec, error)
	Call(ctx context.Context, name string, args json.RawMessage) (string, error)
	Close() error
}

// ToolSource opens tool sessions. A fresh session is opened per request
// so a dead remote connection never outlives the request that hit it.
type ToolSource interface {
	Connect(ctx context.Context) (ToolSession, error)
}

const (
	defaultTimeout  = 60 * time.Second
	defaultMaxTurns = 8
)

// Agent executes conversations against a provider, optionally with tools.
type Agent struct {
	provider ai.Provider
	tools    ToolSource // nil = no tool server configured
	timeout  time.Duration
	maxTurns int
}

func New(provider ai.Provider, tools ToolSource, timeout time.Duration, maxTurns int) *Agent {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Agent{provider: provider, tools: tools, timeout: timeout, maxTurns: maxTurns}
}

// Run produces the assistant reply for one request. The whole run,
// including every tool round-trip, is bounded by the configured timeout;
// a hung remote tool connection cannot stall the request indefinitely.
func (a *Agent) Run(ctx context.Context, state chat.CustomerState, history []chat.HistoryMessage, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msgs := make([]ai.Message, 0, len(history)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: Instructions(state)})
	for _, h := range history {
		msgs = append(msgs, ai.Message{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, ai.Message{Role: chat.RoleUser, Content: message})

	tp, hasTools := a.provider.(ai.ToolProvider)
	if a.tools == nil || !hasTools {
		return a.provider.Chat(ctx, msgs)
	}

	session, err := a.tools.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("tool connection: %w", err)
	}
	defer session.Close()

	specs, err := session.Tools(ctx)
	if err != nil {
		return "", fmt.Errorf("list tools: %w", err)
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		reply, err := tp.ChatTools(ctx, msgs, specs)
		if err != nil {
			return "", err
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		msgs = append(msgs, reply)
		for _, call := range reply.ToolCalls {
			out, err := session.Call(ctx, call.Name, call.Arguments)
			if err != nil {
				// Tool failures go back to the model as content; it can
				// recover or apologize. Context errors still abort the run.
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				out = fmt.Sprintf("tool error: %v", err)
			}
			msgs = append(msgs, ai.Message{
				Role:       "tool",
				Content:    out,
				ToolCallID: call.ID,
			})
		}
	}

	return "", ErrMaxTurns
}
