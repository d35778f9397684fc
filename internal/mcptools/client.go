// Package mcptools connects the agent to the remote TechStore tool server
// (product search, order lookup, customer verification) over the MCP
// streamable-HTTP transport.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techstore/support-api/internal/agent"
	"github.com/techstore/support-api/internal/ai"
)

// Source opens MCP sessions against a fixed endpoint.
type Source struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewSource(endpoint string) *Source {
	return &Source{Endpoint: endpoint}
}

// Connect opens a fresh MCP session. Callers own the session and must
// Close it; the chat pipeline opens one per request.
func (s *Source) Connect(ctx context.Context) (agent.ToolSession, error) {
	if strings.TrimSpace(s.Endpoint) == "" {
		return nil, errors.New("mcptools: endpoint is required")
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "techstore-support",
		Version: "1.0.0",
	}, nil)

	transport := &mcp.StreamableClientTransport{
		Endpoint:   s.Endpoint,
		HTTPClient: s.HTTPClient,
	}

	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcptools: connect %s: %w", s.Endpoint, err)
	}
	return &session{cs: cs}, nil
}

type session struct {
	cs *mcp.ClientSession
}

// Tools lists the server's tools in provider form. Input schemas pass
// through verbatim as JSON; the model consumes them as-is.
func (s *session) Tools(ctx context.Context) ([]ai.ToolSpec, error) {
	res, err := s.cs.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}

	specs := make([]ai.ToolSpec, 0, len(res.Tools))
	for _, t := range res.Tools {
		params, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("mcptools: tool %s schema: %w", t.Name, err)
		}
		specs = append(specs, ai.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return specs, nil
}

// Call invokes a remote tool and returns its text content. A tool-level
// failure (IsError result) is returned as an error so the agent can feed
// it back to the model.
func (s *session) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	var parsed map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", fmt.Errorf("mcptools: tool %s arguments: %w", name, err)
		}
	}

	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: parsed,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("mcptools: tool %s failed: %s", name, b.String())
	}
	return b.String(), nil
}

func (s *session) Close() error {
	return s.cs.Close()
}
