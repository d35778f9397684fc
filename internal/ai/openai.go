package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type oaMsg struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type oaToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type oaTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters,omitempty"`
	} `json:"function"`
}

type oaChatReq struct {
	Model          string   `json:"model"`
	Messages       []oaMsg  `json:"messages"`
	Tools          []oaTool `json:"tools,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type oaChatResp struct {
	Choices []struct {
		Message oaMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	msg, err := p.complete(ctx, oaChatReq{
		Model:    strings.TrimSpace(p.Model),
		Messages: toWire(messages),
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// ChatTools runs one tool-calling turn. The returned message carries
// either final content or the tool calls the model wants executed.
func (p *OpenAIProvider) ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	req := oaChatReq{
		Model:    strings.TrimSpace(p.Model),
		Messages: toWire(messages),
	}
	for _, t := range tools {
		var wt oaTool
		wt.Type = "function"
		wt.Function.Name = t.Name
		wt.Function.Description = t.Description
		wt.Function.Parameters = t.Parameters
		req.Tools = append(req.Tools, wt)
	}

	msg, err := p.complete(ctx, req)
	if err != nil {
		return Message{}, err
	}
	return fromWire(msg)
}

// ChatJSON forces a JSON-object response.
func (p *OpenAIProvider) ChatJSON(ctx context.Context, messages []Message) (string, error) {
	req := oaChatReq{
		Model:    strings.TrimSpace(p.Model),
		Messages: toWire(messages),
	}
	req.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}

	msg, err := p.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, reqBody oaChatReq) (oaMsg, error) {
	if p.Client == nil {
		return oaMsg{}, errors.New("openai: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return oaMsg{}, errors.New("openai: api key is required")
	}
	if reqBody.Model == "" {
		return oaMsg{}, errors.New("openai: model is required")
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return oaMsg{}, err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return oaMsg{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return oaMsg{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return oaMsg{}, fmt.Errorf("openai: %s", msg)
	}

	var decoded oaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return oaMsg{}, err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return oaMsg{}, errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return oaMsg{}, errors.New("openai: empty response")
	}
	return decoded.Choices[0].Message, nil
}

func toWire(messages []Message) []oaMsg {
	out := make([]oaMsg, 0, len(messages))
	for _, m := range messages {
		w := oaMsg{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			var wc oaToolCall
			wc.ID = tc.ID
			wc.Type = "function"
			wc.Function.Name = tc.Name
			wc.Function.Arguments = string(tc.Arguments)
			w.ToolCalls = append(w.ToolCalls, wc)
		}
		out = append(out, w)
	}
	return out
}

func fromWire(m oaMsg) (Message, error) {
	out := Message{Role: m.Role, Content: m.Content}
	if out.Role == "" {
		out.Role = "assistant"
	}
	for _, wc := range m.ToolCalls {
		args := wc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return Message{}, fmt.Errorf("openai: tool call %s has malformed arguments", wc.Function.Name)
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        wc.ID,
			Name:      wc.Function.Name,
			Arguments: json.RawMessage(args),
		})
	}
	return out, nil
}
