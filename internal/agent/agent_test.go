package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/techstore/support-api/internal/ai"
	"github.com/techstore/support-api/internal/chat"
)

// fakeProvider scripts a sequence of ChatTools replies.
type fakeProvider struct {
	replies  []ai.Message
	calls    int
	lastMsgs []ai.Message
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.lastMsgs = append([]ai.Message(nil), messages...)
	return "plain reply", nil
}

func (p *fakeProvider) ChatTools(ctx context.Context, messages []ai.Message, tools []ai.ToolSpec) (ai.Message, error) {
	_ = ctx
	_ = tools
	p.lastMsgs = append([]ai.Message(nil), messages...)
	if p.calls >= len(p.replies) {
		return ai.Message{Role: "assistant", Content: "done"}, nil
	}
	r := p.replies[p.calls]
	p.calls++
	return r, nil
}

// plainProvider has no tool support at all.
type plainProvider struct{ lastMsgs []ai.Message }

func (p *plainProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.lastMsgs = append([]ai.Message(nil), messages...)
	return "no tools here", nil
}

type fakeSession struct {
	calls  []string
	out    map[string]string
	closed bool
}

func (s *fakeSession) Tools(ctx context.Context) ([]ai.ToolSpec, error) {
	_ = ctx
	return []ai.ToolSpec{{Name: "search_products", Parameters: json.RawMessage(`{}`)}}, nil
}

func (s *fakeSession) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	_ = ctx
	_ = args
	s.calls = append(s.calls, name)
	if out, ok := s.out[name]; ok {
		return out, nil
	}
	return "", errors.New("unknown tool")
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeSource struct{ session *fakeSession }

func (f *fakeSource) Connect(ctx context.Context) (ToolSession, error) {
	_ = ctx
	return f.session, nil
}

func TestRun_ToolLoop(t *testing.T) {
	prov := &fakeProvider{replies: []ai.Message{
		{
			Role: "assistant",
			ToolCalls: []ai.ToolCall{
				{ID: "c1", Name: "search_products", Arguments: json.RawMessage(`{"query":"monitor"}`)},
			},
		},
		{Role: "assistant", Content: "We have three 27 inch monitors."},
	}}
	sess := &fakeSession{out: map[string]string{"search_products": `[{"sku":"MON-0001"}]`}}
	a := New(prov, &fakeSource{session: sess}, 0, 0)

	reply, err := a.Run(context.Background(), chat.CustomerState{}, nil, "any 27 inch monitors?")
	if err != nil {
		t.Fatalf("Run = %v", err)
	}
	if reply != "We have three 27 inch monitors." {
		t.Errorf("reply = %q", reply)
	}
	if len(sess.calls) != 1 || sess.calls[0] != "search_products" {
		t.Errorf("tool calls = %v", sess.calls)
	}
	if !sess.closed {
		t.Error("session not closed")
	}

	// The second model call must see the tool result.
	var sawToolMsg bool
	for _, m := range prov.lastMsgs {
		if m.Role == "tool" && m.ToolCallID == "c1" {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Error("tool result never fed back to the model")
	}
}

func TestRun_ToolErrorFedBack(t *testing.T) {
	prov := &fakeProvider{replies: []ai.Message{
		{
			Role: "assistant",
			ToolCalls: []ai.ToolCall{
				{ID: "c1", Name: "does_not_exist", Arguments: json.RawMessage(`{}`)},
			},
		},
		{Role: "assistant", Content: "Sorry, I could not look that up."},
	}}
	sess := &fakeSession{}
	a := New(prov, &fakeSource{session: sess}, 0, 0)

	reply, err := a.Run(context.Background(), chat.CustomerState{}, nil, "hi")
	if err != nil {
		t.Fatalf("Run = %v, tool errors must not fail the run", err)
	}
	if reply != "Sorry, I could not look that up." {
		t.Errorf("reply = %q", reply)
	}

	var sawErrContent bool
	for _, m := range prov.lastMsgs {
		if m.Role == "tool" && strings.Contains(m.Content, "tool error") {
			sawErrContent = true
		}
	}
	if !sawErrContent {
		t.Error("tool error not surfaced to the model")
	}
}

func TestRun_MaxTurns(t *testing.T) {
	// The model asks for a tool on every turn, forever.
	loop := ai.Message{
		Role: "assistant",
		ToolCalls: []ai.ToolCall{
			{ID: "c", Name: "search_products", Arguments: json.RawMessage(`{}`)},
		},
	}
	prov := &fakeProvider{replies: []ai.Message{loop, loop, loop, loop}}
	sess := &fakeSession{out: map[string]string{"search_products": "[]"}}
	a := New(prov, &fakeSource{session: sess}, 0, 3)

	_, err := a.Run(context.Background(), chat.CustomerState{}, nil, "hi")
	if !errors.Is(err, ErrMaxTurns) {
		t.Fatalf("Run = %v, want ErrMaxTurns", err)
	}
	if prov.calls != 3 {
		t.Errorf("model called %d times, want 3", prov.calls)
	}
}

func TestRun_PlainChatWithoutTools(t *testing.T) {
	prov := &fakeProvider{}
	a := New(prov, nil, 0, 0)

	reply, err := a.Run(context.Background(), chat.CustomerState{}, []chat.HistoryMessage{
		{Role: chat.RoleUser, Content: "earlier question"},
	}, "current question")
	if err != nil {
		t.Fatalf("Run = %v", err)
	}
	if reply != "plain reply" {
		t.Errorf("reply = %q", reply)
	}

	if prov.lastMsgs[0].Role != "system" {
		t.Fatal("first message is not the system prompt")
	}
	if prov.lastMsgs[1].Content != "earlier question" {
		t.Errorf("history not forwarded: %+v", prov.lastMsgs)
	}
	if last := prov.lastMsgs[len(prov.lastMsgs)-1]; last.Content != "current question" {
		t.Errorf("user message missing: %+v", last)
	}
}

func TestRun_ProviderWithoutToolSupport(t *testing.T) {
	prov := &plainProvider{}
	a := New(prov, &fakeSource{session: &fakeSession{}}, 0, 0)

	reply, err := a.Run(context.Background(), chat.CustomerState{}, nil, "hi")
	if err != nil {
		t.Fatalf("Run = %v", err)
	}
	if reply != "no tools here" {
		t.Errorf("reply = %q", reply)
	}
}

func TestInstructions_VerifiedBlock(t *testing.T) {
	base := Instructions(chat.CustomerState{})
	if strings.Contains(base, "VERIFIED CUSTOMER SESSION") {
		t.Error("unverified prompt carries the verified block")
	}

	verified := Instructions(chat.CustomerState{
		Verified:   true,
		CustomerID: "550e8400-e29b-41d4-a716-446655440000",
		Name:       "Jane Doe",
	})
	if !strings.Contains(verified, "VERIFIED CUSTOMER SESSION") {
		t.Fatal("verified block missing")
	}
	if !strings.Contains(verified, "Jane Doe") ||
		!strings.Contains(verified, "550e8400-e29b-41d4-a716-446655440000") {
		t.Error("identity missing from verified block")
	}
	if !strings.HasPrefix(verified, base) {
		t.Error("verified prompt does not extend the base prompt")
	}
}
