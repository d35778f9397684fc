// Package chat implements the defensive chat pipeline: request
// validation, injection rejection, sanitization, the agent call, customer
// state derivation and turn recording.
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/techstore/support-api/internal/guard"
)

// Fixed user-facing refusals. These never reveal which rule matched; the
// rule ID is logged server-side only, so callers cannot probe the rule set.
const (
	RefusalMessage = "I can only help with TechStore product and order inquiries. Please ask about our products, check orders, or get support."
	RefusalHistory = "Invalid message history detected."
)

// SecurityError marks a request rejected by the injection detector.
type SecurityError struct {
	Rule      string // matched rule ID, for logging only
	InHistory bool   // true when the match was in a history entry
}

func (e *SecurityError) Error() string {
	if e.InHistory {
		return "injection pattern detected in history"
	}
	return "injection pattern detected in message"
}

// Agent produces the assistant reply for a conversation. The
// implementation (LLM, tools, timeouts) is opaque to the pipeline; see
// the agent package.
type Agent interface {
	Run(ctx context.Context, state CustomerState, history []HistoryMessage, message string) (string, error)
}

// Service runs the chat pipeline. Stages execute strictly in sequence;
// only the agent call blocks on network I/O.
type Service struct {
	detector *guard.Detector
	agent    Agent
	store    ConversationStore
}

func NewService(detector *guard.Detector, agent Agent, store ConversationStore) *Service {
	return &Service{detector: detector, agent: agent, store: store}
}

// Respond executes validate → detect → sanitize → agent → derive state →
// record. Rejected requests record nothing; agent failures propagate
// without retry.
func (s *Service) Respond(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if rule, hit := s.detector.Detect(req.Message); hit {
		log.Printf("[SECURITY] blocked injection attempt rule=%s", rule)
		return nil, &SecurityError{Rule: rule}
	}
	for _, m := range req.History {
		if rule, hit := s.detector.Detect(m.Content); hit {
			log.Printf("[SECURITY] blocked injection in history rule=%s", rule)
			return nil, &SecurityError{Rule: rule, InHistory: true}
		}
	}

	message := guard.Sanitize(req.Message)

	reply, err := s.agent.Run(ctx, req.CustomerState, req.History, message)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	state := DeriveState(req.CustomerState, reply)
	if state.Verified && !req.CustomerState.Verified {
		log.Printf("customer verified customer_id=%s", state.CustomerID)
	}

	id, err := s.store.Record(ctx, message, reply, state)
	if err != nil {
		return nil, fmt.Errorf("record turn: %w", err)
	}

	return &Response{
		Message:        reply,
		ConversationID: id,
		CustomerState:  state,
	}, nil
}
