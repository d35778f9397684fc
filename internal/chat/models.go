package chat

import "time"

// Role constants for history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CustomerState is the verification state round-tripped by the caller on
// every request. Binding into this struct is the ingress allow-list: any
// other key a caller sends is dropped before prompt construction.
type CustomerState struct {
	Verified   bool   `json:"verified"`
	CustomerID string `json:"customer_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Turn is one recorded user/agent exchange. Immutable once stored.
type Turn struct {
	ConversationID string        `json:"conversation_id"`
	UserQuery      string        `json:"user_query"`
	AgentResponse  string        `json:"agent_response"`
	Timestamp      time.Time     `json:"timestamp"`
	CustomerState  CustomerState `json:"customer_state"`
}

// HistoryMessage is one prior turn supplied by the caller.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the inbound chat payload.
type Request struct {
	Message       string           `json:"message"`
	History       []HistoryMessage `json:"history"`
	CustomerState CustomerState    `json:"customer_state"`
}

// Response is the outbound chat payload.
type Response struct {
	Message        string        `json:"message"`
	ConversationID string        `json:"conversation_id"`
	CustomerState  CustomerState `json:"customer_state"`
}
