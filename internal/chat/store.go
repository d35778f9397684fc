package chat

import (
	"context"
	"errors"
)

// ErrNotFound indicates an unknown conversation ID.
var ErrNotFound = errors.New("conversation not found")

// ConversationStore is the persistence the chat pipeline needs: an
// append-only record of turns keyed by a server-generated identifier.
// Implementations must be safe for concurrent use. See store/memstore
// and store/gormstore.
type ConversationStore interface {
	// Record stores a completed turn and returns its conversation ID.
	Record(ctx context.Context, query, response string, state CustomerState) (string, error)

	// Get returns the turn for the given ID, or ErrNotFound.
	Get(ctx context.Context, conversationID string) (*Turn, error)
}
