package chat

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/techstore/support-api/internal/guard"
)

const (
	// MaxMessageLength caps any single message to prevent token stuffing.
	MaxMessageLength = 4000

	// MaxHistoryMessages caps the history a caller can replay; older
	// entries are silently dropped, not rejected.
	MaxHistoryMessages = 20
)

// ErrValidation is the base class for request-shape failures; handlers map
// it to an unprocessable-entity response.
var ErrValidation = errors.New("invalid request")

var (
	ErrEmptyMessage   = fmt.Errorf("%w: message cannot be empty", ErrValidation)
	ErrMessageTooLong = fmt.Errorf("%w: message too long (max %d characters)", ErrValidation, MaxMessageLength)
	ErrInvalidRole    = fmt.Errorf("%w: history role must be %q or %q", ErrValidation, RoleUser, RoleAssistant)
)

// Validate enforces size and shape constraints before any agent work
// begins. It mutates the request: history is truncated to the most recent
// MaxHistoryMessages entries and each entry's content is sanitized here,
// so everything downstream sees defanged history text.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}

	if len(r.History) > MaxHistoryMessages {
		r.History = r.History[len(r.History)-MaxHistoryMessages:]
	}
	for i := range r.History {
		m := &r.History[i]
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return ErrInvalidRole
		}
		if utf8.RuneCountInString(m.Content) > MaxMessageLength {
			return ErrMessageTooLong
		}
		m.Content = guard.Sanitize(m.Content)
	}
	return nil
}
