package domain

import "context"

// Conversation roles accepted in chat histories.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one (role, content) pair in a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionStore owns all chat histories, keyed by an opaque session id. A
// lookup for an unknown id is not an error; it simply reports absence so the
// caller can start a fresh session. Delete on an unknown id is a no-op.
type SessionStore interface {
	Get(ctx context.Context, id string) ([]Turn, bool, error)
	Put(ctx context.Context, id string, turns []Turn) error
	Delete(ctx context.Context, id string) error
}
