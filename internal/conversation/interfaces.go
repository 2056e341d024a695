package conversation

import "context"

// Engine defines the single entry point the transport adapter calls
type Engine interface {
	HandleMessage(ctx context.Context, senderID, text string) string
}

// SessionStore defines the interface for session storage operations.
// Implementations must be safe for concurrent access; none of the
// operations may block beyond map access. DeleteSession is idempotent -
// removing an absent session is not an error.
type SessionStore interface {
	GetSession(ctx context.Context, senderID string) (*Session, bool)
	GetOrCreateSession(ctx context.Context, senderID string) *Session
	DeleteSession(ctx context.Context, senderID string)
}
