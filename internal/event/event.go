package event

type Type string

const (
	TypeSessionAuthenticated Type = "session.authenticated"
	TypeSessionAnonymous     Type = "session.anonymous"
	TypeSessionEnded         Type = "session.ended"
)

// Event describes one session lifecycle transition. SessionID identifies the
// browser session; subscribers use it to scope cache invalidation.
type Event struct {
	Type      Type   `json:"type"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
