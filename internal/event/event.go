package event

type Type string

const (
	TypeStateChanged   Type = "auth.state_changed"
	TypeSessionRefresh Type = "session.refreshed"
	TypeSignedOut      Type = "session.signed_out"
	TypeAccessDenied   Type = "route.access_denied"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   int64  `json:"actor_id,omitempty"` // operator the event concerns
}

type Publisher interface {
	Publish(e Event)
}

type Bus interface {
	Publisher
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
