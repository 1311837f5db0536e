package domain

// SystemUser is the sentinel author of server-generated messages.
const SystemUser = "System"

// Message is one entry in a room's append-only log. Immutable once appended.
// ConnectionID is empty for system messages.
type Message struct {
	ID           int64        `json:"id"`
	User         string       `json:"user"`
	ConnectionID ConnectionID `json:"connectionId,omitempty"`
	Message      string       `json:"message"`
	Time         string       `json:"time"`
}
