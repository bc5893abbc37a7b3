package realtime

import (
	"github.com/google/uuid"

	"github.com/tradelink/backend/internal/domain"
)

// EventType identifies a change-feed event.
type EventType string

const (
	// EventMessageCreated: a message row was inserted.
	EventMessageCreated EventType = "message.created"
	// EventConnectionChanged: a connection was created or resolved.
	EventConnectionChanged EventType = "connection.changed"
)

// Event is one change-feed entry, fanned out to the open sessions of
// every recipient and to matching conversation subscriptions.
type Event struct {
	Type       EventType          `json:"type"`
	Recipients []uuid.UUID        `json:"recipients"`
	Message    *domain.Message    `json:"message,omitempty"`
	Connection *domain.Connection `json:"connection,omitempty"`
}

func messageEvent(conv *domain.Conversation, msg *domain.Message) Event {
	return Event{
		Type:       EventMessageCreated,
		Recipients: []uuid.UUID{conv.Participant1, conv.Participant2},
		Message:    msg,
	}
}

func connectionEvent(conn *domain.Connection) Event {
	return Event{
		Type:       EventConnectionChanged,
		Recipients: []uuid.UUID{conn.RequesterID, conn.ResponderID},
		Connection: conn,
	}
}
