package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation is the single thread container for messages between an
// unordered pair of profiles. Participants are stored normalized,
// smaller UUID first, so exactly one row can exist per pair.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	Participant1 uuid.UUID `json:"participant1_id"`
	Participant2 uuid.UUID `json:"participant2_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasParticipant reports whether id is one of the two participants.
func (c *Conversation) HasParticipant(id uuid.UUID) bool {
	return c.Participant1 == id || c.Participant2 == id
}

// OtherParticipant returns the counterpart of id.
func (c *Conversation) OtherParticipant(id uuid.UUID) uuid.UUID {
	if c.Participant1 == id {
		return c.Participant2
	}
	return c.Participant1
}

// NormalizePair orders two profile identifiers canonically, smaller
// UUID string first. Both directions of a pair map to the same key.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// ConversationView is a conversation annotated with both participant
// summaries for listing.
type ConversationView struct {
	Conversation
	Participants []ProfileSummary `json:"participants"`
}

// Message is one immutable text entry in a conversation, ordered by
// creation time ascending. Never mutated or deleted.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationRepository defines conversation directory and message
// log data access.
type ConversationRepository interface {
	// UpsertConversation atomically finds or inserts the conversation
	// for a normalized pair. Concurrent calls for the same pair must
	// converge on one row.
	UpsertConversation(ctx context.Context, participant1, participant2 uuid.UUID) (*Conversation, error)
	GetConversationByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]*Conversation, error)
	CreateMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*Message, error)
	// ListMessages returns the conversation's messages ordered by
	// creation time ascending.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*Message, error)
}
