package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MessageStream is a live feed of newly inserted messages for one
// conversation. It does not replay history: callers fetch the backlog
// first and merge the two without duplicating the overlap. Close
// releases the subscription; it must be called when the viewer
// navigates away.
type MessageStream interface {
	Messages() <-chan *Message
	Close()
}

// StreamSource hands out live message feeds, one per subscription.
type StreamSource interface {
	SubscribeMessages(conversationID uuid.UUID) MessageStream
}

type MessagingService struct {
	repo        ConversationRepository
	connections ConnectionRepository
	profiles    ProfileRepository
	streams     StreamSource
	events      EventPublisher
}

func NewMessagingService(repo ConversationRepository, connections ConnectionRepository, profiles ProfileRepository, streams StreamSource, events EventPublisher) *MessagingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &MessagingService{
		repo:        repo,
		connections: connections,
		profiles:    profiles,
		streams:     streams,
		events:      events,
	}
}

// GetOrCreateConversation returns the single conversation for the
// unordered pair (actor, other), creating it on first contact. The
// pair is normalized before the upsert, so both call orders and
// concurrent bootstrap attempts converge on the same row. Requires an
// accepted connection between the pair.
func (s *MessagingService) GetOrCreateConversation(ctx context.Context, actorID, otherID uuid.UUID) (*Conversation, error) {
	if actorID == otherID {
		return nil, fmt.Errorf("%w: cannot converse with self", ErrValidation)
	}

	exists, err := s.profiles.ProfileExists(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: profile %s does not exist", ErrValidation, otherID)
	}

	connected, err := s.connections.AcceptedConnectionExists(ctx, actorID, otherID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, fmt.Errorf("%w: no accepted connection between participants", ErrInvalidState)
	}

	p1, p2 := NormalizePair(actorID, otherID)
	return s.repo.UpsertConversation(ctx, p1, p2)
}

// ListConversations returns the user's conversations annotated with
// both participant summaries.
func (s *MessagingService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*ConversationView, error) {
	convs, err := s.repo.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(convs)*2)
	for _, c := range convs {
		ids = append(ids, c.Participant1, c.Participant2)
	}
	summaries, err := s.profiles.GetProfileSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*ConversationView, 0, len(convs))
	for _, c := range convs {
		views = append(views, &ConversationView{
			Conversation: *c,
			Participants: []ProfileSummary{summaries[c.Participant1], summaries[c.Participant2]},
		})
	}
	return views, nil
}

// GetMessages returns the conversation's backlog, oldest first. Only
// participants may read.
func (s *MessagingService) GetMessages(ctx context.Context, actorID, conversationID uuid.UUID) ([]*Message, error) {
	if _, err := s.participantConversation(ctx, actorID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID)
}

// SendMessage appends one message. The body must be non-empty after
// trimming and the sender must be a participant. Failures surface to
// the caller for manual resend; nothing is retried here.
func (s *MessagingService) SendMessage(ctx context.Context, actorID, conversationID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body must not be empty", ErrValidation)
	}

	conv, err := s.participantConversation(ctx, actorID, conversationID)
	if err != nil {
		return nil, err
	}

	msg, err := s.repo.CreateMessage(ctx, conversationID, actorID, body)
	if err != nil {
		return nil, err
	}

	s.events.MessageCreated(ctx, conv, msg)
	return msg, nil
}

// StreamMessages opens a live feed of messages inserted after the
// subscription starts. Callers fetch the backlog with GetMessages
// first and merge the two feeds, deduplicating by message ID.
func (s *MessagingService) StreamMessages(ctx context.Context, actorID, conversationID uuid.UUID) (MessageStream, error) {
	if _, err := s.participantConversation(ctx, actorID, conversationID); err != nil {
		return nil, err
	}
	return s.streams.SubscribeMessages(conversationID), nil
}

func (s *MessagingService) participantConversation(ctx context.Context, actorID, conversationID uuid.UUID) (*Conversation, error) {
	conv, err := s.repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actorID) {
		return nil, fmt.Errorf("%w: not a participant of this conversation", ErrUnauthorized)
	}
	return conv, nil
}
