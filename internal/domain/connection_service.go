package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EventPublisher pushes change-feed events to subscribed sessions
// after successful writes. Delivery is best effort; publish failures
// never fail the originating operation.
type EventPublisher interface {
	ConnectionChanged(ctx context.Context, conn *Connection)
	MessageCreated(ctx context.Context, conv *Conversation, msg *Message)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) ConnectionChanged(context.Context, *Connection)           {}
func (NopPublisher) MessageCreated(context.Context, *Conversation, *Message) {}

type ConnectionService struct {
	repo     ConnectionRepository
	profiles ProfileRepository
	events   EventPublisher
}

func NewConnectionService(repo ConnectionRepository, profiles ProfileRepository, events EventPublisher) *ConnectionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &ConnectionService{repo: repo, profiles: profiles, events: events}
}

// RequestConnection creates a pending connection from requester to
// responder. Both profiles must exist and be distinct; the unordered
// pair must not already have a connection in either direction.
func (s *ConnectionService) RequestConnection(ctx context.Context, requesterID, responderID uuid.UUID) (*Connection, error) {
	if requesterID == responderID {
		return nil, fmt.Errorf("%w: cannot connect with self", ErrValidation)
	}

	for _, id := range []uuid.UUID{requesterID, responderID} {
		exists, err := s.profiles.ProfileExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: profile %s does not exist", ErrValidation, id)
		}
	}

	conn, err := s.repo.CreateConnection(ctx, requesterID, responderID)
	if err != nil {
		return nil, err
	}

	s.events.ConnectionChanged(ctx, conn)
	return conn, nil
}

// RespondToConnection resolves a pending connection. Only the
// responder may act, and only while the connection is pending.
func (s *ConnectionService) RespondToConnection(ctx context.Context, actorID, connectionID uuid.UUID, accept bool) (*Connection, error) {
	conn, err := s.repo.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if conn.ResponderID != actorID {
		return nil, fmt.Errorf("%w: only the responder may resolve a request", ErrUnauthorized)
	}
	if conn.Status != ConnectionStatusPending {
		return nil, fmt.Errorf("%w: connection already %s", ErrInvalidState, conn.Status)
	}

	status := ConnectionStatusRejected
	if accept {
		status = ConnectionStatusAccepted
	}

	resolved, err := s.repo.ResolveConnection(ctx, connectionID, status)
	if err != nil {
		return nil, err
	}

	s.events.ConnectionChanged(ctx, resolved)
	return resolved, nil
}

// ListConnectionsForUser returns every connection involving the user,
// annotated with the counterpart's summary and partitioned relative to
// the viewing identity: accepted connections are active for both
// parties; a pending connection is actionable only for its responder.
func (s *ConnectionService) ListConnectionsForUser(ctx context.Context, userID uuid.UUID) ([]*ConnectionView, error) {
	conns, err := s.repo.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, counterpartOf(c, userID))
	}
	summaries, err := s.profiles.GetProfileSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*ConnectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, &ConnectionView{
			Connection:  *c,
			Counterpart: summaries[counterpartOf(c, userID)],
			Bucket:      bucketFor(c, userID),
		})
	}
	return views, nil
}

// counterpartOf picks the other party by comparing the viewer against
// the requester side.
func counterpartOf(c *Connection, viewerID uuid.UUID) uuid.UUID {
	if c.RequesterID == viewerID {
		return c.ResponderID
	}
	return c.RequesterID
}

func bucketFor(c *Connection, viewerID uuid.UUID) ConnectionBucket {
	switch c.Status {
	case ConnectionStatusAccepted:
		return BucketActive
	case ConnectionStatusPending:
		if c.ResponderID == viewerID {
			return BucketIncoming
		}
		return BucketAwaiting
	default:
		return BucketResolved
	}
}
