package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the lifecycle state of a connection request.
// Status starts at pending and transitions exactly once, to accepted
// or rejected, and only by the responder.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// Connection is a directed request between two profiles. Direction
// matters for display (who may act on a pending request) but not for
// authorization once accepted.
type Connection struct {
	ID          uuid.UUID        `json:"id"`
	RequesterID uuid.UUID        `json:"requester_id"`
	ResponderID uuid.UUID        `json:"responder_id"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ConnectionBucket partitions a connection for presentation, relative
// to a viewing identity.
type ConnectionBucket string

const (
	// BucketActive: status is accepted.
	BucketActive ConnectionBucket = "active"
	// BucketIncoming: pending and the viewer is the responder; only
	// here is accept/reject offered.
	BucketIncoming ConnectionBucket = "incoming"
	// BucketAwaiting: pending and the viewer is the requester; shown
	// read-only with a pending marker.
	BucketAwaiting ConnectionBucket = "awaiting"
	// BucketResolved: rejected.
	BucketResolved ConnectionBucket = "resolved"
)

// ConnectionView is a connection annotated for one viewer: the other
// party's summary plus the presentation bucket.
type ConnectionView struct {
	Connection
	Counterpart ProfileSummary   `json:"counterpart"`
	Bucket      ConnectionBucket `json:"bucket"`
}

// ConnectionRepository defines connection ledger data access.
type ConnectionRepository interface {
	// CreateConnection inserts a pending connection. Returns
	// ErrAlreadyExists when a connection between the unordered pair
	// already exists, in either direction.
	CreateConnection(ctx context.Context, requesterID, responderID uuid.UUID) (*Connection, error)
	GetConnectionByID(ctx context.Context, id uuid.UUID) (*Connection, error)
	// ResolveConnection sets the status of a still-pending connection
	// and bumps updated_at. Returns ErrInvalidState when the row is no
	// longer pending.
	ResolveConnection(ctx context.Context, id uuid.UUID, status ConnectionStatus) (*Connection, error)
	// ListConnectionsByUser returns every connection where the user is
	// requester or responder, newest first.
	ListConnectionsByUser(ctx context.Context, userID uuid.UUID) ([]*Connection, error)
	// AcceptedConnectionExists reports whether the unordered pair has
	// an accepted connection.
	AcceptedConnectionExists(ctx context.Context, a, b uuid.UUID) (bool, error)
}
