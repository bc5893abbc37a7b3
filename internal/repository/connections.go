package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradelink/backend/internal/domain"
)

const connectionColumns = `id, requester_id, responder_id, status, created_at, updated_at`

// CreateConnection inserts a pending connection. The unordered-pair
// unique index rejects a second connection between the same two
// profiles regardless of direction.
func (r *PostgresRepository) CreateConnection(ctx context.Context, requesterID, responderID uuid.UUID) (*domain.Connection, error) {
	query := `
		INSERT INTO connections (requester_id, responder_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING ` + connectionColumns
	return scanConnection(r.db.QueryRow(ctx, query, requesterID, responderID))
}

func (r *PostgresRepository) GetConnectionByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return scanConnection(r.db.QueryRow(ctx, query, id))
}

// ResolveConnection performs the pending -> accepted|rejected
// transition. The status predicate makes the transition exactly-once
// even under concurrent responses.
func (r *PostgresRepository) ResolveConnection(ctx context.Context, id uuid.UUID, status domain.ConnectionStatus) (*domain.Connection, error) {
	query := `
		UPDATE connections SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + connectionColumns
	conn, err := scanConnection(r.db.QueryRow(ctx, query, id, status))
	if errors.Is(err, domain.ErrNotFound) {
		// Distinguish a missing row from one already resolved.
		if _, getErr := r.GetConnectionByID(ctx, id); getErr == nil {
			return nil, fmt.Errorf("%w: connection already resolved", domain.ErrInvalidState)
		}
		return nil, err
	}
	return conn, err
}

func (r *PostgresRepository) ListConnectionsByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE requester_id = $1 OR responder_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var conns []*domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, mapError(rows.Err())
}

func (r *PostgresRepository) AcceptedConnectionExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM connections
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND responder_id = $2) OR (requester_id = $2 AND responder_id = $1))
		)`
	var exists bool
	err := r.db.QueryRow(ctx, query, a, b).Scan(&exists)
	return exists, mapError(err)
}

func (r *PostgresRepository) CountDashboardStats(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM connections WHERE status = 'accepted' AND (requester_id = $1 OR responder_id = $1)),
			(SELECT COUNT(*) FROM conversations WHERE participant1_id = $1 OR participant2_id = $1),
			(SELECT COUNT(*) FROM connections WHERE status = 'pending' AND responder_id = $1)`
	var stats domain.DashboardStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.ActiveConnections, &stats.Conversations, &stats.PendingRequests)
	if err != nil {
		return nil, mapError(err)
	}
	return &stats, nil
}

func scanConnection(row pgx.Row) (*domain.Connection, error) {
	var c domain.Connection
	err := row.Scan(&c.ID, &c.RequesterID, &c.ResponderID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
