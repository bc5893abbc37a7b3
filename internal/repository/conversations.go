package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradelink/backend/internal/domain"
)

const conversationColumns = `id, participant1_id, participant2_id, created_at, updated_at`

// UpsertConversation is the atomic find-or-insert for the normalized
// participant pair. The no-op DO UPDATE makes RETURNING yield the row
// on both the insert and the conflict path, so two concurrent
// bootstrap attempts converge on the same conversation.
func (r *PostgresRepository) UpsertConversation(ctx context.Context, participant1, participant2 uuid.UUID) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (participant1_id, participant2_id)
		VALUES ($1, $2)
		ON CONFLICT (participant1_id, participant2_id)
		DO UPDATE SET participant1_id = EXCLUDED.participant1_id
		RETURNING ` + conversationColumns
	return scanConversation(r.db.QueryRow(ctx, query, participant1, participant2))
}

func (r *PostgresRepository) GetConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return scanConversation(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participant1_id = $1 OR participant2_id = $1
		ORDER BY updated_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, mapError(rows.Err())
}

// CreateMessage appends one message and bumps the conversation's
// last-activity timestamp.
func (r *PostgresRepository) CreateMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*domain.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_id, content, created_at`
	msg, err := scanMessage(r.db.QueryRow(ctx, query, conversationID, senderID, content))
	if err != nil {
		return nil, err
	}

	_, _ = r.db.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	return msg, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, mapError(rows.Err())
}

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.Participant1, &c.Participant2, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}
