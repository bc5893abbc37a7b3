package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradelink/backend/internal/domain"
)

func (r *PostgresRepository) CreateRefreshToken(ctx context.Context, params domain.CreateRefreshTokenParams) (*domain.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token_hash, expires_at, revoked, revoked_at, created_at`
	return scanRefreshToken(r.db.QueryRow(ctx, query, params.UserID, params.TokenHash, params.ExpiresAt))
}

func (r *PostgresRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = FALSE AND expires_at > NOW()`
	return scanRefreshToken(r.db.QueryRow(ctx, query, hash))
}

func (r *PostgresRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE token_hash = $1`, hash)
	return mapError(err)
}

func (r *PostgresRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE user_id = $1`, userID)
	return mapError(err)
}

func scanRefreshToken(row pgx.Row) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}
