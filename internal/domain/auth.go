package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateProfileParams holds account provisioning input. A profile row
// is created once per account, at registration.
type CreateProfileParams struct {
	Email        string
	PasswordHash *string
	Name         string
	Role         Role
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateRefreshTokenParams holds parameters for refresh token storage.
type CreateRefreshTokenParams struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

// AuthRepository defines account and token data access.
type AuthRepository interface {
	CreateProfile(ctx context.Context, params CreateProfileParams) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	// GetProfileWithPassword also returns the stored bcrypt hash, or
	// an empty string for accounts without a password (Google only).
	GetProfileWithPassword(ctx context.Context, email string) (*Profile, string, error)
	ProfileExistsByEmail(ctx context.Context, email string) (bool, error)

	CreateRefreshToken(ctx context.Context, params CreateRefreshTokenParams) (*RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}
