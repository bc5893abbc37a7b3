package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tradelink/backend/internal/auth"
)

// AuthService handles account provisioning and session tokens.
type AuthService struct {
	repo     AuthRepository
	profiles ProfileRepository
	jwt      *auth.JWTManager
	google   *auth.GoogleAuthVerifier
}

func NewAuthService(repo AuthRepository, profiles ProfileRepository, jwt *auth.JWTManager, google *auth.GoogleAuthVerifier) *AuthService {
	return &AuthService{
		repo:     repo,
		profiles: profiles,
		jwt:      jwt,
		google:   google,
	}
}

// AuthResult is returned by every sign-in path.
type AuthResult struct {
	Profile      *Profile `json:"profile"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// Register provisions a new account with its profile row. The role is
// fixed at registration and cannot be changed afterwards.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role Role) (*AuthResult, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be distributor or retailer", ErrValidation)
	}

	exists, err := s.repo.ProfileExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: account for %s", ErrAlreadyExists, email)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	profile, err := s.repo.CreateProfile(ctx, CreateProfileParams{
		Email:        email,
		PasswordHash: &passwordHash,
		Name:         name,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile)
}

// Login verifies email/password credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	profile, hash, err := s.repo.GetProfileWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if hash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, hash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, profile)
}

// GoogleLogin verifies a Google ID token and signs the account in,
// provisioning a profile on first contact. Accounts are matched by
// verified email.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string, role Role) (*AuthResult, error) {
	gu, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !gu.EmailVerified {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.repo.GetProfileByEmail(ctx, gu.Email)
	if errors.Is(err, ErrNotFound) {
		if !ValidRole(role) {
			role = RoleRetailer
		}
		profile, err = s.repo.CreateProfile(ctx, CreateProfileParams{
			Email: gu.Email,
			Name:  gu.Name,
			Role:  role,
		})
	}
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile)
}

// Refresh rotates a refresh token: the presented token is revoked and
// a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenRevoked
	}

	hash := auth.HashToken(refreshToken)
	stored, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return nil, ErrTokenRevoked
	}
	if stored.UserID != claims.UserID {
		return nil, ErrTokenRevoked
	}

	if err := s.repo.RevokeRefreshTokenByHash(ctx, hash); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfileByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile)
}

// Logout revokes the presented refresh token. The access token simply
// expires.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshTokenByHash(ctx, auth.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, profile *Profile) (*AuthResult, error) {
	pair, err := s.jwt.GenerateTokenPair(profile.ID, profile.Email)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.CreateRefreshToken(ctx, CreateRefreshTokenParams{
		UserID:    profile.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Profile:      profile,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
