package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid Google ID token")
	ErrGoogleEmailMissing = errors.New("email not found in Google token")
)

// GoogleUser is the identity asserted by a verified Google ID token.
type GoogleUser struct {
	GoogleID      string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleAuthVerifier validates Google ID tokens against the
// configured OAuth client IDs.
type GoogleAuthVerifier struct {
	clientIDs []string
}

func NewGoogleAuthVerifier(clientIDs []string) *GoogleAuthVerifier {
	return &GoogleAuthVerifier{clientIDs: clientIDs}
}

// VerifyIDToken verifies a Google ID token and returns the user info.
func (v *GoogleAuthVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUser, error) {
	var payload *idtoken.Payload
	var err error
	for _, clientID := range v.clientIDs {
		payload, err = idtoken.Validate(ctx, idToken, clientID)
		if err == nil {
			break
		}
	}
	if payload == nil {
		return nil, ErrInvalidGoogleToken
	}

	user := &GoogleUser{}

	sub, ok := payload.Claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidGoogleToken
	}
	user.GoogleID = sub

	email, ok := payload.Claims["email"].(string)
	if !ok {
		return nil, ErrGoogleEmailMissing
	}
	user.Email = email

	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		user.Name = name
	}

	return user, nil
}

// IsConfigured returns true if Google sign-in is configured.
func (v *GoogleAuthVerifier) IsConfigured() bool {
	return len(v.clientIDs) > 0 && v.clientIDs[0] != ""
}
