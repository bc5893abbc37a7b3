package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SearchLimit caps directory search results. No pagination: a repeated
// search replaces the prior result set entirely.
const SearchLimit = 20

type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetProfileByID(ctx, id)
}

// UpdateOwnProfile applies owner edits. ownerID is the authenticated
// identity; profiles are writable only by their subject.
func (s *ProfileService) UpdateOwnProfile(ctx context.Context, ownerID uuid.UUID, params UpdateProfileParams) (*Profile, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		params.Name = &name
	}
	return s.repo.UpdateProfile(ctx, ownerID, params)
}

// Search matches the query as a case-insensitive substring of name or
// address. The viewer's own profile is excluded even when it matches.
// An empty query returns the directory up to the cap.
func (s *ProfileService) Search(ctx context.Context, viewerID uuid.UUID, query string) ([]*Profile, error) {
	return s.repo.SearchProfiles(ctx, strings.TrimSpace(query), viewerID, SearchLimit)
}
