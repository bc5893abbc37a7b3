package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the business role of a profile.
type Role string

const (
	RoleDistributor Role = "distributor"
	RoleRetailer    Role = "retailer"
)

// ValidRole reports whether r is a known business role.
func ValidRole(r Role) bool {
	return r == RoleDistributor || r == RoleRetailer
}

// Profile is a user account record. One row per user; mutated only by
// its owner, readable by any authenticated user for search.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	GSTNumber  *string   `json:"gst_number,omitempty"`
	Categories []string  `json:"categories"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileSummary is the short form used when annotating connections
// and conversations with the counterpart's identity.
type ProfileSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// Summary returns the short form of the profile.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Name: p.Name, Role: p.Role}
}

// UpdateProfileParams holds the owner-editable fields. Nil pointers
// leave the stored value untouched.
type UpdateProfileParams struct {
	Name       *string
	Phone      *string
	Address    *string
	GSTNumber  *string
	Categories []string
	Lat        *float64
	Lng        *float64
}

// ProfileRepository defines profile data access.
type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*Profile, error)
	// SearchProfiles runs a case-insensitive substring match over name
	// and address, excluding excludeID, capped at limit rows.
	SearchProfiles(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]*Profile, error)
	ProfileExists(ctx context.Context, id uuid.UUID) (bool, error)
	// GetProfileSummaries resolves short forms for a set of profile
	// identifiers in one round trip.
	GetProfileSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ProfileSummary, error)
}
