package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradelink/backend/internal/domain"
)

const profileColumns = `id, email, name, role, phone, address, gst_number, categories, lat, lng, created_at, updated_at`

func (r *PostgresRepository) CreateProfile(ctx context.Context, params domain.CreateProfileParams) (*domain.Profile, error) {
	query := `
		INSERT INTO profiles (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns
	row := r.db.QueryRow(ctx, query, params.Email, params.PasswordHash, params.Name, params.Role)
	return scanProfile(row)
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetProfileWithPassword(ctx context.Context, email string) (*domain.Profile, string, error) {
	query := `SELECT ` + profileColumns + `, password_hash FROM profiles WHERE email = $1`
	row := r.db.QueryRow(ctx, query, email)

	var p domain.Profile
	var passwordHash *string
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &p.Phone, &p.Address, &p.GSTNumber,
		&p.Categories, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt, &passwordHash,
	)
	if err != nil {
		return nil, "", mapError(err)
	}

	hash := ""
	if passwordHash != nil {
		hash = *passwordHash
	}
	return &p, hash, nil
}

func (r *PostgresRepository) ProfileExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, id).Scan(&exists)
	return exists, mapError(err)
}

func (r *PostgresRepository) ProfileExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`, email).Scan(&exists)
	return exists, mapError(err)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, params domain.UpdateProfileParams) (*domain.Profile, error) {
	query := `
		UPDATE profiles SET
			name       = COALESCE($2, name),
			phone      = COALESCE($3, phone),
			address    = COALESCE($4, address),
			gst_number = COALESCE($5, gst_number),
			categories = COALESCE($6, categories),
			lat        = COALESCE($7, lat),
			lng        = COALESCE($8, lng),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	row := r.db.QueryRow(ctx, query, id,
		params.Name, params.Phone, params.Address, params.GSTNumber,
		params.Categories, params.Lat, params.Lng)
	return scanProfile(row)
}

// SearchProfiles: case-insensitive substring over name and address,
// excluding the viewer, capped at limit. An empty query lists the
// directory up to the cap.
func (r *PostgresRepository) SearchProfiles(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]*domain.Profile, error) {
	sql := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id <> $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR address ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3`
	rows, err := r.db.Query(ctx, sql, excludeID, query, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, mapError(rows.Err())
}

func (r *PostgresRepository) GetProfileSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProfileSummary, error) {
	summaries := make(map[uuid.UUID]domain.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, role FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.ProfileSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Role); err != nil {
			return nil, mapError(err)
		}
		summaries[s.ID] = s
	}
	return summaries, mapError(rows.Err())
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &p.Phone, &p.Address, &p.GSTNumber,
		&p.Categories, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return &p, nil
}
