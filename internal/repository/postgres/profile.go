package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/pkg/database"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID retrieves a profile by its identity-provider user ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (_ *domain.Profile, err error) {
	query := `
		SELECT id, email, name, user_name, role, company_name, phone_number, avatar_url, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProfile", query)
	defer func() { end(err) }()

	var p domain.Profile
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.UserName,
		&p.Role,
		&p.CompanyName,
		&p.PhoneNumber,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", id)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert inserts a profile or updates the existing one with the same ID.
// The stored timestamps are written back to p.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) (err error) {
	query := `
		INSERT INTO profiles (id, email, name, user_name, role, company_name, phone_number, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email        = EXCLUDED.email,
			name         = EXCLUDED.name,
			user_name    = EXCLUDED.user_name,
			role         = EXCLUDED.role,
			company_name = EXCLUDED.company_name,
			phone_number = EXCLUDED.phone_number,
			avatar_url   = EXCLUDED.avatar_url,
			updated_at   = NOW()
		RETURNING created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "UpsertProfile", query)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, query,
		p.ID,
		p.Email,
		p.Name,
		p.UserName,
		p.Role,
		p.CompanyName,
		p.PhoneNumber,
		p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "profiles_email_key") {
			return apperrors.AlreadyExists("profile", "email", p.Email)
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
