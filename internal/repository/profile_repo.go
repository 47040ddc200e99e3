package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"beauty-api/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error)
	UpdatePhoto(ctx context.Context, userID, photoURL string, updatedAt time.Time) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// Upsert conserva created_at original cuando el perfil ya existe.
func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	const query = `
		INSERT INTO user_profiles (user_id, username, email, birthday, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			birthday = EXCLUDED.birthday,
			photo_url = CASE WHEN EXCLUDED.photo_url = '' THEN user_profiles.photo_url ELSE EXCLUDED.photo_url END,
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, username, email, birthday, photo_url, created_at, updated_at
	`
	var out domain.UserProfile
	err := r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Username,
		profile.Email,
		profile.Birthday,
		profile.PhotoURL,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(
		&out.UserID,
		&out.Username,
		&out.Email,
		&out.Birthday,
		&out.PhotoURL,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	return out, err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT user_id, username, email, birthday, photo_url, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var profile domain.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.Email,
		&profile.Birthday,
		&profile.PhotoURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, err
	}
	return profile, err
}

func (r *PgProfileRepository) UpdatePhoto(ctx context.Context, userID, photoURL string, updatedAt time.Time) error {
	const query = `UPDATE user_profiles SET photo_url = $2, updated_at = $3 WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID, photoURL, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
