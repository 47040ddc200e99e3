package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"beauty-api/internal/domain"
)

// LeaderboardRepository guarda y consulta resultados del ranking.
type LeaderboardRepository interface {
	Insert(ctx context.Context, entry domain.LeaderboardEntry) error
	// Top devuelve hasta limit entradas por puntaje descendente; since nil no filtra por fecha.
	Top(ctx context.Context, since *time.Time, limit int) ([]domain.LeaderboardEntry, error)
}

type PgLeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewPgLeaderboardRepository(pool *pgxpool.Pool) *PgLeaderboardRepository {
	return &PgLeaderboardRepository{pool: pool}
}

func (r *PgLeaderboardRepository) Insert(ctx context.Context, entry domain.LeaderboardEntry) error {
	const query = `
		INSERT INTO leaderboard_entries (id, user_id, user_email, user_display_name, is_guest, beauty_score, image_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.UserEmail,
		entry.UserDisplayName,
		entry.IsGuest,
		entry.BeautyScore,
		entry.ImageData,
		entry.CreatedAt,
	)
	return err
}

func (r *PgLeaderboardRepository) Top(ctx context.Context, since *time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	const base = `
		SELECT id, user_id, user_email, user_display_name, is_guest, beauty_score, image_data, created_at
		FROM leaderboard_entries
	`
	var (
		query string
		args  []any
	)
	if since != nil {
		query = base + ` WHERE created_at >= $1 ORDER BY beauty_score DESC LIMIT $2`
		args = []any{*since, limit}
	} else {
		query = base + ` ORDER BY beauty_score DESC LIMIT $1`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.UserEmail,
			&e.UserDisplayName,
			&e.IsGuest,
			&e.BeautyScore,
			&e.ImageData,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
