package videos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airtime-feed/backend/internal/models"
)

// PostgresRepository stores videos in the videos table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL video repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns all videos in upload order.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Video, error) {
	const query = `SELECT id, url, duration, uploaded_at, schedule, is_active
		FROM videos ORDER BY uploaded_at, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()
	var list []models.Video
	for rows.Next() {
		var (
			v        models.Video
			schedule []byte
		)
		if err := rows.Scan(&v.ID, &v.URL, &v.Duration, &v.UploadedAt, &schedule, &v.IsActive); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		if len(schedule) > 0 {
			var s models.Schedule
			if err := json.Unmarshal(schedule, &s); err != nil {
				return nil, fmt.Errorf("decode schedule for %s: %w", v.ID, err)
			}
			v.Schedule = &s
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Create inserts a new video.
func (r *PostgresRepository) Create(ctx context.Context, v *models.Video) error {
	const query = `INSERT INTO videos (id, url, duration, uploaded_at, schedule, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`
	var schedule []byte
	if v.Schedule != nil {
		b, err := json.Marshal(v.Schedule)
		if err != nil {
			return fmt.Errorf("encode schedule: %w", err)
		}
		schedule = b
	}
	if _, err := r.pool.Exec(ctx, query, v.ID, v.URL, v.Duration, v.UploadedAt, schedule, v.IsActive); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}
