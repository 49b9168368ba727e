package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// videoColumns selects a video row joined with its owner summary. Queries
// using it must alias videos as v and users as u.
const videoColumns = `
        v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
        v.duration, v.is_published, v.created_at, v.updated_at,
        u.id, u.username, u.full_name, u.avatar_url`

var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"duration":  "v.duration",
}

func videoScanDests(video *models.Video) []any {
	return []any{
		&video.ID, &video.OwnerID, &video.VideoURL, &video.ThumbnailURL, &video.Title, &video.Description,
		&video.Duration, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt,
		&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.AvatarURL,
	}
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.VideoURL, video.ThumbnailURL, video.Title, video.Description,
		video.Duration, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video with its owner summary.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id)

	var video models.Video
	if err := row.Scan(videoScanDests(&video)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// VideoFilter narrows List beyond the shared pagination parameters.
type VideoFilter struct {
	OwnerID       string
	PublishedOnly bool
}

// List returns a page of videos matching the filter, with the total count.
// The query parameter matches title or description case-insensitively.
func (r *PostgresVideoRepository) List(ctx context.Context, params ListParams, filter VideoFilter) ([]models.Video, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := `WHERE 1=1`
	args := []any{}
	if filter.PublishedOnly {
		where += ` AND v.is_published`
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(` AND v.owner_id = $%d`, len(args))
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		where += fmt.Sprintf(` AND (v.title ILIKE $%d OR v.description ILIKE $%d)`, len(args), len(args))
	}

	countQuery := `SELECT COUNT(*) FROM videos v ` + where
	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	args = append(args, params.Limit, params.offset())
	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT `+videoColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        %s
        ORDER BY %s
        LIMIT $%d OFFSET $%d
    `, where, params.orderClause(videoSortColumns), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(videoScanDests(&video)...); err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

// Update persists the mutable video fields and returns the updated record.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, video_url = $4, thumbnail_url = $5, duration = $6, updated_at = NOW()
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.VideoURL, video.ThumbnailURL, video.Duration)
	if err != nil {
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Video{}, ErrNotFound
	}

	return r.FindByID(ctx, video.ID)
}

// Delete removes a video; dependent likes, comments, playlist entries, and
// watch history rows go with it via the schema's cascade rules.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// TogglePublish flips is_published in a single statement and returns the
// updated record.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos SET is_published = NOT is_published, updated_at = NOW()
        WHERE id = $1
    `, id)
	if err != nil {
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Video{}, ErrNotFound
	}

	return r.FindByID(ctx, id)
}
