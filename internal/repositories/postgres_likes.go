package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
// Toggles are single conditional statements against partial unique indexes,
// so two concurrent toggles can never leave duplicate rows.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// ToggleVideo likes the video if no like exists, otherwise removes it.
// It reports whether the video ends up liked.
func (r *PostgresLikeRepository) ToggleVideo(ctx context.Context, userID, videoID string) (bool, error) {
	return r.toggle(ctx, userID, "video_id", videoID)
}

// ToggleComment likes or unlikes a comment.
func (r *PostgresLikeRepository) ToggleComment(ctx context.Context, userID, commentID string) (bool, error) {
	return r.toggle(ctx, userID, "comment_id", commentID)
}

// ToggleTweet likes or unlikes a tweet.
func (r *PostgresLikeRepository) ToggleTweet(ctx context.Context, userID, tweetID string) (bool, error) {
	return r.toggle(ctx, userID, "tweet_id", tweetID)
}

func (r *PostgresLikeRepository) toggle(ctx context.Context, userID, column, targetID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	insert := fmt.Sprintf(`
        INSERT INTO likes (id, liked_by, %s, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (liked_by, %s) WHERE %s IS NOT NULL DO NOTHING
    `, column, column, column)

	tag, err := conn.Exec(ctx, insert, uuid.NewString(), userID, targetID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert like: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	del := fmt.Sprintf(`DELETE FROM likes WHERE liked_by = $1 AND %s = $2`, column)
	if _, err := conn.Exec(ctx, del, userID, targetID); err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return false, nil
}

// ListLikedVideos returns a page of videos the user has liked, most recently
// liked first, with the total count.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string, params ListParams) ([]models.Video, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM likes WHERE liked_by = $1 AND video_id IS NOT NULL
    `, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count liked videos: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, params.Limit, params.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(videoScanDests(&video)...); err != nil {
			return nil, 0, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, total, nil
}
