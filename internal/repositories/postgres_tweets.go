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

const tweetColumns = `
        t.id, t.owner_id, t.content, t.created_at, t.updated_at,
        u.id, u.username, u.full_name, u.avatar_url`

var tweetSortColumns = map[string]string{
	"createdAt": "t.created_at",
}

func tweetScanDests(tweet *models.Tweet) []any {
	return []any{
		&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt,
		&tweet.Owner.ID, &tweet.Owner.Username, &tweet.Owner.FullName, &tweet.Owner.AvatarURL,
	}
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create stores a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert tweet: %w", err)
	}

	return nil
}

// FindByID fetches a tweet with its owner summary.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+tweetColumns+`
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        WHERE t.id = $1
    `, id)

	var tweet models.Tweet
	if err := row.Scan(tweetScanDests(&tweet)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("select tweet: %w", err)
	}

	return tweet, nil
}

// List returns a page of tweets, optionally filtered by owner, with the total count.
func (r *PostgresTweetRepository) List(ctx context.Context, params ListParams, ownerID string) ([]models.Tweet, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := `WHERE 1=1`
	args := []any{}
	if ownerID != "" {
		args = append(args, ownerID)
		where += fmt.Sprintf(` AND t.owner_id = $%d`, len(args))
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		where += fmt.Sprintf(` AND t.content ILIKE $%d`, len(args))
	}

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM tweets t `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tweets: %w", err)
	}

	args = append(args, params.Limit, params.offset())
	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT `+tweetColumns+`
        FROM tweets t
        JOIN users u ON u.id = t.owner_id
        %s
        ORDER BY %s
        LIMIT $%d OFFSET $%d
    `, where, params.orderClause(tweetSortColumns), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		var tweet models.Tweet
		if err := rows.Scan(tweetScanDests(&tweet)...); err != nil {
			return nil, 0, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, total, nil
}

// UpdateContent replaces a tweet's content and returns the updated record.
func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE tweets SET content = $2, updated_at = NOW()
        WHERE id = $1
    `, id, content)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("update tweet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Tweet{}, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes a tweet.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
