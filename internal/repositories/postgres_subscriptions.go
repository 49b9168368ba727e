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

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle subscribes the user to the channel if not subscribed, otherwise
// unsubscribes. It reports whether a subscription exists afterwards. The
// unique (subscriber_id, channel_id) index keeps concurrent toggles from
// producing duplicates.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return false, ErrNotFound
			case "23514":
				// subscriber = channel violates the schema check
				return false, ErrConflict
			}
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	if _, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID); err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	return false, nil
}

// ListSubscribers returns a page of users subscribed to the channel.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string, params ListParams) ([]models.OwnerSummary, int, error) {
	return r.listUsers(ctx, `s.channel_id`, `s.subscriber_id`, channelID, params)
}

// ListSubscribedChannels returns a page of channels the user subscribes to.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string, params ListParams) ([]models.OwnerSummary, int, error) {
	return r.listUsers(ctx, `s.subscriber_id`, `s.channel_id`, subscriberID, params)
}

func (r *PostgresSubscriptionRepository) listUsers(ctx context.Context, matchColumn, joinColumn, id string, params ListParams) ([]models.OwnerSummary, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int
	if err := conn.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM subscriptions s WHERE %s = $1`, matchColumn), id,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = %s
        WHERE %s = $1
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, joinColumn, matchColumn), id, params.Limit, params.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var users []models.OwnerSummary
	for rows.Next() {
		var user models.OwnerSummary
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.AvatarURL); err != nil {
			return nil, 0, fmt.Errorf("scan subscription user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return users, total, nil
}
