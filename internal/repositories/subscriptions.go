package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/satwikgupta/backend-project/internal/channels"
	"github.com/satwikgupta/backend-project/internal/db"
	"github.com/satwikgupta/backend-project/internal/models"
)

// PostgresSubscriptionRepository persists subscriber -> channel edges and
// derives channel profiles from them.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Subscribe creates the edge. The primary key on (subscriber_id, channel_id)
// is what keeps duplicate edges from corrupting count aggregation.
func (r *PostgresSubscriptionRepository) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3)
    `, subscriberID, channelID, time.Now().UTC())
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
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// Unsubscribe removes the edge.
func (r *PostgresSubscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ChannelProfile resolves a channel by username and derives both counts and
// the viewer flag in one statement, so all three facts come from the same
// snapshot of the edge set.
func (r *PostgresSubscriptionRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT a.id, a.username, a.full_name, a.avatar_url, a.cover_image_url, a.created_at,
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = a.id) AS subscribers,
               (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = a.id) AS subscribed_to,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = a.id AND s.subscriber_id = $2
               ) AS is_subscribed
        FROM accounts a
        WHERE a.username = $1
    `, username, viewerID)

	var profile models.ChannelProfile
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL,
		&profile.CoverImageURL, &profile.CreatedAt, &profile.SubscribersCount,
		&profile.SubscribedToCount, &profile.IsSubscribedByViewer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, channels.ErrChannelNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	profile.CreatedAt = profile.CreatedAt.UTC()
	return profile, nil
}

var _ channels.ProfileStore = (*PostgresSubscriptionRepository)(nil)
