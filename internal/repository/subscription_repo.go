package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"vidtube/internal/domain"
)

// SubscriptionRepository persiste las aristas subscriber -> channel.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub domain.Subscription) error
	Find(ctx context.Context, subscriberID, channelID string) (domain.Subscription, error)
	// Delete elimina todas las aristas del par y devuelve cuántas había.
	Delete(ctx context.Context, subscriberID, channelID string) (int64, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
}

type PgSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubscriptionRepository(pool *pgxpool.Pool) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{pool: pool}
}

func (r *PgSubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) error {
	const query = `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.SubscriberID,
		sub.ChannelID,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return mapPgError(err)
}

func (r *PgSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (domain.Subscription, error) {
	const query = `
		SELECT id, subscriber_id, channel_id, created_at, updated_at
		FROM subscriptions
		WHERE subscriber_id = $1 AND channel_id = $2
		ORDER BY created_at
		LIMIT 1
	`
	var sub domain.Subscription
	err := r.pool.QueryRow(ctx, query, subscriberID, channelID).Scan(
		&sub.ID,
		&sub.SubscriberID,
		&sub.ChannelID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return domain.Subscription{}, mapPgError(err)
	}
	return sub, nil
}

func (r *PgSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) (int64, error) {
	const query = `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`
	tag, err := r.pool.Exec(ctx, query, subscriberID, channelID)
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

func (r *PgSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PgSubscriptionRepository) count(ctx context.Context, query, id string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}
