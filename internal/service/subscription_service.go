package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
)

// SubscriptionService maneja la relación subscriber -> channel y el perfil público del canal.
type SubscriptionService struct {
	logger *zap.Logger
	users  repository.UserRepository
	subs   repository.SubscriptionRepository
	stats  ChannelStatsCache
}

func NewSubscriptionService(
	logger *zap.Logger,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	stats ChannelStatsCache,
) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = NewMemoryChannelStatsCache(time.Minute)
	}
	return &SubscriptionService{
		logger: logger,
		users:  users,
		subs:   subs,
		stats:  stats,
	}
}

// Subscribe crea la arista. Si ya existe la devuelve sin duplicarla (created=false).
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, channelID string) (domain.Subscription, bool, error) {
	subscriberID = strings.TrimSpace(subscriberID)
	channelID = strings.TrimSpace(channelID)
	if subscriberID == "" {
		return domain.Subscription{}, false, domain.Unauthorized("Unauthorized request")
	}
	if channelID == "" {
		return domain.Subscription{}, false, domain.Validation("channelId is required")
	}
	if subscriberID == channelID {
		return domain.Subscription{}, false, domain.Validation("You cannot subscribe to your own channel")
	}

	if _, err := s.users.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Subscription{}, false, domain.NotFound("Channel does not exist")
		}
		return domain.Subscription{}, false, err
	}

	existing, err := s.subs.Find(ctx, subscriberID, channelID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Subscription{}, false, err
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return domain.Subscription{}, false, err
	}
	s.invalidate(ctx, subscriberID, channelID)
	return sub, true, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	subscriberID = strings.TrimSpace(subscriberID)
	channelID = strings.TrimSpace(channelID)
	if subscriberID == "" {
		return domain.Unauthorized("Unauthorized request")
	}
	if channelID == "" {
		return domain.Validation("channelId is required")
	}

	n, err := s.subs.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("Subscription does not exist")
	}
	s.invalidate(ctx, subscriberID, channelID)
	return nil
}

// ChannelProfile arma la vista pública del canal para el usuario viewerID.
func (s *SubscriptionService) ChannelProfile(ctx context.Context, username, viewerID string) (domain.ChannelProfile, error) {
	username = normalizeUsername(username)
	if username == "" {
		return domain.ChannelProfile{}, domain.Validation("username is missing")
	}

	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ChannelProfile{}, domain.NotFound("Channel does not exist")
		}
		return domain.ChannelProfile{}, err
	}

	stats, err := s.channelStats(ctx, channel.ID)
	if err != nil {
		return domain.ChannelProfile{}, err
	}

	isSubscribed := false
	if viewerID != "" && viewerID != channel.ID {
		_, err := s.subs.Find(ctx, viewerID, channel.ID)
		switch {
		case err == nil:
			isSubscribed = true
		case !errors.Is(err, repository.ErrNotFound):
			return domain.ChannelProfile{}, err
		}
	}

	return domain.ChannelProfile{
		User:                      channel.Public(),
		SubscribersCount:          stats.SubscribersCount,
		ChannelsSubscribedToCount: stats.ChannelsSubscribedToCount,
		IsSubscribed:              isSubscribed,
	}, nil
}

// channelStats lee del cache; una falla del cache solo se loguea y se recalcula.
// El recálculo se guarda con la generación leída antes de contar, así un alta o
// baja concurrente deja la escritura sin efecto.
func (s *SubscriptionService) channelStats(ctx context.Context, channelID string) (domain.ChannelStats, error) {
	stats, gen, ok, cacheErr := s.stats.Get(ctx, channelID)
	if cacheErr != nil {
		s.logger.Warn("channel stats cache get failed", zap.Error(cacheErr), zap.String("channel_id", channelID))
	}
	if ok {
		return stats, nil
	}

	subscribers, err := s.subs.CountSubscribers(ctx, channelID)
	if err != nil {
		return domain.ChannelStats{}, err
	}
	subscribedTo, err := s.subs.CountSubscribedTo(ctx, channelID)
	if err != nil {
		return domain.ChannelStats{}, err
	}
	stats = domain.ChannelStats{
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
	}
	if cacheErr != nil {
		return stats, nil
	}
	if err := s.stats.Set(ctx, channelID, gen, stats); err != nil {
		s.logger.Warn("channel stats cache set failed", zap.Error(err), zap.String("channel_id", channelID))
	}
	return stats, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, ids ...string) {
	if err := s.stats.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("channel stats cache invalidate failed", zap.Error(err), zap.Strings("channel_ids", ids))
	}
}
