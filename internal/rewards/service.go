// Package rewards lists the reward catalog and redeems points for rewards.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

var (
	// ErrUnknownReward is returned when the reward is not in the catalog.
	ErrUnknownReward = errors.New("reward not found")
	// ErrInsufficientPoints is returned when the balance does not cover the reward.
	ErrInsufficientPoints = errors.New("not enough points")
	// ErrOutOfStock is returned when the reward has no units left.
	ErrOutOfStock = errors.New("reward out of stock")
)

// Backend is the part of the backend API serving rewards.
type Backend interface {
	ListRewards(ctx context.Context, token string) ([]models.Reward, error)
	RedeemReward(ctx context.Context, token, userID, rewardID string) error
	ListRedemptions(ctx context.Context, token, userID string) ([]models.Redemption, error)
}

// Session exposes the logged-in user and refreshes its record.
type Session interface {
	Current() (models.User, error)
	Refresh(ctx context.Context) (models.User, error)
}

// Service caches the catalog for the session user.
type Service struct {
	backend Backend
	session Session
	log     *slog.Logger

	mu      sync.Mutex
	catalog []models.Reward
}

func NewService(backend Backend, session Session, log *slog.Logger) *Service {
	return &Service{backend: backend, session: session, log: log}
}

// Catalog fetches the reward catalog.
func (s *Service) Catalog(ctx context.Context) ([]models.Reward, error) {
	user, err := s.session.Current()
	if err != nil {
		return nil, err
	}

	catalog, err := s.backend.ListRewards(ctx, user.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	s.mu.Lock()
	s.catalog = slices.Clone(catalog)
	s.mu.Unlock()

	return catalog, nil
}

// Redeem exchanges points for a reward, then reloads the catalog (stock) and the user
// (balance). The returned user carries the new balance.
//
// The reward is looked up in the cached catalog, loading it when the reward is missing,
// and balance and stock are checked before the backend is called. The backend stays
// authoritative.
func (s *Service) Redeem(ctx context.Context, rewardID string) (models.User, error) {
	user, err := s.session.Current()
	if err != nil {
		return models.User{}, err
	}

	reward, ok := s.cached(rewardID)
	if !ok {
		if _, err = s.Catalog(ctx); err != nil {
			return models.User{}, err
		}
		if reward, ok = s.cached(rewardID); !ok {
			return models.User{}, fmt.Errorf("%w: %s", ErrUnknownReward, rewardID)
		}
	}

	switch {
	case reward.Stock <= 0:
		return models.User{}, fmt.Errorf("%w: %s", ErrOutOfStock, reward.Title)
	case user.Points < reward.Points:
		return models.User{}, fmt.Errorf("%w: %d needed, %d available", ErrInsufficientPoints, reward.Points, user.Points)
	}

	if err = s.backend.RedeemReward(ctx, user.Token, user.ID, rewardID); err != nil {
		return models.User{}, fmt.Errorf("failed to redeem reward %s: %w", rewardID, err)
	}
	s.log.InfoContext(ctx, "Reward redeemed", "reward", rewardID, "user", user.ID)

	if _, err = s.Catalog(ctx); err != nil {
		s.log.WarnContext(ctx, "Failed to reload rewards after redemption", "error", err)
	}

	refreshed, err := s.session.Refresh(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to refresh user after redemption", "error", err)
		return user, nil
	}

	return refreshed, nil
}

// History lists the session user's past redemptions, newest first.
func (s *Service) History(ctx context.Context) ([]models.Redemption, error) {
	user, err := s.session.Current()
	if err != nil {
		return nil, err
	}

	history, err := s.backend.ListRedemptions(ctx, user.Token, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}

	slices.SortStableFunc(history, func(a, b models.Redemption) int {
		return b.RedeemedAt.Compare(a.RedeemedAt)
	})

	return history, nil
}

func (s *Service) cached(rewardID string) (models.Reward, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.catalog, func(r models.Reward) bool { return r.ID == rewardID })
	if idx < 0 {
		return models.Reward{}, false
	}

	return s.catalog[idx], true
}
