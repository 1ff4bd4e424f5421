package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/dedup"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// ReplayListingsUseCase отдает объявления пользователя за период, сгруппированные по квартирам
type ReplayListingsUseCase struct {
	repo port.ListingRepositoryPort
}

func NewReplayListingsUseCase(repo port.ListingRepositoryPort) *ReplayListingsUseCase {
	return &ReplayListingsUseCase{repo: repo}
}

func (uc *ReplayListingsUseCase) Execute(ctx context.Context, userID int64, since time.Time) ([]domain.DeduplicationGroup, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ReplayListings",
		"user_id":  userID,
	})

	listings, err := uc.repo.FindListingsForUserSince(ctx, userID, since)
	if err != nil {
		logger.Error("Failed to load listings for user", err, port.Fields{"since": since})
		return nil, fmt.Errorf("replay: loading listings for user %d: %w", userID, err)
	}

	groups := dedup.Group(listings)
	logger.Debug("Listings grouped", port.Fields{"listings": len(listings), "groups": len(groups)})
	return groups, nil
}
