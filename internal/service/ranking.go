package service

import (
	"context"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/repository"
)

// DefaultTopLimit is the leaderboard size when none is configured.
const DefaultTopLimit = 10

// RankingService builds the per-community leaderboard.
type RankingService struct {
	ledger *repository.LedgerRepository
	limit  int
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(ledger *repository.LedgerRepository, limit int) *RankingService {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return &RankingService{ledger: ledger, limit: limit}
}

// Top returns the richest accounts of a community, highest first.
func (s *RankingService) Top(ctx context.Context, communityID int64) ([]*model.Account, error) {
	return s.ledger.TopBalances(ctx, communityID, s.limit)
}
