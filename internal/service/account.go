package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/repository"
)

// LedgerService owns every balance change. Accounts are created lazily at
// the configured starting balance the first time they are touched.
type LedgerService struct {
	ledger *repository.LedgerRepository
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(ledger *repository.LedgerRepository) *LedgerService {
	return &LedgerService{ledger: ledger}
}

// Balance returns the current balance, creating the account if needed.
func (s *LedgerService) Balance(ctx context.Context, key model.AccountKey) (int64, error) {
	return s.ledger.GetBalance(ctx, key)
}

// Update applies balance += delta. The ledger itself enforces no floor:
// callers that must not overdraw use Debit instead.
func (s *LedgerService) Update(ctx context.Context, key model.AccountKey, delta int64, reason string) (int64, error) {
	balance, err := s.ledger.AddBalance(ctx, key, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	audit(key, delta, balance, reason)
	return balance, nil
}

// Credit adds a positive amount.
func (s *LedgerService) Credit(ctx context.Context, key model.AccountKey, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Update(ctx, key, amount, reason)
}

// Debit subtracts amount only if the balance covers it.
func (s *LedgerService) Debit(ctx context.Context, key model.AccountKey, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := s.ledger.Withdraw(ctx, key, amount)
	if err != nil {
		return 0, err
	}
	audit(key, -amount, balance, reason)
	return balance, nil
}

// Give is the admin grant.
func (s *LedgerService) Give(ctx context.Context, key model.AccountKey, amount int64) (int64, error) {
	return s.Credit(ctx, key, amount, model.ReasonAdminGive)
}

// Remove is the admin deduction. It may take the balance below zero.
func (s *LedgerService) Remove(ctx context.Context, key model.AccountKey, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Update(ctx, key, -amount, model.ReasonAdminRemove)
}

// audit writes the one log line every balance change produces.
func audit(key model.AccountKey, delta, balance int64, reason string) {
	kind := "credit"
	if delta < 0 {
		kind = "debit"
	}
	log.Info().
		Int64("user_id", key.UserID).
		Int64("community_id", key.CommunityID).
		Int64("delta", delta).
		Int64("balance", balance).
		Str("reason", reason).
		Str("kind", kind).
		Msg("Balance changed")
}
