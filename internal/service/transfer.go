package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/repository"
)

// TransferService handles user-to-user payments inside one community.
type TransferService struct {
	runner db.TxRunner
	ledger *repository.LedgerRepository
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(runner db.TxRunner, ledger *repository.LedgerRepository) *TransferService {
	return &TransferService{runner: runner, ledger: ledger}
}

// TransferResult reports both balances after a payment.
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}

// Transfer moves amount from one account to another. The debit and the
// credit commit together or not at all.
func (s *TransferService) Transfer(ctx context.Context, from, to model.AccountKey, amount int64) (*TransferResult, error) {
	if err := ValidateTransfer(from, to, amount); err != nil {
		return nil, err
	}

	var res TransferResult
	err := db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
		ledger := s.ledger.WithTx(tx)

		var err error
		res.FromBalance, err = ledger.Withdraw(ctx, from, amount)
		if err != nil {
			return err
		}
		res.ToBalance, err = ledger.AddBalance(ctx, to, amount)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transfer: %w", err)
	}

	audit(from, -amount, res.FromBalance, model.ReasonTransfer)
	audit(to, amount, res.ToBalance, model.ReasonTransfer)
	return &res, nil
}

// ValidateTransfer checks a payment without touching storage.
func ValidateTransfer(from, to model.AccountKey, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from.CommunityID != to.CommunityID {
		return ErrCrossCommunity
	}
	if from.UserID == to.UserID {
		return ErrSelfTransfer
	}
	return nil
}
