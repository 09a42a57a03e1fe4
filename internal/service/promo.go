package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/repository"
)

// PromoExpiryLayout is the accepted expiry format, interpreted as UTC.
const PromoExpiryLayout = "2006-01-02 15:04"

// MaxPromoCodeLength matches the promo_codes.code column.
const MaxPromoCodeLength = 64

// PromoService manages bonus codes.
type PromoService struct {
	runner db.TxRunner
	promos *repository.PromoRepository
	ledger *repository.LedgerRepository
	now    func() time.Time
}

// NewPromoService creates a new PromoService instance.
func NewPromoService(runner db.TxRunner, promos *repository.PromoRepository, ledger *repository.LedgerRepository) *PromoService {
	return &PromoService{
		runner: runner,
		promos: promos,
		ledger: ledger,
		now:    time.Now,
	}
}

// ParseExpiry parses an admin-supplied expiry. An empty string means the
// code never expires.
func ParseExpiry(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(PromoExpiryLayout, s, time.UTC)
	if err != nil {
		return nil, ErrInvalidExpiry
	}
	return &t, nil
}

// Create stores a new code.
func (s *PromoService) Create(ctx context.Context, p *model.PromoCode) error {
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" || len(p.Code) > MaxPromoCodeLength {
		return ErrInvalidPromoCode
	}
	if p.Reward <= 0 {
		return ErrInvalidAmount
	}
	if p.MaxUses != nil && *p.MaxUses < 1 {
		return ErrInvalidMaxUses
	}
	return s.promos.Create(ctx, p)
}

// Delete removes a code. The bool reports whether it existed.
func (s *PromoService) Delete(ctx context.Context, code string) (bool, error) {
	return s.promos.Delete(ctx, strings.TrimSpace(code))
}

// List returns every code with its use count.
func (s *PromoService) List(ctx context.Context) ([]*model.PromoCode, error) {
	return s.promos.List(ctx)
}

// RedeemResult is the outcome of a successful redemption.
type RedeemResult struct {
	Reward  int64
	Balance int64
}

// Redeem credits a code's reward to the account. The code row is locked
// for the duration so the use count stays exact. The unique constraint on
// redemptions is what stops a second redemption by the same member.
func (s *PromoService) Redeem(ctx context.Context, code string, key model.AccountKey) (*RedeemResult, error) {
	code = strings.TrimSpace(code)

	var res RedeemResult
	err := db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
		promos := s.promos.WithTx(tx)

		p, err := promos.GetForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if p.Expired(s.now()) {
			return ErrPromoExpired
		}
		if p.MaxUses != nil {
			uses, err := promos.CountRedemptions(ctx, code)
			if err != nil {
				return err
			}
			if p.Exhausted(uses) {
				return ErrPromoLimitReached
			}
		}

		redeemed, err := promos.HasRedeemed(ctx, code, key)
		if err != nil {
			return err
		}
		if redeemed {
			return ErrAlreadyRedeemed
		}
		if err := promos.InsertRedemption(ctx, code, key); err != nil {
			return err
		}

		res.Reward = p.Reward
		res.Balance, err = s.ledger.WithTx(tx).AddBalance(ctx, key, p.Reward)
		return err
	})
	if err != nil {
		if IsUserError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to redeem promo code: %w", err)
	}

	audit(key, res.Reward, res.Balance, model.ReasonPromo)
	return &res, nil
}
