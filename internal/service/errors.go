// Package service provides business logic implementations.
package service

import (
	"errors"
	"fmt"
	"strings"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/pkg/lock"
	"discord-economy-bot/internal/repository"
	"discord-economy-bot/internal/shop"
)

// Validation errors. These are expected user mistakes: handlers render
// them as-is and do not log them as failures.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrBotRecipient        = errors.New("cannot transfer to a bot")
	ErrCrossCommunity      = errors.New("accounts belong to different communities")
	ErrInsufficientBalance = repository.ErrInsufficientBalance
	ErrAmountTooLarge      = errors.New("amount is too large")

	ErrItemNotFound         = repository.ErrItemNotFound
	ErrItemExists           = repository.ErrItemExists
	ErrInsufficientQuantity = repository.ErrInsufficientQuantity
	ErrAlreadyPurchased     = repository.ErrAlreadyPurchased
	ErrOneTimeQuantity      = errors.New("one-time items can only be bought one at a time")

	ErrPromoNotFound     = repository.ErrPromoNotFound
	ErrPromoExists       = repository.ErrPromoExists
	ErrAlreadyRedeemed   = repository.ErrAlreadyRedeemed
	ErrPromoExpired      = errors.New("promo code has expired")
	ErrPromoLimitReached = errors.New("promo code usage limit reached")
	ErrInvalidPromoCode  = errors.New("promo code must be 1 to 64 characters")
	ErrInvalidMaxUses    = errors.New("max uses must be at least 1")
	ErrInvalidExpiry     = errors.New("expiry must look like YYYY-MM-DD HH:MM")

	ErrEventNotFound      = repository.ErrEventNotFound
	ErrEventLocked        = errors.New("betting on this event is closed")
	ErrInvalidOption      = errors.New("unknown event option")
	ErrBetTooLow          = errors.New("bet is below the minimum")
	ErrInvalidCoefficient = errors.New("coefficient must be at least 1 and below 1000000")
	ErrSameTeams          = errors.New("teams must have different names")
	ErrNotEnoughOptions   = errors.New("at least two options are required")
	ErrInvalidOptionList  = errors.New("options must look like Name:coeff, Name:coeff")
	ErrEmptyTitle         = errors.New("title must not be empty")

	ErrGameNotFound = errors.New("game not found")
)

// OptionError rejects an unknown event option and carries the valid keys.
type OptionError struct {
	Choice string
	Valid  []string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("unknown option %q, valid options: %s", e.Choice, strings.Join(e.Valid, ", "))
}

// Is makes errors.Is(err, ErrInvalidOption) match.
func (e *OptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

var userErrors = []error{
	ErrInvalidAmount,
	ErrSelfTransfer,
	ErrBotRecipient,
	ErrCrossCommunity,
	ErrInsufficientBalance,
	ErrAmountTooLarge,
	ErrItemNotFound,
	ErrItemExists,
	ErrInsufficientQuantity,
	ErrAlreadyPurchased,
	ErrOneTimeQuantity,
	ErrPromoNotFound,
	ErrPromoExists,
	ErrAlreadyRedeemed,
	ErrPromoExpired,
	ErrPromoLimitReached,
	ErrInvalidPromoCode,
	ErrInvalidMaxUses,
	ErrInvalidExpiry,
	ErrEventNotFound,
	ErrEventLocked,
	ErrInvalidOption,
	ErrBetTooLow,
	ErrInvalidCoefficient,
	ErrSameTeams,
	ErrNotEnoughOptions,
	ErrInvalidOptionList,
	ErrEmptyTitle,
	ErrGameNotFound,
	shop.ErrEmptyName,
	shop.ErrNameTooLong,
	shop.ErrInvalidPrice,
	shop.ErrInvalidKind,
	shop.ErrRoleRequired,
	shop.ErrRoleNotAllowed,
	shop.ErrInvalidQuantity,
	game.ErrInvalidBet,
	game.ErrBetTooLow,
	game.ErrBetTooHigh,
	game.ErrInvalidPick,
	bombs.ErrInvalidBombCount,
	bombs.ErrInvalidCell,
	bombs.ErrNotOwner,
	bombs.ErrSessionOver,
	bombs.ErrSessionNotFound,
	lock.ErrLockTimeout,
}

// IsUserError reports whether err is an expected validation outcome that
// callers show to the user verbatim instead of treating it as a failure.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
