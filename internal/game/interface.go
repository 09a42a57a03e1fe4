// Package game defines the game interfaces and shared mechanics of the
// chance games: the Game interface and registry, the random source,
// decimal payout math and the per-account loss streak tracker.
package game

import (
	"context"
	"errors"
)

// Errors shared by all games.
var (
	ErrInvalidBet  = errors.New("bet amount must be positive")
	ErrBetTooLow   = errors.New("bet is below the minimum")
	ErrBetTooHigh  = errors.New("bet is above the maximum")
	ErrInvalidPick = errors.New("invalid bet choice")
)

// Round is the input of one play.
type Round struct {
	Bet        int64
	LossStreak int
	Params     map[string]any
}

// GameResult represents the outcome of a game play.
type GameResult struct {
	Payout      int64          // Gross amount credited back, 0 on a loss
	Won         bool           // Drives the loss streak
	Description string         // Human-readable result description
	Details     map[string]any // Additional game-specific details
}

// Game is a one-shot chance game: the stake is taken, Play decides the
// outcome, the payout is credited.
type Game interface {
	// Name returns the game's display name (e.g., "Slots")
	Name() string

	// Command returns the command that triggers this game (e.g., "slots")
	Command() string

	// Description returns a brief description of the game
	Description() string

	// MinBet returns the smallest accepted stake.
	MinBet() int64

	// ValidateBet checks the bet amount and parameters before any money moves.
	ValidateBet(bet int64, params map[string]any) error

	// Play decides the outcome of one round.
	Play(ctx context.Context, round Round) (*GameResult, error)
}

// MaxBet bounds a single stake. Every multiplier the bot pays, including
// event coefficients, stays below 10^6, so payouts fit in an int64.
const MaxBet int64 = 1_000_000_000_000

// CheckBet is the bet validation shared by the games.
func CheckBet(bet, minBet int64) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet < minBet {
		return ErrBetTooLow
	}
	if bet > MaxBet {
		return ErrBetTooHigh
	}
	return nil
}
