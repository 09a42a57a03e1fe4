// Package roulette implements a single-zero roulette wheel with colour,
// parity and straight-up number bets.
package roulette

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"discord-economy-bot/internal/game"
)

const (
	// DefaultMinBet is the smallest accepted stake.
	DefaultMinBet = 10

	// Pockets on the wheel: 0..36.
	Pockets = 37

	NumberMultiplier  = 36
	OutsideMultiplier = 2
)

// Outside bet types.
const (
	Red   = "red"
	Black = "black"
	Even  = "even"
	Odd   = "odd"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// Colour names the colour of a pocket.
func Colour(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return Red
	default:
		return Black
	}
}

// NormalizeChoice trims and lowercases a bet type and maps "zero" to "0".
// It returns game.ErrInvalidPick for anything that is not a bet type.
func NormalizeChoice(choice string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(choice))
	if c == "zero" {
		c = "0"
	}
	switch c {
	case Red, Black, Even, Odd:
		return c, nil
	}
	if !allDigits(c) {
		return "", game.ErrInvalidPick
	}
	n, err := strconv.Atoi(c)
	if err != nil || n >= Pockets {
		return "", game.ErrInvalidPick
	}
	return strconv.Itoa(n), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Multiplier returns the gross payout multiplier of choice for result, 0 on a loss.
// choice must be normalized. Zero counts as even.
func Multiplier(choice string, result int) int64 {
	switch choice {
	case Red:
		if Colour(result) == Red {
			return OutsideMultiplier
		}
	case Black:
		if Colour(result) == Black {
			return OutsideMultiplier
		}
	case Even:
		if result%2 == 0 {
			return OutsideMultiplier
		}
	case Odd:
		if result%2 == 1 {
			return OutsideMultiplier
		}
	default:
		if n, err := strconv.Atoi(choice); err == nil && n == result {
			return NumberMultiplier
		}
	}
	return 0
}

// RouletteGame implements game.Game.
type RouletteGame struct {
	rng    game.RNG
	minBet int64
}

// Config holds configuration for the roulette game.
type Config struct {
	MinBet int64
	RNG    game.RNG
}

// New creates a new RouletteGame with the given configuration.
func New(cfg *Config) *RouletteGame {
	g := &RouletteGame{minBet: DefaultMinBet}
	if cfg != nil {
		if cfg.MinBet > 0 {
			g.minBet = cfg.MinBet
		}
		g.rng = cfg.RNG
	}
	if g.rng == nil {
		g.rng = game.NewRNG(0)
	}
	return g
}

// Name returns the game's display name.
func (g *RouletteGame) Name() string {
	return "Roulette"
}

// Command returns the command that triggers this game.
func (g *RouletteGame) Command() string {
	return "roulette"
}

// Description returns a brief description of the game.
func (g *RouletteGame) Description() string {
	return "Bet on red/black/even/odd (x2) or a number 0-36 (x36)"
}

// MinBet returns the smallest accepted stake.
func (g *RouletteGame) MinBet() int64 {
	return g.minBet
}

// ValidateBet checks the amount and the "choice" parameter.
func (g *RouletteGame) ValidateBet(bet int64, params map[string]any) error {
	if err := game.CheckBet(bet, g.minBet); err != nil {
		return err
	}
	_, err := choiceParam(params)
	return err
}

func choiceParam(params map[string]any) (string, error) {
	raw, ok := params["choice"].(string)
	if !ok {
		return "", game.ErrInvalidPick
	}
	return NormalizeChoice(raw)
}

// Spin draws a pocket.
func (g *RouletteGame) Spin() int {
	return g.rng.Intn(Pockets)
}

// Play spins the wheel and settles the bet in params["choice"].
func (g *RouletteGame) Play(_ context.Context, round game.Round) (*game.GameResult, error) {
	if err := game.CheckBet(round.Bet, g.minBet); err != nil {
		return nil, err
	}
	choice, err := choiceParam(round.Params)
	if err != nil {
		return nil, err
	}

	result := g.Spin()
	payout := round.Bet * Multiplier(choice, result)

	desc := fmt.Sprintf("🎡 The ball lands on **%d** (%s).", result, Colour(result))
	if payout > 0 {
		desc += fmt.Sprintf("\n🎉 Your bet on **%s** wins **%d**!", choice, payout)
	} else {
		desc += fmt.Sprintf("\n😢 Your bet on **%s** loses %d.", choice, round.Bet)
	}

	return &game.GameResult{
		Payout:      payout,
		Won:         payout > 0,
		Description: desc,
		Details: map[string]any{
			"result": result,
			"colour": Colour(result),
			"choice": choice,
		},
	}, nil
}
