package slot

import (
	"context"
	"fmt"
	"strings"

	"discord-economy-bot/internal/game"
)

// DefaultMinBet is the smallest accepted stake.
const DefaultMinBet = 10

// SlotGame implements game.Game on top of an Engine.
type SlotGame struct {
	engine *Engine
	minBet int64
}

// Config holds configuration for the slot game.
type Config struct {
	MinBet int64
	RNG    game.RNG
}

// New creates a new SlotGame with the given configuration.
func New(cfg *Config) *SlotGame {
	minBet := int64(DefaultMinBet)
	var rng game.RNG
	if cfg != nil {
		if cfg.MinBet > 0 {
			minBet = cfg.MinBet
		}
		rng = cfg.RNG
	}
	if rng == nil {
		rng = game.NewRNG(0)
	}

	return &SlotGame{
		engine: NewEngine(rng),
		minBet: minBet,
	}
}

// Name returns the game's display name.
func (s *SlotGame) Name() string {
	return "Slots"
}

// Command returns the command that triggers this game.
func (s *SlotGame) Command() string {
	return "slots"
}

// Description returns a brief description of the game.
func (s *SlotGame) Description() string {
	return "5 reels, 7 paylines. 👑 is wild, 3+ in a row from the left pays"
}

// MinBet returns the smallest accepted stake.
func (s *SlotGame) MinBet() int64 {
	return s.minBet
}

// ValidateBet checks if the bet amount is valid.
func (s *SlotGame) ValidateBet(bet int64, _ map[string]any) error {
	return game.CheckBet(bet, s.minBet)
}

// Play spins the reels.
func (s *SlotGame) Play(_ context.Context, round game.Round) (*game.GameResult, error) {
	if err := s.ValidateBet(round.Bet, round.Params); err != nil {
		return nil, err
	}

	res := s.engine.Spin(round.Bet, round.LossStreak)

	var sb strings.Builder
	sb.WriteString(RenderGrid(res.Grid, res.WinningCells))
	if res.Won() {
		fmt.Fprintf(&sb, "\n🎉 You won **%d**!", res.TotalWin)
	} else {
		fmt.Fprintf(&sb, "\n😢 No win. You lost **%d**.", round.Bet)
	}

	return &game.GameResult{
		Payout:      res.TotalWin,
		Won:         res.Won(),
		Description: sb.String(),
		Details: map[string]any{
			"grid":          res.Grid,
			"winning_cells": res.WinningCells,
			"forced":        res.Forced,
			"loss_streak":   res.LossStreak,
		},
	}, nil
}

// RenderGrid draws the grid row by row and marks rows holding a winning cell.
func RenderGrid(grid Grid, winning []Cell) string {
	hit := make(map[Cell]bool, len(winning))
	for _, c := range winning {
		hit[c] = true
	}

	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		rowHit := false
		for reel := 0; reel < Reels; reel++ {
			if reel > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(grid[row][reel])
			if hit[Cell{Row: row, Reel: reel}] {
				rowHit = true
			}
		}
		if rowHit {
			sb.WriteString(" ⬅️")
		}
		if row < Rows-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
