package roulette

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"discord-economy-bot/internal/game"
)

// fixedPocket always lands on n.
type fixedPocket struct{ n int }

func (f fixedPocket) Intn(int) int     { return f.n }
func (f fixedPocket) Float64() float64 { return 0 }

func TestMultiplier_ResultOne(t *testing.T) {
	tests := []struct {
		choice string
		want   int64
	}{
		{Red, 2},
		{"1", 36},
		{Black, 0},
		{Odd, 2},
		{Even, 0},
		{"2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			if got := Multiplier(tt.choice, 1); got != tt.want {
				t.Errorf("Multiplier(%q, 1) = %d, want %d", tt.choice, got, tt.want)
			}
		})
	}
}

func TestMultiplier_Zero(t *testing.T) {
	assert.Equal(t, int64(0), Multiplier(Red, 0))
	assert.Equal(t, int64(0), Multiplier(Black, 0))
	assert.Equal(t, int64(0), Multiplier(Odd, 0))
	assert.Equal(t, int64(2), Multiplier(Even, 0))
	assert.Equal(t, int64(36), Multiplier("0", 0))
}

func TestNormalizeChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{" RED ", Red, false},
		{"Black", Black, false},
		{"zero", "0", false},
		{"ZERO", "0", false},
		{"07", "7", false},
		{"36", "36", false},
		{"37", "", true},
		{"-1", "", true},
		{"+5", "", true},
		{" 5", "5", false},
		{"5.0", "", true},
		{"green", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeChoice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, game.ErrInvalidPick)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColour(t *testing.T) {
	reds, blacks := 0, 0
	for n := 1; n < Pockets; n++ {
		switch Colour(n) {
		case Red:
			reds++
		case Black:
			blacks++
		}
	}
	assert.Equal(t, 18, reds)
	assert.Equal(t, 18, blacks)
	assert.Equal(t, "green", Colour(0))
}

func TestRouletteGame_Play(t *testing.T) {
	g := New(&Config{RNG: fixedPocket{n: 1}})
	ctx := context.Background()

	res, err := g.Play(ctx, game.Round{Bet: 50, Params: map[string]any{"choice": "red"}})
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, int64(100), res.Payout)
	assert.Equal(t, 1, res.Details["result"])

	res, err = g.Play(ctx, game.Round{Bet: 50, Params: map[string]any{"choice": "1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1800), res.Payout)

	res, err = g.Play(ctx, game.Round{Bet: 50, Params: map[string]any{"choice": "black"}})
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Zero(t, res.Payout)

	_, err = g.Play(ctx, game.Round{Bet: 5, Params: map[string]any{"choice": "red"}})
	assert.ErrorIs(t, err, game.ErrBetTooLow)

	_, err = g.Play(ctx, game.Round{Bet: 50, Params: map[string]any{"choice": "blue"}})
	assert.ErrorIs(t, err, game.ErrInvalidPick)

	assert.ErrorIs(t, g.ValidateBet(50, nil), game.ErrInvalidPick)
}

func TestRouletteGame_MaxBet(t *testing.T) {
	g := New(&Config{RNG: fixedPocket{n: 7}})
	ctx := context.Background()

	res, err := g.Play(ctx, game.Round{Bet: game.MaxBet, Params: map[string]any{"choice": "7"}})
	require.NoError(t, err)
	assert.Equal(t, game.MaxBet*NumberMultiplier, res.Payout)
	assert.Positive(t, res.Payout)

	_, err = g.Play(ctx, game.Round{Bet: game.MaxBet + 1, Params: map[string]any{"choice": "7"}})
	assert.ErrorIs(t, err, game.ErrBetTooHigh)
	assert.ErrorIs(t, g.ValidateBet(math.MaxInt64, map[string]any{"choice": "red"}), game.ErrBetTooHigh)
}

// Payouts are either 0, 2x or 36x, and 36x only for the exact number.
func TestPayoutShapeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		bet := rapid.Int64Range(10, 100_000).Draw(t, "bet")
		choice := rapid.SampledFrom([]string{Red, Black, Even, Odd, "0", "17", "36"}).Draw(t, "choice")

		g := New(&Config{RNG: rand.New(rand.NewSource(seed))})
		res, err := g.Play(context.Background(), game.Round{Bet: bet, Params: map[string]any{"choice": choice}})
		if err != nil {
			t.Fatalf("Play: %v", err)
		}

		result := res.Details["result"].(int)
		if result < 0 || result >= Pockets {
			t.Fatalf("result %d out of range", result)
		}
		switch res.Payout {
		case 0:
		case 2 * bet:
			if choice != Red && choice != Black && choice != Even && choice != Odd {
				t.Fatalf("2x paid on number bet %s", choice)
			}
		case 36 * bet:
			if choice != res.Details["choice"] || choice == Red || choice == Black || choice == Even || choice == Odd {
				t.Fatalf("36x paid on %s", choice)
			}
		default:
			t.Fatalf("unexpected payout %d for bet %d", res.Payout, bet)
		}
	})
}
