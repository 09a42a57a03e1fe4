package slot

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-economy-bot/internal/game"
)

func TestSlotGame_ValidateBet(t *testing.T) {
	g := New(&Config{MinBet: 10, RNG: rand.New(rand.NewSource(1))})

	assert.ErrorIs(t, g.ValidateBet(0, nil), game.ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(-5, nil), game.ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(9, nil), game.ErrBetTooLow)
	assert.NoError(t, g.ValidateBet(10, nil))
}

func TestSlotGame_PlayReportsEngineOutcome(t *testing.T) {
	g := New(&Config{RNG: rand.New(rand.NewSource(42))})
	assert.Equal(t, int64(DefaultMinBet), g.MinBet())
	assert.Equal(t, "slots", g.Command())

	for i := 0; i < 50; i++ {
		res, err := g.Play(context.Background(), game.Round{Bet: 20, LossStreak: i % 5})
		require.NoError(t, err)
		assert.Equal(t, res.Payout > 0, res.Won)
		assert.Contains(t, res.Details, "grid")
		lines := strings.Split(res.Description, "\n")
		assert.GreaterOrEqual(t, len(lines), Rows+1)
	}
}

func TestRenderGrid_MarksWinningRows(t *testing.T) {
	grid := Grid{
		row(Cherry, Cherry, Cherry, Lemon, Apple),
		row(Bell, Apple, Bell, Apple, Bell),
		row(Grapes, Seven, Grapes, Seven, Grapes),
	}
	_, cells := Evaluate(grid, 10)

	out := RenderGrid(grid, cells)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, Rows)
	assert.True(t, strings.HasSuffix(lines[0], "⬅️"))
	assert.False(t, strings.HasSuffix(lines[1], "⬅️"))
	assert.False(t, strings.HasSuffix(lines[2], "⬅️"))
}
