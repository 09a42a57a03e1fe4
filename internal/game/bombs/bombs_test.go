package bombs

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/model"
)

type fixedDraw struct{ f float64 }

func (d fixedDraw) Intn(int) int     { return 0 }
func (d fixedDraw) Float64() float64 { return d.f }

var (
	owner   = model.AccountKey{UserID: 1, CommunityID: 10}
	someone = model.AccountKey{UserID: 2, CommunityID: 10}
	t0      = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

func safeCells(s *Session) []Cell {
	var out []Cell
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !s.IsBomb(Cell{r, c}) {
				out = append(out, Cell{r, c})
			}
		}
	}
	return out
}

func bombCells(s *Session) []Cell {
	var out []Cell
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.IsBomb(Cell{r, c}) {
				out = append(out, Cell{r, c})
			}
		}
	}
	return out
}

func TestCoefficient(t *testing.T) {
	tests := []struct {
		bombs, crystals int
		want            string
	}{
		{3, 6, "1.9"},
		{1, 0, "1"},
		{1, 8, "1.4"},
		{5, 2, "1.5"},
		{8, 1, "1.4"},
		{9, 1, "1.4"},
		{0, 2, "1.8"},
	}
	for _, tt := range tests {
		got := Coefficient(tt.bombs, tt.crystals)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"bombs=%d crystals=%d got %s", tt.bombs, tt.crystals, got)
	}
}

func TestNewSession_RejectsBombCount(t *testing.T) {
	for _, n := range []int{0, -1, 9} {
		_, err := NewSession(fixedDraw{}, owner, 100, n, 0, t0)
		assert.ErrorIs(t, err, ErrInvalidBombCount, "bombs=%d", n)
	}
	_, err := NewSession(fixedDraw{}, owner, 0, 3, 0, t0)
	assert.ErrorIs(t, err, game.ErrInvalidBet)
}

func TestNewSession_WillWinDraw(t *testing.T) {
	tests := []struct {
		name   string
		draw   float64
		streak int
		want   bool
	}{
		{"base chance misses", 0.5, 0, false},
		{"base chance hits", 0.29, 0, true},
		{"streak raises chance", 0.5, 3, true},
		{"ceiling holds", 0.71, 50, false},
		{"below ceiling", 0.69, 50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(fixedDraw{f: tt.draw}, owner, 100, 3, tt.streak, t0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.WillWin)
		})
	}
}

func TestReveal_AllCrystalsAutoWins(t *testing.T) {
	s, err := NewSession(fixedDraw{f: 0.99}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	require.False(t, s.WillWin)

	cells := safeCells(s)
	require.Len(t, cells, 6)
	for i, c := range cells {
		out, err := s.Reveal(owner, c, t0)
		require.NoError(t, err)
		assert.True(t, out.Changed)
		if i < len(cells)-1 {
			assert.Equal(t, InProgress, out.State)
		}
	}

	assert.Equal(t, Won, s.State)
	assert.True(t, s.AutoWin)
	assert.Equal(t, int64(190), s.Payout)
}

func TestReveal_BombLoses(t *testing.T) {
	s, err := NewSession(fixedDraw{f: 0}, owner, 100, 2, 0, t0)
	require.NoError(t, err)

	bomb := bombCells(s)[0]
	out, err := s.Reveal(owner, bomb, t0)
	require.NoError(t, err)

	assert.Equal(t, Lost, out.State)
	assert.Zero(t, out.Payout)
	require.NotNil(t, s.Exploded)
	assert.Equal(t, bomb, *s.Exploded)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			assert.True(t, s.IsRevealed(Cell{r, c}))
		}
	}
}

func TestReveal_Guards(t *testing.T) {
	s, err := NewSession(fixedDraw{}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	safe := safeCells(s)[0]

	_, err = s.Reveal(someone, safe, t0)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.Reveal(owner, Cell{Row: 3, Col: 0}, t0)
	assert.ErrorIs(t, err, ErrInvalidCell)

	out, err := s.Reveal(owner, safe, t0)
	require.NoError(t, err)
	assert.True(t, out.Changed)

	later := t0.Add(time.Minute)
	out, err = s.Reveal(owner, safe, later)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, 1, s.Found)
	assert.Equal(t, t0, s.LastSeen)
}

func TestCashOut_LosingDrawDetonates(t *testing.T) {
	s, err := NewSession(fixedDraw{f: 0.99}, owner, 100, 5, 0, t0)
	require.NoError(t, err)
	require.False(t, s.WillWin)

	for _, c := range safeCells(s)[:2] {
		_, err := s.Reveal(owner, c, t0)
		require.NoError(t, err)
	}

	out, err := s.CashOut(fixedDraw{}, owner, t0)
	require.NoError(t, err)
	assert.Equal(t, Lost, out.State)
	assert.Zero(t, out.Payout)
	require.NotNil(t, s.Exploded)
	assert.True(t, s.IsBomb(*s.Exploded))

	_, err = s.CashOut(fixedDraw{}, owner, t0)
	assert.ErrorIs(t, err, ErrSessionOver)
}

func TestCashOut_WinningDrawPays(t *testing.T) {
	s, err := NewSession(fixedDraw{f: 0}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	require.True(t, s.WillWin)

	for _, c := range safeCells(s)[:2] {
		_, err := s.Reveal(owner, c, t0)
		require.NoError(t, err)
	}

	_, err = s.CashOut(fixedDraw{}, someone, t0)
	assert.ErrorIs(t, err, ErrNotOwner)

	out, err := s.CashOut(fixedDraw{}, owner, t0)
	require.NoError(t, err)
	assert.Equal(t, Won, out.State)
	assert.False(t, out.AutoWin)
	assert.Equal(t, int64(130), out.Payout)
}

func TestReveal_SingleCrystalBoard(t *testing.T) {
	s, err := NewSession(fixedDraw{f: 0.99}, owner, 50, 8, 0, t0)
	require.NoError(t, err)

	// One crystal: revealing it already finishes the round.
	out, err := s.Reveal(owner, safeCells(s)[0], t0)
	require.NoError(t, err)
	assert.Equal(t, Won, out.State)
	assert.True(t, out.AutoWin)
	assert.Equal(t, int64(70), out.Payout)
}

func TestSession_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bombs := rapid.IntRange(MinBombs, MaxBombs).Draw(t, "bombs")
		bet := rapid.Int64Range(1, 1_000_000).Draw(t, "bet")
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")
		rng := game.NewRNG(seed)

		s, err := NewSession(rng, owner, bet, bombs, 0, t0)
		if err != nil {
			t.Fatalf("new session: %v", err)
		}
		if got := len(bombCells(s)); got != bombs {
			t.Fatalf("placed %d bombs, want %d", got, bombs)
		}

		order := game.Perm(rng, Cells)
		for _, idx := range order {
			c := Cell{Row: idx / Size, Col: idx % Size}
			out, err := s.Reveal(owner, c, t0)
			if err != nil {
				if s.State == InProgress {
					t.Fatalf("reveal in progress: %v", err)
				}
				break
			}
			if out.State != InProgress {
				break
			}
			if rapid.Bool().Draw(t, "cashout") {
				if _, err := s.CashOut(rng, owner, t0); err != nil {
					t.Fatalf("cash out: %v", err)
				}
				break
			}
		}

		switch s.State {
		case Won:
			want := game.Payout(bet, Coefficient(bombs, s.Found))
			if s.Payout != want {
				t.Fatalf("payout %d, want %d", s.Payout, want)
			}
			if s.AutoWin != (s.Found == s.CrystalsTotal) {
				t.Fatalf("auto win %v with %d/%d found", s.AutoWin, s.Found, s.CrystalsTotal)
			}
			if s.Payout < bet {
				t.Fatalf("win paid %d below stake %d", s.Payout, bet)
			}
		case Lost:
			if s.Payout != 0 || s.Exploded == nil || !s.IsBomb(*s.Exploded) {
				t.Fatalf("lost session inconsistent: payout=%d exploded=%v", s.Payout, s.Exploded)
			}
		default:
			t.Fatalf("session still in progress")
		}
	})
}

func TestStore(t *testing.T) {
	store := NewStore()
	s, err := NewSession(fixedDraw{f: 0}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	store.Put(s)
	assert.Equal(t, 1, store.Len())

	err = store.With(s.ID, func(sess *Session) error {
		_, err := sess.Reveal(owner, safeCells(sess)[0], t0)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	err = store.With(s.ID, func(sess *Session) error {
		_, err := sess.CashOut(fixedDraw{}, owner, t0)
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, store.Len())

	err = store.With(s.ID, func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Sweep(t *testing.T) {
	store := NewStore()
	stale, err := NewSession(fixedDraw{}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	fresh, err := NewSession(fixedDraw{}, someone, 100, 3, 0, t0.Add(9*time.Minute))
	require.NoError(t, err)
	store.Put(stale)
	store.Put(fresh)

	expired := store.Sweep(t0.Add(11*time.Minute), 10*time.Minute)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_KeepsFinishedSessionUntilSettled(t *testing.T) {
	store := NewStore()
	s, err := NewSession(fixedDraw{f: 0}, owner, 100, 3, 0, t0)
	require.NoError(t, err)
	store.Put(s)

	errPayout := errors.New("payout failed")
	err = store.With(s.ID, func(sess *Session) error {
		if _, err := sess.CashOut(fixedDraw{}, owner, t0); err != nil {
			return err
		}
		return errPayout
	})
	assert.ErrorIs(t, err, errPayout)
	assert.Equal(t, 1, store.Len())

	// A finished session is not idle, it is owed.
	assert.Empty(t, store.Sweep(t0.Add(time.Hour), time.Minute))

	err = store.With(s.ID, func(sess *Session) error {
		out := sess.Result()
		assert.True(t, out.Changed)
		assert.Equal(t, Won, out.State)
		assert.Equal(t, int64(100), out.Payout)
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, store.Len())

	err = store.With(s.ID, func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
