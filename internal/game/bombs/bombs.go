// Package bombs implements the risk-ladder game: a 3×3 board hiding bombs,
// where every safe cell found raises the cash-out coefficient.
//
// A session is a plain state machine. Whether an early cash-out pays is
// drawn once when the session starts; clearing every safe cell always pays.
package bombs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/model"
)

const (
	Size  = 3
	Cells = Size * Size

	MinBombs     = 1
	MaxBombs     = 8
	DefaultBombs = 3
)

// Early cash-out pays with probability min(0.70, 0.30 + streak × 0.08).
const (
	winChanceBase    = 0.30
	winChancePerLoss = 0.08
	winChanceCeiling = 0.70
)

// Errors for the bombs game.
var (
	ErrInvalidBombCount = errors.New("bomb count must be between 1 and 8")
	ErrInvalidCell      = errors.New("cell is outside the board")
	ErrNotOwner         = errors.New("session belongs to another player")
	ErrSessionOver      = errors.New("session is already finished")
)

var steps = map[int]decimal.Decimal{
	1: decimal.RequireFromString("0.05"),
	2: decimal.RequireFromString("0.10"),
	3: decimal.RequireFromString("0.15"),
	4: decimal.RequireFromString("0.20"),
	5: decimal.RequireFromString("0.25"),
	6: decimal.RequireFromString("0.30"),
	7: decimal.RequireFromString("0.35"),
	8: decimal.RequireFromString("0.40"),
}

// Step is the coefficient added per safe cell; unknown counts use the 8-bomb step.
func Step(bombs int) decimal.Decimal {
	if s, ok := steps[bombs]; ok {
		return s
	}
	return steps[MaxBombs]
}

// Coefficient is 1 + Step(bombs) × crystals.
func Coefficient(bombs, crystals int) decimal.Decimal {
	return decimal.NewFromInt(1).Add(Step(bombs).Mul(decimal.NewFromInt(int64(crystals))))
}

// State of a session.
type State int

const (
	InProgress State = iota
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Cell is a board coordinate.
type Cell struct {
	Row int
	Col int
}

// Session is one round of the game.
type Session struct {
	ID            uuid.UUID
	Owner         model.AccountKey
	Bet           int64
	BombCount     int
	CrystalsTotal int
	WillWin       bool
	State         State
	Found         int
	Payout        int64
	AutoWin       bool
	// Exploded is the bomb that ended a lost session.
	Exploded  *Cell
	CreatedAt time.Time
	LastSeen  time.Time

	bombs    [Size][Size]bool
	revealed [Size][Size]bool

	mu      sync.Mutex
	settled bool
}

// NewSession places bombCount bombs uniformly at random and draws the
// early cash-out outcome from the owner's loss streak.
func NewSession(rng game.RNG, owner model.AccountKey, bet int64, bombCount, lossStreak int, now time.Time) (*Session, error) {
	if bombCount < MinBombs || bombCount > MaxBombs {
		return nil, ErrInvalidBombCount
	}
	if bet <= 0 {
		return nil, game.ErrInvalidBet
	}

	s := &Session{
		ID:            uuid.New(),
		Owner:         owner,
		Bet:           bet,
		BombCount:     bombCount,
		CrystalsTotal: Cells - bombCount,
		State:         InProgress,
		CreatedAt:     now,
		LastSeen:      now,
	}
	for _, idx := range game.Perm(rng, Cells)[:bombCount] {
		s.bombs[idx/Size][idx%Size] = true
	}
	s.WillWin = rng.Float64() < WinChance(lossStreak)
	return s, nil
}

// WinChance is the probability that an early cash-out pays.
func WinChance(lossStreak int) float64 {
	return game.PityChance(lossStreak, winChanceBase, winChancePerLoss, winChanceCeiling)
}

// IsBomb reports whether a cell holds a bomb.
func (s *Session) IsBomb(c Cell) bool {
	return s.bombs[c.Row][c.Col]
}

// IsRevealed reports whether a cell has been opened.
func (s *Session) IsRevealed(c Cell) bool {
	return s.revealed[c.Row][c.Col]
}

// Coefficient is the multiplier a win would pay right now.
func (s *Session) Coefficient() decimal.Decimal {
	return Coefficient(s.BombCount, s.Found)
}

// Outcome describes what a transition did.
type Outcome struct {
	Changed bool
	State   State
	Payout  int64
	AutoWin bool
}

// Result is the outcome of a finished session, for settling it again
// after a failed payout.
func (s *Session) Result() Outcome {
	return s.outcome(s.State != InProgress)
}

func (s *Session) outcome(changed bool) Outcome {
	return Outcome{Changed: changed, State: s.State, Payout: s.Payout, AutoWin: s.AutoWin}
}

func (s *Session) check(requester model.AccountKey) error {
	if requester != s.Owner {
		return ErrNotOwner
	}
	if s.State != InProgress {
		return ErrSessionOver
	}
	return nil
}

// Reveal opens a cell. Revealing an already open cell changes nothing.
func (s *Session) Reveal(requester model.AccountKey, c Cell, now time.Time) (Outcome, error) {
	if err := s.check(requester); err != nil {
		return s.outcome(false), err
	}
	if c.Row < 0 || c.Row >= Size || c.Col < 0 || c.Col >= Size {
		return s.outcome(false), ErrInvalidCell
	}
	if s.revealed[c.Row][c.Col] {
		return s.outcome(false), nil
	}

	s.LastSeen = now
	s.revealed[c.Row][c.Col] = true

	if s.bombs[c.Row][c.Col] {
		s.lose(c)
		return s.outcome(true), nil
	}

	s.Found++
	if s.Found == s.CrystalsTotal {
		s.win(true)
	}
	return s.outcome(true), nil
}

// CashOut ends the session on the player's request. With the board cleared
// it always pays. Otherwise the outcome drawn at start decides: a losing
// draw detonates a random hidden bomb.
func (s *Session) CashOut(rng game.RNG, requester model.AccountKey, now time.Time) (Outcome, error) {
	if err := s.check(requester); err != nil {
		return s.outcome(false), err
	}
	s.LastSeen = now

	if s.Found == s.CrystalsTotal {
		s.win(true)
		return s.outcome(true), nil
	}
	if !s.WillWin {
		hidden := s.hiddenBombs()
		s.lose(hidden[rng.Intn(len(hidden))])
		return s.outcome(true), nil
	}

	s.win(false)
	return s.outcome(true), nil
}

func (s *Session) hiddenBombs() []Cell {
	var cells []Cell
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if s.bombs[r][c] && !s.revealed[r][c] {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

func (s *Session) lose(exploded Cell) {
	s.State = Lost
	s.Exploded = &exploded
	s.revealAll()
}

func (s *Session) win(auto bool) {
	s.State = Won
	s.AutoWin = auto
	s.Payout = game.Payout(s.Bet, s.Coefficient())
	s.revealAll()
}

func (s *Session) revealAll() {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			s.revealed[r][c] = true
		}
	}
}
