// Package slot implements a 5-reel, 3-row slot machine with seven paylines,
// wild substitution and a loss-streak pity mechanic.
package slot

import (
	"sort"

	"github.com/shopspring/decimal"

	"discord-economy-bot/internal/game"
)

const (
	Rows  = 3
	Reels = 5
)

// Symbols.
const (
	Wild       = "👑"
	Scatter    = "⭐"
	Diamond    = "💎"
	Seven      = "7️⃣"
	Bell       = "🔔"
	Watermelon = "🍉"
	Grapes     = "🍇"
	Lemon      = "🍋"
	Cherry     = "🍒"
	Apple      = "🍎"
	Empty      = "⬛"
)

var (
	highSymbols = []string{Diamond, Seven}
	midSymbols  = []string{Bell, Watermelon, Grapes}
	lowSymbols  = []string{Lemon, Cherry, Apple}
)

// Paylines are row indices per reel, evaluated left to right.
var Paylines = [][Reels]int{
	{1, 1, 1, 1, 1},
	{0, 0, 0, 0, 0},
	{2, 2, 2, 2, 2},
	{0, 1, 2, 1, 0},
	{2, 1, 0, 1, 2},
	{0, 0, 1, 2, 2},
	{2, 2, 1, 0, 0},
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Paytable holds the bet multiplier per symbol for run lengths 1..5.
var Paytable = map[string][Reels]decimal.Decimal{
	Wild:       {d("0"), d("0"), d("5"), d("20"), d("100")},
	Scatter:    {d("0"), d("0"), d("10"), d("50"), d("200")},
	Diamond:    {d("0"), d("0"), d("4"), d("15"), d("50")},
	Seven:      {d("0"), d("0"), d("3"), d("10"), d("40")},
	Bell:       {d("0"), d("0"), d("3"), d("8"), d("30")},
	Watermelon: {d("0"), d("0"), d("2"), d("5"), d("20")},
	Grapes:     {d("0"), d("0"), d("1"), d("4"), d("15")},
	Lemon:      {d("0"), d("0"), d("1"), d("2.5"), d("10")},
	Cherry:     {d("0"), d("0"), d("1"), d("2"), d("8")},
	Apple:      {d("0"), d("0"), d("1"), d("1.5"), d("5")},
}

// Pity mechanic: after at least pityMinStreak losses a spin is forced to win
// with probability min(pityCeiling, streak × pityPerLoss).
const (
	pityMinStreak = 2
	pityPerLoss   = 0.07
	pityCeiling   = 0.70
)

// Grid is indexed [row][reel].
type Grid [Rows][Reels]string

// Cell is a grid coordinate.
type Cell struct {
	Row  int
	Reel int
}

// SpinResult is the outcome of one spin.
type SpinResult struct {
	Grid         Grid
	TotalWin     int64
	WinningCells []Cell
	Forced       bool
	LossStreak   int
}

// Won reports whether the spin paid anything.
func (r *SpinResult) Won() bool {
	return r.TotalWin > 0
}

// ReelStrip returns the unshuffled 22-symbol multiset of one reel.
func ReelStrip() []string {
	strip := []string{Wild, Wild, Scatter}
	for _, s := range highSymbols {
		strip = append(strip, s, s, s)
	}
	for _, s := range midSymbols {
		for i := 0; i < 6; i++ {
			strip = append(strip, s)
		}
	}
	for _, s := range lowSymbols {
		for i := 0; i < 10; i++ {
			strip = append(strip, s)
		}
	}
	return strip
}

// Engine holds five reel strips shuffled once at construction.
type Engine struct {
	rng    game.RNG
	strips [Reels][]string
}

// NewEngine builds an engine and shuffles its reels with rng.
func NewEngine(rng game.RNG) *Engine {
	e := &Engine{rng: rng}
	for reel := range e.strips {
		base := ReelStrip()
		strip := make([]string, len(base))
		for i, j := range game.Perm(rng, len(base)) {
			strip[i] = base[j]
		}
		e.strips[reel] = strip
	}
	return e
}

// Strip returns a copy of one reel strip.
func (e *Engine) Strip(reel int) []string {
	return append([]string(nil), e.strips[reel]...)
}

// Spin plays one round for bet given the player's current loss streak.
func (e *Engine) Spin(bet int64, lossStreak int) *SpinResult {
	var (
		grid   Grid
		forced bool
	)
	if lossStreak >= pityMinStreak && e.rng.Float64() < game.PityChance(lossStreak, 0, pityPerLoss, pityCeiling) {
		grid = e.forcedWinGrid()
		forced = true
	} else {
		grid = e.randomGrid()
	}

	win, cells := Evaluate(grid, bet)
	streak := lossStreak + 1
	if win > 0 {
		streak = 0
	}

	return &SpinResult{
		Grid:         grid,
		TotalWin:     win,
		WinningCells: cells,
		Forced:       forced,
		LossStreak:   streak,
	}
}

func (e *Engine) randomGrid() Grid {
	var grid Grid
	for reel := 0; reel < Reels; reel++ {
		strip := e.strips[reel]
		stop := e.rng.Intn(len(strip))
		for row := 0; row < Rows; row++ {
			grid[row][reel] = strip[(stop+row)%len(strip)]
		}
	}
	return grid
}

// forcedWinGrid fills the grid with low and mid symbols and plants a run of
// 3 or 4 identical symbols at the start of a random payline.
func (e *Engine) forcedWinGrid() Grid {
	pool := append(append([]string(nil), lowSymbols...), midSymbols...)

	var grid Grid
	for row := 0; row < Rows; row++ {
		for reel := 0; reel < Reels; reel++ {
			grid[row][reel] = pool[e.rng.Intn(len(pool))]
		}
	}

	line := Paylines[e.rng.Intn(len(Paylines))]
	sym := pool[e.rng.Intn(len(pool))]
	run := 3 + e.rng.Intn(2)
	for reel := 0; reel < run; reel++ {
		grid[line[reel]][reel] = sym
	}
	return grid
}

// Evaluate sums the wins of all paylines and collects the cells they cover.
func Evaluate(grid Grid, bet int64) (int64, []Cell) {
	var total int64
	covered := make(map[Cell]struct{})

	for _, line := range Paylines {
		anchor, count := lineRun(grid, line)
		if count < 3 {
			continue
		}
		total += game.Payout(bet, Paytable[anchor][count-1])
		for reel := 0; reel < count; reel++ {
			covered[Cell{Row: line[reel], Reel: reel}] = struct{}{}
		}
	}

	cells := make([]Cell, 0, len(covered))
	for c := range covered {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Reel < cells[j].Reel
	})
	return total, cells
}

// lineRun walks a payline from the left. Wilds match anything; the first
// non-wild symbol becomes the anchor the rest of the run must equal.
func lineRun(grid Grid, line [Reels]int) (string, int) {
	anchor := grid[line[0]][0]
	count := 1
	for reel := 1; reel < Reels; reel++ {
		sym := grid[line[reel]][reel]
		if sym != anchor && sym != Wild && anchor != Wild {
			break
		}
		if anchor == Wild && sym != Wild {
			anchor = sym
		}
		count++
	}
	return anchor, count
}
