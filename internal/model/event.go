package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind is the market type of a betting event.
type EventKind string

const (
	EventKindMatch EventKind = "match"
	EventKindMVP   EventKind = "mvp"
	EventKindTotal EventKind = "total"
)

// EventOption is one outcome bettors can pick.
type EventOption struct {
	Name  string          `json:"name"`
	Coeff decimal.Decimal `json:"coeff"`
}

// Event is stored whole as a JSON document in saved_events.data.
// The option key set never changes after creation; only Locked does.
type Event struct {
	CommunityID int64                  `json:"-"`
	ID          int64                  `json:"-"`
	Title       string                 `json:"title"`
	Kind        EventKind              `json:"type"`
	Options     map[string]EventOption `json:"options"`
	Rosters     map[string]string      `json:"rosters,omitempty"`
	Locked      bool                   `json:"locked"`
	CreatedAt   time.Time              `json:"-"`
}

// OptionKeys returns the option keys in stable order.
func (e *Event) OptionKeys() []string {
	keys := make([]string, 0, len(e.Options))
	for k := range e.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bet is a stake on one option of an event.
type Bet struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	CommunityID int64           `db:"community_id"`
	EventID     int64           `db:"event_id"`
	Choice      string          `db:"choice"`
	Amount      int64           `db:"amount"`
	Coeff       decimal.Decimal `db:"coeff"`
	CreatedAt   time.Time       `db:"created_at"`
}

// OptionPool aggregates the stakes placed on one option.
type OptionPool struct {
	Choice string `db:"choice"`
	Bets   int    `db:"bets"`
	Total  int64  `db:"total"`
}
