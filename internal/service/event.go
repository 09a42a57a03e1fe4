package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/repository"
)

// Option keys of total events.
const (
	TotalOver  = "over"
	TotalUnder = "under"
)

// DefaultMinStake is the smallest accepted event bet.
const DefaultMinStake = 10

var (
	minCoefficient = decimal.NewFromInt(1)
	maxCoefficient = decimal.NewFromInt(1_000_000)
)

// Notifier delivers settlement notices to winners.
type Notifier interface {
	NotifyPayout(ctx context.Context, userID int64, ev *model.Event, payout int64) error
}

// EventService runs the betting book: events, stakes and settlement.
type EventService struct {
	runner   db.TxRunner
	events   *repository.EventRepository
	bets     *repository.BetRepository
	ledger   *repository.LedgerRepository
	notifier Notifier
	minStake int64
}

// NewEventService creates a new EventService instance. notifier may be nil.
func NewEventService(
	runner db.TxRunner,
	events *repository.EventRepository,
	bets *repository.BetRepository,
	ledger *repository.LedgerRepository,
	notifier Notifier,
	minStake int64,
) *EventService {
	if minStake <= 0 {
		minStake = DefaultMinStake
	}
	return &EventService{
		runner:   runner,
		events:   events,
		bets:     bets,
		ledger:   ledger,
		notifier: notifier,
		minStake: minStake,
	}
}

// MinStake returns the smallest accepted bet.
func (s *EventService) MinStake() int64 {
	return s.minStake
}

// MatchInput describes a two-team match.
type MatchInput struct {
	Team1   string
	Roster1 string
	Coeff1  decimal.Decimal
	Team2   string
	Roster2 string
	Coeff2  decimal.Decimal
}

// CreateMatch opens a match event with one option per team.
func (s *EventService) CreateMatch(ctx context.Context, communityID int64, in MatchInput) (*model.Event, error) {
	team1, team2 := strings.TrimSpace(in.Team1), strings.TrimSpace(in.Team2)
	if team1 == "" || team2 == "" {
		return nil, ErrEmptyTitle
	}
	if strings.EqualFold(team1, team2) {
		return nil, ErrSameTeams
	}
	if err := checkCoefficients(in.Coeff1, in.Coeff2); err != nil {
		return nil, err
	}

	ev := &model.Event{
		CommunityID: communityID,
		Title:       fmt.Sprintf("⚔️ %s vs %s", team1, team2),
		Kind:        model.EventKindMatch,
		Options: map[string]model.EventOption{
			OptionKey(team1): {Name: team1, Coeff: in.Coeff1},
			OptionKey(team2): {Name: team2, Coeff: in.Coeff2},
		},
		Rosters: map[string]string{
			team1: strings.TrimSpace(in.Roster1),
			team2: strings.TrimSpace(in.Roster2),
		},
	}
	return ev, s.create(ctx, ev)
}

// CreateMVP opens an MVP event. data lists the candidates as
// "Name:coeff, Name:coeff".
func (s *EventService) CreateMVP(ctx context.Context, communityID int64, title, data string) (*model.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	options, err := ParseOptionList(data)
	if err != nil {
		return nil, err
	}

	ev := &model.Event{
		CommunityID: communityID,
		Title:       "⭐ " + title,
		Kind:        model.EventKindMVP,
		Options:     options,
	}
	return ev, s.create(ctx, ev)
}

// CreateTotal opens an over/under event.
func (s *EventService) CreateTotal(ctx context.Context, communityID int64, description string, over, under decimal.Decimal) (*model.Event, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyTitle
	}
	if err := checkCoefficients(over, under); err != nil {
		return nil, err
	}

	ev := &model.Event{
		CommunityID: communityID,
		Title:       description,
		Kind:        model.EventKindTotal,
		Options: map[string]model.EventOption{
			TotalOver:  {Name: "Over", Coeff: over},
			TotalUnder: {Name: "Under", Coeff: under},
		},
	}
	return ev, s.create(ctx, ev)
}

func (s *EventService) create(ctx context.Context, ev *model.Event) error {
	if err := s.events.Create(ctx, ev); err != nil {
		return err
	}
	log.Info().
		Int64("community_id", ev.CommunityID).
		Int64("event_id", ev.ID).
		Str("type", string(ev.Kind)).
		Str("title", ev.Title).
		Msg("Event created")
	return nil
}

// OptionKey normalizes an option name or a bettor's pick.
func OptionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseOptionList parses "Name:coeff, Name:coeff". Later duplicates of a
// name replace earlier ones; at least two distinct options are required.
func ParseOptionList(data string) (map[string]model.EventOption, error) {
	options := make(map[string]model.EventOption)
	for _, part := range strings.Split(data, ",") {
		name, coeff, ok := strings.Cut(part, ":")
		if !ok {
			return nil, ErrInvalidOptionList
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrInvalidOptionList
		}
		c, err := decimal.NewFromString(strings.TrimSpace(coeff))
		if err != nil {
			return nil, ErrInvalidOptionList
		}
		if err := checkCoefficients(c); err != nil {
			return nil, err
		}
		options[OptionKey(name)] = model.EventOption{Name: name, Coeff: c}
	}
	if len(options) < 2 {
		return nil, ErrNotEnoughOptions
	}
	return options, nil
}

// ParseCoefficient reads a coefficient typed by an admin.
func ParseCoefficient(s string) (decimal.Decimal, error) {
	c, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidCoefficient
	}
	if err := checkCoefficients(c); err != nil {
		return decimal.Zero, err
	}
	return c, nil
}

func checkCoefficients(coeffs ...decimal.Decimal) error {
	for _, c := range coeffs {
		if c.LessThan(minCoefficient) || c.GreaterThanOrEqual(maxCoefficient) {
			return ErrInvalidCoefficient
		}
	}
	return nil
}

// Lock closes betting on an event.
func (s *EventService) Lock(ctx context.Context, communityID, eventID int64) error {
	return s.events.SetLocked(ctx, communityID, eventID, true)
}

// Unlock reopens betting on an event.
func (s *EventService) Unlock(ctx context.Context, communityID, eventID int64) error {
	return s.events.SetLocked(ctx, communityID, eventID, false)
}

// List returns the community's open and locked events.
func (s *EventService) List(ctx context.Context, communityID int64) ([]*model.Event, error) {
	return s.events.List(ctx, communityID)
}

// EventDetails is an event together with the stakes placed on it.
type EventDetails struct {
	Event *model.Event
	Pools map[string]*model.OptionPool
}

// Get returns one event with its per-option stake pools.
func (s *EventService) Get(ctx context.Context, communityID, eventID int64) (*EventDetails, error) {
	ev, err := s.events.Get(ctx, communityID, eventID)
	if err != nil {
		return nil, err
	}
	pools, err := s.bets.Pools(ctx, communityID, eventID)
	if err != nil {
		return nil, err
	}

	d := &EventDetails{Event: ev, Pools: make(map[string]*model.OptionPool, len(pools))}
	for _, p := range pools {
		d.Pools[p.Choice] = p
	}
	return d, nil
}

// BetResult is a placed bet and the bettor's balance afterwards.
type BetResult struct {
	Bet     *model.Bet
	Option  model.EventOption
	Balance int64
}

// PlaceBet stakes amount on an option. The coefficient is fixed at
// placement time. The bet row and the debit commit together, and the
// event row is share-locked so a concurrent lock or settlement waits.
func (s *EventService) PlaceBet(ctx context.Context, key model.AccountKey, eventID int64, choice string, amount int64) (*BetResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > game.MaxBet {
		return nil, ErrAmountTooLarge
	}

	var res BetResult
	err := db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
		ev, err := s.events.WithTx(tx).GetForShare(ctx, key.CommunityID, eventID)
		if err != nil {
			return err
		}
		if ev.Locked {
			return ErrEventLocked
		}

		k := OptionKey(choice)
		opt, ok := ev.Options[k]
		if !ok {
			return &OptionError{Choice: choice, Valid: ev.OptionKeys()}
		}
		if amount < s.minStake {
			return ErrBetTooLow
		}

		bet := &model.Bet{
			UserID:      key.UserID,
			CommunityID: key.CommunityID,
			EventID:     eventID,
			Choice:      k,
			Amount:      amount,
			Coeff:       opt.Coeff,
		}
		if err := s.bets.WithTx(tx).Create(ctx, bet); err != nil {
			return err
		}
		res.Balance, err = s.ledger.WithTx(tx).Withdraw(ctx, key, amount)
		if err != nil {
			return err
		}
		res.Bet = bet
		res.Option = opt
		return nil
	})
	if err != nil {
		if IsUserError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to place bet: %w", err)
	}

	audit(key, -amount, res.Balance, model.ReasonEventBet)
	return &res, nil
}

// Payout is one winning bet paid during settlement.
type Payout struct {
	UserID  int64
	Amount  int64
	Stake   int64
	Balance int64
}

// SettleResult summarizes a settlement.
type SettleResult struct {
	Event   *model.Event
	Winner  model.EventOption
	Payouts []Payout
	// Bets is the total number of bets the event held.
	Bets int
}

// Winners is the number of winning bets paid.
func (r *SettleResult) Winners() int {
	return len(r.Payouts)
}

// Settle pays every bet on the winning option at its own coefficient and
// deletes the event with all its bets, in one transaction. The event row
// is locked first, so a second settler waits and then finds nothing.
// Winners are notified after commit; notification failures are ignored.
func (s *EventService) Settle(ctx context.Context, communityID, eventID int64, winner string) (*SettleResult, error) {
	var res SettleResult
	err := db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
		events := s.events.WithTx(tx)

		ev, err := events.GetForUpdate(ctx, communityID, eventID)
		if err != nil {
			return err
		}
		k := OptionKey(winner)
		opt, ok := ev.Options[k]
		if !ok {
			return &OptionError{Choice: winner, Valid: ev.OptionKeys()}
		}
		res.Event = ev
		res.Winner = opt

		bets, err := s.bets.WithTx(tx).DeleteByEvent(ctx, communityID, eventID)
		if err != nil {
			return err
		}
		res.Bets = len(bets)

		ledger := s.ledger.WithTx(tx)
		for _, b := range bets {
			if OptionKey(b.Choice) != k {
				continue
			}
			amount := game.Payout(b.Amount, b.Coeff)
			balance, err := ledger.AddBalance(ctx, model.AccountKey{UserID: b.UserID, CommunityID: communityID}, amount)
			if err != nil {
				return err
			}
			res.Payouts = append(res.Payouts, Payout{UserID: b.UserID, Amount: amount, Stake: b.Amount, Balance: balance})
		}

		deleted, err := events.Delete(ctx, communityID, eventID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		if IsUserError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to settle event: %w", err)
	}

	for _, p := range res.Payouts {
		audit(model.AccountKey{UserID: p.UserID, CommunityID: communityID}, p.Amount, p.Balance, model.ReasonEventPayout)
	}
	log.Info().
		Int64("community_id", communityID).
		Int64("event_id", eventID).
		Str("winner", res.Winner.Name).
		Int("winners", res.Winners()).
		Int("bets", res.Bets).
		Msg("Event settled")

	s.notify(ctx, &res)
	return &res, nil
}

func (s *EventService) notify(ctx context.Context, res *SettleResult) {
	if s.notifier == nil {
		return
	}
	for _, p := range res.Payouts {
		if err := s.notifier.NotifyPayout(ctx, p.UserID, res.Event, p.Amount); err != nil {
			log.Debug().Err(err).Int64("user_id", p.UserID).Msg("Payout notification not delivered")
		}
	}
}

// IsOptionError extracts the valid option keys from an OptionError.
func IsOptionError(err error) (*OptionError, bool) {
	var oe *OptionError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}
