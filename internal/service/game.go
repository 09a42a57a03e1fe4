package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/game"
	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/pkg/db"
	"discord-economy-bot/internal/pkg/lock"
	"discord-economy-bot/internal/repository"
)

// DefaultLockTimeout bounds how long a player's second action waits for
// the first one to finish.
const DefaultLockTimeout = 5 * time.Second

// GameConfig configures GameService.
type GameConfig struct {
	BombsMinBet      int64
	BombsIdleTimeout time.Duration
	LockTimeout      time.Duration
}

// GameService runs the chance games against the ledger: the stake is taken
// up front, the gross payout is credited on a win and the loss streak is
// updated after every finished round.
type GameService struct {
	runner    db.TxRunner
	ledger    *repository.LedgerRepository
	registry  *game.Registry
	retention *game.RetentionTracker
	locks     *lock.AccountLock
	sessions  *bombs.Store
	rng       game.RNG
	cfg       GameConfig
	now       func() time.Time
}

// NewGameService creates a new GameService instance.
func NewGameService(
	runner db.TxRunner,
	ledger *repository.LedgerRepository,
	registry *game.Registry,
	retention *game.RetentionTracker,
	locks *lock.AccountLock,
	sessions *bombs.Store,
	rng game.RNG,
	cfg GameConfig,
) *GameService {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.BombsMinBet <= 0 {
		cfg.BombsMinBet = DefaultMinStake
	}
	if cfg.BombsIdleTimeout <= 0 {
		cfg.BombsIdleTimeout = 10 * time.Minute
	}
	return &GameService{
		runner:    runner,
		ledger:    ledger,
		registry:  registry,
		retention: retention,
		locks:     locks,
		sessions:  sessions,
		rng:       rng,
		cfg:       cfg,
		now:       time.Now,
	}
}

// PlayResult is the outcome of one round of a one-shot game.
type PlayResult struct {
	Game       game.Game
	Bet        int64
	Result     *game.GameResult
	Balance    int64
	LossStreak int
}

// Net is the balance change of the round.
func (r *PlayResult) Net() int64 {
	return r.Result.Payout - r.Bet
}

// Play runs one round of the game registered under command.
func (s *GameService) Play(ctx context.Context, key model.AccountKey, command string, bet int64, params map[string]any) (*PlayResult, error) {
	g, ok := s.registry.Get(command)
	if !ok {
		return nil, ErrGameNotFound
	}
	if err := g.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	stakeReason, payoutReason := reasons(command)
	res := &PlayResult{Game: g, Bet: bet}

	err := s.locks.WithLockContext(ctx, key, s.cfg.LockTimeout, func() error {
		// Stake and payout commit together; a failed round leaves the
		// balance untouched.
		return db.InTx(ctx, s.runner, func(tx pgx.Tx) error {
			ledger := s.ledger.WithTx(tx)
			balance, err := ledger.Withdraw(ctx, key, bet)
			if err != nil {
				return err
			}

			result, err := g.Play(ctx, game.Round{Bet: bet, LossStreak: s.retention.Streak(key), Params: params})
			if err != nil {
				return err
			}

			if result.Payout > 0 {
				if balance, err = ledger.AddBalance(ctx, key, result.Payout); err != nil {
					return fmt.Errorf("failed to credit payout: %w", err)
				}
			}

			res.Result = result
			res.Balance = balance
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	audit(key, -bet, res.Balance-res.Result.Payout, stakeReason)
	if res.Result.Payout > 0 {
		audit(key, res.Result.Payout, res.Balance, payoutReason)
	}
	res.LossStreak = s.retention.Record(key, res.Result.Won)

	log.Debug().
		Str("game", command).
		Int64("user_id", key.UserID).
		Int64("bet", bet).
		Int64("payout", res.Result.Payout).
		Int("loss_streak", res.LossStreak).
		Msg("Game played")

	return res, nil
}

func reasons(command string) (stake, payout string) {
	switch command {
	case "slots":
		return model.ReasonSlotStake, model.ReasonSlotPayout
	case "roulette":
		return model.ReasonRouletteStake, model.ReasonRoulettePayout
	default:
		return command + "_stake", command + "_payout"
	}
}

// Games lists the registered one-shot games.
func (s *GameService) Games() []game.Game {
	return s.registry.List()
}

// BombsMinBet returns the smallest accepted bombs stake.
func (s *GameService) BombsMinBet() int64 {
	return s.cfg.BombsMinBet
}

// StartBombs takes the stake and opens a new session.
func (s *GameService) StartBombs(ctx context.Context, key model.AccountKey, bet int64, bombCount int) (*bombs.Session, int64, error) {
	if err := game.CheckBet(bet, s.cfg.BombsMinBet); err != nil {
		return nil, 0, err
	}
	if bombCount < bombs.MinBombs || bombCount > bombs.MaxBombs {
		return nil, 0, bombs.ErrInvalidBombCount
	}

	var (
		sess    *bombs.Session
		balance int64
	)
	err := s.locks.WithLockContext(ctx, key, s.cfg.LockTimeout, func() error {
		var err error
		sess, err = bombs.NewSession(s.rng, key, bet, bombCount, s.retention.Streak(key), s.now())
		if err != nil {
			return err
		}
		if balance, err = s.ledger.Withdraw(ctx, key, bet); err != nil {
			return err
		}
		audit(key, -bet, balance, model.ReasonBombsStake)
		s.sessions.Put(sess)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.Debug().
		Str("session", sess.ID.String()).
		Int64("user_id", key.UserID).
		Int64("bet", bet).
		Int("bombs", bombCount).
		Bool("will_win", sess.WillWin).
		Msg("Bombs session started")

	return sess, balance, nil
}

// BombsMove is the result of a click on a bombs board.
type BombsMove struct {
	Session *bombs.Session
	Outcome bombs.Outcome
	// Balance is set once a won session has been paid.
	Balance int64
}

// RevealBombs opens a cell on the requester's board.
func (s *GameService) RevealBombs(ctx context.Context, requester model.AccountKey, id uuid.UUID, cell bombs.Cell) (*BombsMove, error) {
	return s.moveBombs(ctx, requester, id, func(sess *bombs.Session) (bombs.Outcome, error) {
		return sess.Reveal(requester, cell, s.now())
	})
}

// CashOutBombs ends the requester's session.
func (s *GameService) CashOutBombs(ctx context.Context, requester model.AccountKey, id uuid.UUID) (*BombsMove, error) {
	return s.moveBombs(ctx, requester, id, func(sess *bombs.Session) (bombs.Outcome, error) {
		return sess.CashOut(s.rng, requester, s.now())
	})
}

func (s *GameService) moveBombs(ctx context.Context, requester model.AccountKey, id uuid.UUID, step func(*bombs.Session) (bombs.Outcome, error)) (*BombsMove, error) {
	move := &BombsMove{}
	err := s.sessions.With(id, func(sess *bombs.Session) error {
		var out bombs.Outcome
		if sess.State == bombs.InProgress {
			var err error
			if out, err = step(sess); err != nil {
				return err
			}
		} else {
			// Finished earlier but its payout failed: settle it again.
			if requester != sess.Owner {
				return bombs.ErrNotOwner
			}
			out = sess.Result()
		}
		move.Session = sess
		move.Outcome = out
		if !out.Changed || out.State == bombs.InProgress {
			return nil
		}
		return s.settleBombs(ctx, move)
	})
	if err != nil {
		return nil, err
	}
	return move, nil
}

// settleBombs pays a finished session and records its result. It runs
// before the session leaves the store, so a failed credit can be retried.
func (s *GameService) settleBombs(ctx context.Context, move *BombsMove) error {
	sess := move.Session

	if move.Outcome.State == bombs.Won {
		balance, err := s.ledger.AddBalance(ctx, sess.Owner, move.Outcome.Payout)
		if err != nil {
			log.Error().Err(err).
				Str("session", sess.ID.String()).
				Int64("user_id", sess.Owner.UserID).
				Int64("payout", move.Outcome.Payout).
				Msg("Failed to credit bombs payout")
			return fmt.Errorf("failed to credit payout: %w", err)
		}
		audit(sess.Owner, move.Outcome.Payout, balance, model.ReasonBombsPayout)
		move.Balance = balance
	}
	s.retention.Record(sess.Owner, move.Outcome.State == bombs.Won)

	log.Debug().
		Str("session", sess.ID.String()).
		Int64("user_id", sess.Owner.UserID).
		Str("state", move.Outcome.State.String()).
		Int("found", sess.Found).
		Int64("payout", move.Outcome.Payout).
		Bool("auto_win", move.Outcome.AutoWin).
		Msg("Bombs session finished")
	return nil
}

// ActiveSessions returns the number of live bombs sessions.
func (s *GameService) ActiveSessions() int {
	return s.sessions.Len()
}

// TrackedStreaks returns how many accounts carry a loss streak.
func (s *GameService) TrackedStreaks() int {
	return s.retention.Len()
}

// SweepIdleSessions discards bombs sessions idle past the timeout. Their
// stakes are forfeit; loss streaks are left alone.
func (s *GameService) SweepIdleSessions(_ context.Context, now time.Time) int {
	expired := s.sessions.Sweep(now, s.cfg.BombsIdleTimeout)
	for _, sess := range expired {
		log.Debug().
			Str("session", sess.ID.String()).
			Int64("user_id", sess.Owner.UserID).
			Int64("bet", sess.Bet).
			Msg("Bombs session abandoned")
	}
	return len(expired)
}

// IsSessionGone reports whether err means the bombs board no longer exists.
func IsSessionGone(err error) bool {
	return errors.Is(err, bombs.ErrSessionNotFound) || errors.Is(err, bombs.ErrSessionOver)
}
