// Package api serves the bot's operational HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"discord-economy-bot/internal/model"
)

// Database is the part of the pool the endpoints need.
type Database interface {
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
}

// GameStats exposes the in-memory game state.
type GameStats interface {
	ActiveSessions() int
	TrackedStreaks() int
}

// Leaderboard returns a community's richest accounts.
type Leaderboard interface {
	Top(ctx context.Context, communityID int64) ([]*model.Account, error)
}

// Server is the ops HTTP server.
type Server struct {
	db      Database
	games   GameStats
	ranking Leaderboard
	mux     *chi.Mux
	started time.Time
}

// New creates a new Server.
func New(db Database, games GameStats, ranking Leaderboard) *Server {
	s := &Server{
		db:      db,
		games:   games,
		ranking: ranking,
		mux:     chi.NewRouter(),
		started: time.Now(),
	}
	s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/communities/{communityID}/top", s.handleTop)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "database": "ok"})
}

type statsResponse struct {
	UptimeSeconds  int64      `json:"uptime_seconds"`
	BombsSessions  int        `json:"bombs_sessions"`
	TrackedStreaks int        `json:"tracked_loss_streaks"`
	Pool           *poolStats `json:"pool,omitempty"`
}

type poolStats struct {
	Total    int32 `json:"total"`
	Idle     int32 `json:"idle"`
	Acquired int32 `json:"acquired"`
	Max      int32 `json:"max"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		BombsSessions:  s.games.ActiveSessions(),
		TrackedStreaks: s.games.TrackedStreaks(),
	}
	if st := s.db.Stat(); st != nil {
		resp.Pool = &poolStats{
			Total:    st.TotalConns(),
			Idle:     st.IdleConns(),
			Acquired: st.AcquiredConns(),
			Max:      st.MaxConns(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type leaderboardEntry struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	communityID, err := strconv.ParseInt(chi.URLParam(r, "communityID"), 10, 64)
	if err != nil || communityID <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid community id"))
		return
	}

	accounts, err := s.ranking.Top(r.Context(), communityID)
	if err != nil {
		log.Error().Err(err).Int64("community_id", communityID).Msg("Failed to load leaderboard")
		writeError(w, http.StatusInternalServerError, errors.New("failed to load leaderboard"))
		return
	}

	entries := make([]leaderboardEntry, 0, len(accounts))
	for _, a := range accounts {
		// Snowflakes exceed the float precision of JSON consumers.
		entries = append(entries, leaderboardEntry{UserID: strconv.FormatInt(a.UserID, 10), Balance: a.Balance})
	}
	writeJSON(w, http.StatusOK, entries)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
