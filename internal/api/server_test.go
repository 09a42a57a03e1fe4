package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-economy-bot/internal/model"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }
func (fakeDB) Stat() *pgxpool.Stat { return nil }

type fakeGames struct{}

func (fakeGames) ActiveSessions() int { return 3 }
func (fakeGames) TrackedStreaks() int { return 5 }

type fakeRanking struct {
	communityID int64
	err         error
}

func (f *fakeRanking) Top(_ context.Context, communityID int64) ([]*model.Account, error) {
	f.communityID = communityID
	if f.err != nil {
		return nil, f.err
	}
	return []*model.Account{{UserID: 123456789012345678, CommunityID: communityID, Balance: 900}}, nil
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(fakeDB{}, fakeGames{}, &fakeRanking{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"database":"ok"}`, rec.Body.String())

	rec = get(t, New(fakeDB{err: errors.New("down")}, fakeGames{}, &fakeRanking{}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	rec := get(t, New(fakeDB{}, fakeGames{}, &fakeRanking{}), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.BombsSessions)
	assert.Equal(t, 5, body.TrackedStreaks)
	assert.Nil(t, body.Pool)
}

func TestTop(t *testing.T) {
	ranking := &fakeRanking{}
	s := New(fakeDB{}, fakeGames{}, ranking)

	rec := get(t, s, "/communities/42/top")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), ranking.communityID)
	assert.JSONEq(t, `[{"user_id":"123456789012345678","balance":900}]`, rec.Body.String())

	rec = get(t, s, "/communities/abc/top")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ranking.err = errors.New("db down")
	rec = get(t, s, "/communities/42/top")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
