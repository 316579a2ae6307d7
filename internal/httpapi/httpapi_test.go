package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arjunkv/auction-backend/internal/store"
)

type fakeDirectory struct {
	teams   []store.TeamSummary
	players []store.Player
	squads  map[int64][]store.Player
	cfg     store.AuctionConfig
	err     error
}

func (f *fakeDirectory) ListTeams(context.Context) ([]store.TeamSummary, error) {
	return f.teams, f.err
}

func (f *fakeDirectory) ListPlayers(context.Context) ([]store.Player, error) {
	return f.players, f.err
}

func (f *fakeDirectory) TeamSquad(_ context.Context, teamID int64) ([]store.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.squads[teamID], nil
}

func (f *fakeDirectory) Config(context.Context) (store.AuctionConfig, error) {
	return f.cfg, f.err
}

func newTestRouter(dir store.Directory) http.Handler {
	return SetupRoutes(nil, dir, zap.NewNop())
}

func TestListTeams(t *testing.T) {
	dir := &fakeDirectory{
		teams: []store.TeamSummary{
			{Team: store.Team{ID: 1, Name: "Lions", Budget: 250000}, PlayerCount: 3, TargetSize: 11},
			{Team: store.Team{ID: 2, Name: "Tigers", Budget: 300000}, PlayerCount: 0, TargetSize: 11},
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(dir).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got []store.TeamSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Lions", got[0].Name)
	assert.Equal(t, 3, got[0].PlayerCount)
}

func TestTeamSquad(t *testing.T) {
	dir := &fakeDirectory{
		squads: map[int64][]store.Player{
			7: {{ID: 42, Name: "Arul", Status: "sold"}},
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(dir).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/7/squad", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []store.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].ID)
}

func TestTeamSquadRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/lions/squad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPlayers(t *testing.T) {
	dir := &fakeDirectory{
		players: []store.Player{
			{ID: 1, Name: "Arul", Status: "unsold", BasePrice: 10000},
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(dir).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []store.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "unsold", got[0].Status)
}

func TestGetConfig(t *testing.T) {
	dir := &fakeDirectory{cfg: store.DefaultConfig()}

	rec := httptest.NewRecorder()
	newTestRouter(dir).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got store.AuctionConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(10000), got.BasePrice)
	assert.Equal(t, 11, got.SquadSize)
}

func TestStoreErrorsBecome500(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	router := newTestRouter(dir)

	for _, path := range []string{"/api/teams", "/api/players", "/api/teams/1/squad", "/api/config"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDirectory{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
