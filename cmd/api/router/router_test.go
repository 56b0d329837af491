package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/cmd/api/clients/rosterclient"
	"roast-board/cmd/api/dto"
	"roast-board/cmd/api/services"
	"roast-board/config"
	"roast-board/eventbus"
	"roast-board/generator"
	"roast-board/repositories"
	"roast-board/store"
	"roast-board/sweeper"
)

type stubRoster struct{}

func (stubRoster) Teams(context.Context, string) ([]rosterclient.Team, error) {
	return []rosterclient.Team{{ID: "12", Name: "Kansas City Chiefs", Abbreviation: "KC", Sport: "nfl"}}, nil
}

func (stubRoster) Roster(context.Context, string, string) ([]rosterclient.Player, error) {
	return []rosterclient.Player{{ID: "3139477", Name: "Patrick Mahomes", Position: "QB", JerseyNumber: 15, TeamID: "12"}}, nil
}

func (stubRoster) PlayerDetails(context.Context, string, string) (rosterclient.PlayerDetails, error) {
	return rosterclient.PlayerDetails{Stats: map[string]any{}}, nil
}

type stubNews struct{}

func (stubNews) Headlines(context.Context, string) ([]string, error) { return nil, nil }

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, generator.Subject) (*generator.Result, error) {
	return &generator.Result{Candidates: []string{"you scramble like the pocket owes you money"}}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}
	t.Cleanup(func() { _ = pool.Close() })
	st := store.NewRedisStore(pool)

	repo := repositories.NewRoastRepository(st, repositories.RoastRepositoryOptions{GlobalPoolLimit: 100})
	catalog := services.NewCatalogService(st, stubRoster{}, stubNews{}, config.RetentionConfig{
		TeamsTTL:  time.Hour,
		RosterTTL: time.Hour,
		PlayerTTL: time.Hour,
		NewsTTL:   time.Hour,
	})
	roasts := services.NewRoastService(repo, catalog, stubGenerator{}, nil, eventbus.NoopBus{}, sweeper.New(st), services.RoastServiceOptions{})

	return New(Deps{Store: st, Roasts: roasts, Catalog: catalog, TraceRequests: true}), mr
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r, mr := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Close()
	w = doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode[dto.HealthResponseDTO](t, w).Store)
}

func TestCatalogRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	teams := decode[dto.TeamListDTO](t, w)
	assert.Equal(t, "nfl", teams.Sport)
	require.Len(t, teams.Teams, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/players/12?sport=nfl", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.PlayerListDTO](t, w).Players, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/teams?sport=cricket", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoastLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/roasts/generate", dto.GenerateRoastRequest{PlayerID: "3139477", TeamID: "12", ClientID: "c1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	generated := decode[dto.GenerateRoastResponse](t, w)
	assert.True(t, generated.Created)
	assert.Equal(t, "Kansas City Chiefs", generated.Roast.Player.Team)
	id := generated.Roast.ID

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[dto.RoastDTO](t, w).ID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/vote", dto.VoteRequest{RoastID: id, VoteType: "upvote", ClientID: "c2"})
	require.Equal(t, http.StatusOK, w.Code)
	vote := decode[dto.VoteResponse](t, w)
	assert.Equal(t, int64(1), vote.Upvotes)
	assert.Equal(t, int64(1), vote.Score)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/vote", dto.VoteRequest{RoastID: id, VoteType: "down", ClientID: "c2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/player?player_id=3139477&client_id=c1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.RoastListDTO](t, w).Count)

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/top?player_id=3139477", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[dto.RoastListDTO](t, w)
	require.Equal(t, 1, top.Count)
	assert.Equal(t, int64(1), top.Roasts[0].Upvotes)

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/top", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.RoastListDTO](t, w).Count)
}

func TestGenerateWithoutClientReturnsExisting(t *testing.T) {
	r, _ := newTestRouter(t)
	req := dto.GenerateRoastRequest{PlayerID: "3139477", TeamID: "12"}

	w := doJSON(t, r, http.MethodPost, "/api/v1/roasts/generate", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/generate", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.GenerateRoastResponse](t, w).Created)
}

func TestRoastErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/roasts/generate", map[string]string{"player_id": "3139477"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/generate", dto.GenerateRoastRequest{PlayerID: "nobody", TeamID: "12", ClientID: "c1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/3139477-2025-11-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/vote", dto.VoteRequest{RoastID: "3139477-2025-11-missing", VoteType: "up"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/roasts/vote", dto.VoteRequest{RoastID: "x", VoteType: "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/roasts/player", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanup(t *testing.T) {
	r, mr := newTestRouter(t)
	mr.Set("record:2020-01:P1:s1", "{}")
	mr.Set("cache:teams:nfl", "[]")

	w := doJSON(t, r, http.MethodPost, "/api/v1/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[dto.CleanupResponse](t, w)
	assert.Equal(t, 1, res.Deleted)
	assert.False(t, mr.Exists("record:2020-01:P1:s1"))
	assert.True(t, mr.Exists("cache:teams:nfl"))
}
