package rosterclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/config"
	"roast-board/models"
)

const teamsJSON = `{"sports":[{"leagues":[{"teams":[
 {"team":{"id":"1","displayName":"Atlanta Falcons","abbreviation":"ATL","logos":[{"href":"https://a.example/atl.png"}]}},
 {"team":{"id":"2","displayName":"Buffalo Bills","abbreviation":"BUF","logos":[]}}
]}]}]}`

const groupedRosterJSON = `{"athletes":[
 {"position":"offense","items":[
  {"id":"10","displayName":"Joe Example","jersey":"9","age":27,"position":{"abbreviation":"QB","name":"Quarterback"},"college":{"name":"State"}},
  {"id":"11","fullName":"No Display","jersey":"","position":{"name":"Tight End"}}
 ]},
 {"position":"defense","items":[{"id":"12","displayName":"Def Ender","jersey":"55"}]}
]}`

const flatRosterJSON = `{"athletes":[
 {"id":"20","displayName":"Hoop Star","jersey":"23","position":{"abbreviation":"SF"}}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.RosterConfig{BaseURL: srv.URL + "/apis/site/v2/sports", Timeout: time.Second})
}

func TestTeams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apis/site/v2/sports/football/nfl/teams", r.URL.Path)
		_, _ = w.Write([]byte(teamsJSON))
	})

	teams, err := c.Teams(context.Background(), "nfl")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, Team{ID: "1", Name: "Atlanta Falcons", Abbreviation: "ATL", Logo: "https://a.example/atl.png", Sport: "nfl"}, teams[0])
	assert.Equal(t, "", teams[1].Logo)
}

func TestTeamsUnsupportedSport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Teams(context.Background(), "cricket")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRosterGrouped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apis/site/v2/sports/football/nfl/teams/1/roster", r.URL.Path)
		_, _ = w.Write([]byte(groupedRosterJSON))
	})

	players, err := c.Roster(context.Background(), "nfl", "1")
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, Player{ID: "10", Name: "Joe Example", JerseyNumber: 9, Position: "QB", TeamID: "1", College: "State", Age: 27}, players[0])
	assert.Equal(t, "No Display", players[1].Name)
	assert.Equal(t, "Tight End", players[1].Position)
	assert.Equal(t, 0, players[1].JerseyNumber)
	assert.Equal(t, "N/A", players[2].Position)
}

func TestRosterFlat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apis/site/v2/sports/basketball/nba/teams/5/roster", r.URL.Path)
		_, _ = w.Write([]byte(flatRosterJSON))
	})

	players, err := c.Roster(context.Background(), "nba", "5")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Hoop Star", players[0].Name)
	assert.Equal(t, 23, players[0].JerseyNumber)
	assert.Equal(t, "5", players[0].TeamID)
}

func TestPlayerDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apis/site/v2/sports/hockey/nhl/athletes/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"athlete":{"bio":"Enforcer.","birthPlace":{"displayText":"Moose Jaw, SK"},"college":{"name":"North"},"statistics":{"goals":3}}}`))
	})

	details, err := c.PlayerDetails(context.Background(), "nhl", "7")
	require.NoError(t, err)
	assert.Equal(t, "Enforcer.", details.Bio)
	assert.Equal(t, "Moose Jaw, SK", details.Hometown)
	assert.Equal(t, "North", details.College)
	assert.Equal(t, float64(3), details.Stats["goals"])
}

func TestPlayerDetailsNotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	details, err := c.PlayerDetails(context.Background(), "nfl", "404")
	require.NoError(t, err)
	assert.Equal(t, PlayerDetails{Stats: map[string]any{}}, details)
}

func TestUpstreamErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Roster(context.Background(), "nfl", "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestUpstreamTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Teams(ctx, "nfl")
	assert.ErrorIs(t, err, models.ErrUpstreamTimeout)
}
