package services

import (
	"context"
	"encoding/json"
	"time"

	"roast-board/cmd/api/clients/rosterclient"
	"roast-board/config"
	"roast-board/keyspace"
	"roast-board/logger"
	"roast-board/models"
	"roast-board/store"
)

type RosterProvider interface {
	Teams(ctx context.Context, sport string) ([]rosterclient.Team, error)
	Roster(ctx context.Context, sport, teamID string) ([]rosterclient.Player, error)
	PlayerDetails(ctx context.Context, sport, playerID string) (rosterclient.PlayerDetails, error)
}

type NewsProvider interface {
	Headlines(ctx context.Context, query string) ([]string, error)
}

// CatalogService serves teams, rosters, player details and headlines with a
// read-through cache in the record store. The cache is best-effort: store
// failures fall through to the provider.
type CatalogService struct {
	store  store.Store
	roster RosterProvider
	news   NewsProvider
	ttl    config.RetentionConfig
}

func NewCatalogService(st store.Store, roster RosterProvider, news NewsProvider, ttl config.RetentionConfig) *CatalogService {
	return &CatalogService{store: st, roster: roster, news: news, ttl: ttl}
}

func (s *CatalogService) ListTeams(ctx context.Context, sport string) ([]rosterclient.Team, error) {
	if err := validateSport(sport); err != nil {
		return nil, err
	}
	return readThrough(ctx, s.store, keyspace.Cache("teams", sport), s.ttl.TeamsTTL, func() ([]rosterclient.Team, error) {
		return s.roster.Teams(ctx, sport)
	})
}

func (s *CatalogService) ListPlayers(ctx context.Context, sport, teamID string) ([]rosterclient.Player, error) {
	verr := &models.ValidationError{}
	if !rosterclient.SupportedSport(sport) {
		verr.Add("sport", "must be one of nfl, nba, mlb, nhl")
	}
	if !keyspace.ValidIdentifier(teamID) {
		verr.Add("team_id", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return readThrough(ctx, s.store, keyspace.Cache("roster", sport, teamID), s.ttl.RosterTTL, func() ([]rosterclient.Player, error) {
		return s.roster.Roster(ctx, sport, teamID)
	})
}

func (s *CatalogService) PlayerDetails(ctx context.Context, sport, playerID string) (rosterclient.PlayerDetails, error) {
	return readThrough(ctx, s.store, keyspace.Cache("player", sport, playerID), s.ttl.PlayerTTL, func() (rosterclient.PlayerDetails, error) {
		return s.roster.PlayerDetails(ctx, sport, playerID)
	})
}

// Headlines returns recent headlines about a player, keyed by player id.
func (s *CatalogService) Headlines(ctx context.Context, playerID, name string) ([]string, error) {
	return readThrough(ctx, s.store, keyspace.Cache("news", playerID), s.ttl.NewsTTL, func() ([]string, error) {
		return s.news.Headlines(ctx, name)
	})
}

func validateSport(sport string) error {
	if !rosterclient.SupportedSport(sport) {
		return models.NewValidationError("sport", "must be one of nfl, nba, mlb, nhl")
	}
	return nil
}

// readThrough returns the cached value under key or loads, caches and
// returns it. Empty slices and maps are not cached.
func readThrough[T any](ctx context.Context, st store.Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	raw, found, err := st.Get(ctx, key)
	if err != nil {
		logger.Log.Warnf("cache read %s failed, loading from provider: %v", key, err)
	} else if found {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		logger.Log.Warnf("cache entry %s is unreadable, reloading", key)
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil || isEmptyJSON(data) {
		return v, nil
	}
	if err := st.SetWithExpiry(ctx, key, string(data), ttl); err != nil {
		logger.Log.Warnf("cache write %s failed: %v", key, err)
	}
	return v, nil
}

func isEmptyJSON(data []byte) bool {
	switch string(data) {
	case "null", "[]", "{}", `""`:
		return true
	}
	return false
}
