// Package rosterclient is a thin client for the ESPN site API: teams,
// rosters and athlete profiles.
package rosterclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"roast-board/cmd/api/httpclient"
	"roast-board/config"
	"roast-board/logger"
	"roast-board/models"
)

// sportPaths maps the sport keys the API accepts to provider paths.
var sportPaths = map[string]string{
	"nfl": "football/nfl",
	"nba": "basketball/nba",
	"mlb": "baseball/mlb",
	"nhl": "hockey/nhl",
}

// SupportedSport reports whether sport has a provider mapping.
func SupportedSport(sport string) bool {
	_, ok := sportPaths[sport]
	return ok
}

type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
	Sport        string `json:"sport"`
}

type Player struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	JerseyNumber int            `json:"jersey_number"`
	Position     string         `json:"position"`
	TeamID       string         `json:"team_id"`
	Stats        map[string]any `json:"stats,omitempty"`
	College      string         `json:"college,omitempty"`
	Age          int            `json:"age,omitempty"`
}

type PlayerDetails struct {
	Bio      string         `json:"bio"`
	Hometown string         `json:"hometown"`
	College  string         `json:"college"`
	Stats    map[string]any `json:"stats"`
}

type Client struct {
	base *httpclient.BaseClient
}

func New(cfg config.RosterConfig) *Client {
	return &Client{
		base: httpclient.NewBaseClient(cfg.BaseURL, httpclient.Config{Timeout: cfg.Timeout}),
	}
}

func (c *Client) Teams(ctx context.Context, sport string) ([]Team, error) {
	var body struct {
		Sports []struct {
			Leagues []struct {
				Teams []struct {
					Team struct {
						ID           string `json:"id"`
						DisplayName  string `json:"displayName"`
						Abbreviation string `json:"abbreviation"`
						Logos        []struct {
							Href string `json:"href"`
						} `json:"logos"`
					} `json:"team"`
				} `json:"teams"`
			} `json:"leagues"`
		} `json:"sports"`
	}
	if err := c.getJSON(ctx, sport, "/teams", &body); err != nil {
		return nil, err
	}

	teams := []Team{}
	if len(body.Sports) == 0 || len(body.Sports[0].Leagues) == 0 {
		return teams, nil
	}
	for _, t := range body.Sports[0].Leagues[0].Teams {
		team := Team{
			ID:           t.Team.ID,
			Name:         t.Team.DisplayName,
			Abbreviation: t.Team.Abbreviation,
			Sport:        sport,
		}
		if len(t.Team.Logos) > 0 {
			team.Logo = t.Team.Logos[0].Href
		}
		teams = append(teams, team)
	}
	return teams, nil
}

type rosterAthlete struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
	Jersey      string `json:"jersey"`
	Age         int    `json:"age"`
	Position    *struct {
		Abbreviation string `json:"abbreviation"`
		Name         string `json:"name"`
	} `json:"position"`
	College *struct {
		Name string `json:"name"`
	} `json:"college"`
	Statistics map[string]any `json:"statistics"`
}

// Roster returns every athlete of a team. Football and hockey rosters are
// grouped by unit ({position, items}); basketball and baseball are flat.
func (c *Client) Roster(ctx context.Context, sport, teamID string) ([]Player, error) {
	var body struct {
		Athletes []json.RawMessage `json:"athletes"`
	}
	if err := c.getJSON(ctx, sport, "/teams/"+teamID+"/roster", &body); err != nil {
		return nil, err
	}

	players := []Player{}
	for _, raw := range body.Athletes {
		var group struct {
			Items []rosterAthlete `json:"items"`
		}
		if err := json.Unmarshal(raw, &group); err == nil && group.Items != nil {
			for _, a := range group.Items {
				players = append(players, a.toPlayer(teamID))
			}
			continue
		}
		var a rosterAthlete
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode roster athlete: %w", err)
		}
		players = append(players, a.toPlayer(teamID))
	}
	return players, nil
}

func (a rosterAthlete) toPlayer(teamID string) Player {
	p := Player{
		ID:       a.ID,
		Name:     a.DisplayName,
		TeamID:   teamID,
		Stats:    a.Statistics,
		Age:      a.Age,
		Position: "N/A",
	}
	if p.Name == "" {
		p.Name = a.FullName
	}
	if n, err := strconv.Atoi(a.Jersey); err == nil {
		p.JerseyNumber = n
	}
	if a.Position != nil {
		switch {
		case a.Position.Abbreviation != "":
			p.Position = a.Position.Abbreviation
		case a.Position.Name != "":
			p.Position = a.Position.Name
		}
	}
	if a.College != nil {
		p.College = a.College.Name
	}
	return p
}

// PlayerDetails loads the athlete profile. Many athletes have none; a 404
// yields empty details rather than an error.
func (c *Client) PlayerDetails(ctx context.Context, sport, playerID string) (PlayerDetails, error) {
	var body struct {
		Athlete *struct {
			Bio        string `json:"bio"`
			BirthPlace *struct {
				DisplayText string `json:"displayText"`
			} `json:"birthPlace"`
			College *struct {
				Name string `json:"name"`
			} `json:"college"`
			Statistics map[string]any `json:"statistics"`
		} `json:"athlete"`
	}
	empty := PlayerDetails{Stats: map[string]any{}}

	err := c.getJSON(ctx, sport, "/athletes/"+playerID, &body)
	if errors.Is(err, models.ErrNotFound) {
		logger.Log.Debugf("player details not found for %s/%s", sport, playerID)
		return empty, nil
	}
	if err != nil {
		return empty, err
	}
	if body.Athlete == nil {
		return empty, nil
	}

	out := PlayerDetails{Bio: body.Athlete.Bio, Stats: body.Athlete.Statistics}
	if out.Stats == nil {
		out.Stats = map[string]any{}
	}
	if body.Athlete.BirthPlace != nil {
		out.Hometown = body.Athlete.BirthPlace.DisplayText
	}
	if body.Athlete.College != nil {
		out.College = body.Athlete.College.Name
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, sport, relPath string, out any) error {
	sportPath, ok := sportPaths[sport]
	if !ok {
		return models.NewValidationError("sport", "unsupported sport "+strconv.Quote(sport))
	}

	req, err := c.base.NewRequest(ctx, http.MethodGet, "/"+sportPath+relPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.base.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: roster provider: %v", models.ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("roster provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("roster provider %s: %w", relPath, models.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("roster provider %s: status=%d body=%s", relPath, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
