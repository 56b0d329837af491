package dto

import (
	"time"

	"roast-board/models"
)

type PlayerDTO struct {
	Name         string `json:"name" example:"Patrick Mahomes"`
	Position     string `json:"position" example:"QB"`
	Team         string `json:"team" example:"Kansas City Chiefs"`
	JerseyNumber int    `json:"jersey_number" example:"15"`
}

type RoastDTO struct {
	ID        string    `json:"id" example:"3139477-2025-11-9f1c2b7e4d0a4c55b0e3a1d2c3b4a5f6"`
	PlayerID  string    `json:"player_id" example:"3139477"`
	TeamID    string    `json:"team_id" example:"12"`
	Sport     string    `json:"sport" example:"nfl"`
	Text      string    `json:"roast" example:"You throw no-look passes because you can't bear to watch them either."`
	Upvotes   int64     `json:"upvotes" example:"4"`
	Downvotes int64     `json:"downvotes" example:"1"`
	Score     int64     `json:"score" example:"3"`
	WeekID    string    `json:"week_id" example:"2025-11"`
	CreatedAt time.Time `json:"created_at"`
	Player    PlayerDTO `json:"player"`
}

func NewRoastDTO(r models.Roast) RoastDTO {
	return RoastDTO{
		ID:        r.ID,
		PlayerID:  r.PlayerID,
		TeamID:    r.TeamID,
		Sport:     r.Sport,
		Text:      r.Text,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		Score:     r.Score(),
		WeekID:    r.WeekID,
		CreatedAt: r.CreatedAt,
		Player: PlayerDTO{
			Name:         r.Player.Name,
			Position:     r.Player.Position,
			Team:         r.Player.Team,
			JerseyNumber: r.Player.JerseyNumber,
		},
	}
}

func NewRoastListDTO(roasts []models.Roast) RoastListDTO {
	items := make([]RoastDTO, 0, len(roasts))
	for _, r := range roasts {
		items = append(items, NewRoastDTO(r))
	}
	return RoastListDTO{Roasts: items, Count: len(items)}
}

type RoastListDTO struct {
	Roasts []RoastDTO `json:"roasts"`
	Count  int        `json:"count" example:"5"`
}

type GenerateRoastRequest struct {
	PlayerID string `json:"player_id" binding:"required" example:"3139477"`
	TeamID   string `json:"team_id" binding:"required" example:"12"`
	Sport    string `json:"sport" example:"nfl"`
	ClientID string `json:"client_id" example:"b2c1d0e9"`
}

type GenerateRoastResponse struct {
	Roast   RoastDTO `json:"roast"`
	Created bool     `json:"created" example:"true"`
}

// VoteRequest accepts "up"/"down" or "upvote"/"downvote". Without a
// client id the vote is not deduplicated.
type VoteRequest struct {
	RoastID  string `json:"roast_id" binding:"required" example:"3139477-2025-11-9f1c2b7e4d0a4c55b0e3a1d2c3b4a5f6"`
	VoteType string `json:"vote_type" binding:"required" example:"up"`
	ClientID string `json:"client_id" example:"b2c1d0e9"`
}

type VoteResponse struct {
	RoastID   string `json:"roast_id"`
	Upvotes   int64  `json:"upvotes" example:"5"`
	Downvotes int64  `json:"downvotes" example:"1"`
	Score     int64  `json:"score" example:"4"`
}

type CleanupResponse struct {
	Scanned int `json:"scanned" example:"120"`
	Deleted int `json:"deleted" example:"40"`
}
