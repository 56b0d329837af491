package dto

import "roast-board/cmd/api/clients/rosterclient"

type TeamListDTO struct {
	Sport string              `json:"sport" example:"nfl"`
	Teams []rosterclient.Team `json:"teams"`
}

type PlayerListDTO struct {
	Sport   string                `json:"sport" example:"nfl"`
	TeamID  string                `json:"team_id" example:"12"`
	Players []rosterclient.Player `json:"players"`
}
