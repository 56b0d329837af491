package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roast-board/cmd/api/dto"
	"roast-board/cmd/api/services"
)

// ListTeamsHandler godoc
// @Summary      List teams
// @Description  List the teams of a sport. Cached for a day.
// @Tags         catalog
// @Param        sport  query  string  false  "nfl, nba, mlb or nhl"  default(nfl)
// @Produce      json
// @Success      200  {object}  dto.TeamListDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Failure      504  {object}  dto.ErrorResponseDTO
// @Router       /teams [get]
func ListTeamsHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sport := c.DefaultQuery("sport", services.DefaultSport)
		teams, err := svc.ListTeams(c.Request.Context(), sport)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.TeamListDTO{Sport: sport, Teams: teams})
	}
}

// ListPlayersHandler godoc
// @Summary      List players of a team
// @Description  List the roster of a team. Cached for an hour.
// @Tags         catalog
// @Param        teamId  path   string  true   "Team ID"
// @Param        sport   query  string  false  "nfl, nba, mlb or nhl"  default(nfl)
// @Produce      json
// @Success      200  {object}  dto.PlayerListDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      504  {object}  dto.ErrorResponseDTO
// @Router       /players/{teamId} [get]
func ListPlayersHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sport := c.DefaultQuery("sport", services.DefaultSport)
		teamID := c.Param("teamId")
		players, err := svc.ListPlayers(c.Request.Context(), sport, teamID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.PlayerListDTO{Sport: sport, TeamID: teamID, Players: players})
	}
}
