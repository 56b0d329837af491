package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roast-board/cmd/api/dto"
	"roast-board/cmd/api/services"
	"roast-board/models"
)

// GenerateRoastHandler godoc
// @Summary      Generate a roast
// @Description  Generates and stores a roast for a player. Without client_id the
// @Description  roast already generated this week is returned when there is one.
// @Tags         roasts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.GenerateRoastRequest  true  "Roast request"
// @Success      200   {object}  dto.GenerateRoastResponse  "Existing roast of this week"
// @Success      201   {object}  dto.GenerateRoastResponse  "New roast"
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      502   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Failure      504   {object}  dto.ErrorResponseDTO
// @Router       /roasts/generate [post]
func GenerateRoastHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.GenerateRoastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		roast, created, err := svc.Generate(c.Request.Context(), services.GenerateInput{
			PlayerID: req.PlayerID,
			TeamID:   req.TeamID,
			Sport:    req.Sport,
			ClientID: req.ClientID,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, dto.GenerateRoastResponse{Roast: dto.NewRoastDTO(*roast), Created: created})
	}
}

// VoteRoastHandler godoc
// @Summary      Vote on a roast
// @Description  One vote per client and roast. Votes without client_id are not deduplicated.
// @Tags         roasts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.VoteRequest  true  "Vote"
// @Success      200   {object}  dto.VoteResponse
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Router       /roasts/vote [post]
func VoteRoastHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.VoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		res, err := svc.Vote(c.Request.Context(), req.RoastID, req.VoteType, req.ClientID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.VoteResponse{
			RoastID:   req.RoastID,
			Upvotes:   res.Upvotes,
			Downvotes: res.Downvotes,
			Score:     res.Upvotes - res.Downvotes,
		})
	}
}

// GetRoastHandler godoc
// @Summary      Get a roast
// @Tags         roasts
// @Param        id  path  string  true  "Roast ID"
// @Produce      json
// @Success      200  {object}  dto.RoastDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /roasts/{id} [get]
func GetRoastHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roast, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewRoastDTO(*roast))
	}
}

// ListPlayerRoastsHandler godoc
// @Summary      List roasts of a player
// @Description  With client_id the roasts generated for that client across weeks,
// @Description  otherwise every roast of the player this week. Newest first.
// @Tags         roasts
// @Param        player_id  query  string  true   "Player ID"
// @Param        client_id  query  string  false  "Client ID"
// @Produce      json
// @Success      200  {object}  dto.RoastListDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /roasts/player [get]
func ListPlayerRoastsHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roasts, err := svc.ListForPlayer(c.Request.Context(), c.Query("player_id"), c.Query("client_id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewRoastListDTO(roasts))
	}
}

// TopRoastsHandler godoc
// @Summary      Top roasts of the week
// @Description  The best scored roasts followed by the most recent ones, without
// @Description  duplicates. With player_id only that player's roasts are ranked.
// @Tags         roasts
// @Param        player_id  query  string  false  "Player ID"
// @Produce      json
// @Success      200  {object}  dto.RoastListDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /roasts/top [get]
func TopRoastsHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.Query("player_id")

		var err error
		var roasts []models.Roast
		if playerID == "" {
			roasts, err = svc.TopOfWeek(c.Request.Context())
		} else {
			roasts, err = svc.TopForPlayer(c.Request.Context(), playerID)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewRoastListDTO(roasts))
	}
}

// CleanupHandler godoc
// @Summary      Sweep expired week buckets
// @Description  Deletes every bucketed key older than the previous week. Meant for an external scheduler.
// @Tags         maintenance
// @Produce      json
// @Success      200  {object}  dto.CleanupResponse
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /cleanup [post]
func CleanupHandler(svc *services.RoastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Sweep(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.CleanupResponse{Scanned: res.Scanned, Deleted: res.Deleted})
	}
}
