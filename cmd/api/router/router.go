package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"roast-board/cmd/api/dto"
	"roast-board/cmd/api/handlers"
	"roast-board/cmd/api/middleware"
	"roast-board/cmd/api/services"
	_ "roast-board/docs"
	"roast-board/store"
)

const healthTimeout = 3 * time.Second

type Deps struct {
	Store   store.Store
	Roasts  *services.RoastService
	Catalog *services.CatalogService
	// TraceRequests selects the detailed request log with request and span ids.
	TraceRequests bool
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.TraceRequests {
		r.Use(middleware.RequestTrace())
	} else {
		r.Use(middleware.RequestLoggingMiddleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponseDTO{Status: "degraded", Store: "down", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok", Store: "up"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/teams", handlers.ListTeamsHandler(d.Catalog))
		api.GET("/players/:teamId", handlers.ListPlayersHandler(d.Catalog))

		api.POST("/roasts/generate", handlers.GenerateRoastHandler(d.Roasts))
		api.POST("/roasts/vote", handlers.VoteRoastHandler(d.Roasts))
		api.GET("/roasts/player", handlers.ListPlayerRoastsHandler(d.Roasts))
		api.GET("/roasts/top", handlers.TopRoastsHandler(d.Roasts))
		api.GET("/roasts/:id", handlers.GetRoastHandler(d.Roasts))

		api.POST("/cleanup", handlers.CleanupHandler(d.Roasts))
	}

	return r
}
