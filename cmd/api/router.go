package api

import (
	"net/http"

	authdelivery "mailpilot-backend/internal/auth/delivery"
	eventdelivery "mailpilot-backend/internal/event/delivery"
	"mailpilot-backend/internal/event/usecase"
	"mailpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, runner *usecase.Runner, cfg *config.Config) {
	processHandler := eventdelivery.NewProcessHandler(runner)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Interactive trigger and run history (protected)
		authed := api.Group("")
		authed.Use(authdelivery.AuthMiddleware(cfg.JWTSecret))
		{
			authed.POST("/process", processHandler.ProcessNow)
			authed.GET("/runs", processHandler.RecentRuns)
		}

		// External scheduler trigger (shared secret)
		cron := api.Group("/cron")
		cron.Use(authdelivery.CronMiddleware(cfg.CronSecret))
		{
			cron.POST("/process", processHandler.ProcessAll)
		}
	}
}
