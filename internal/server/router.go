package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/opencourts/offence-registry-backend/internal/http/handlers"
)

type RouterConfig struct {
	OffenceHandler  *handlers.OffenceHandler
	ScheduleHandler *handlers.ScheduleHandler
	AdminHandler    *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Offence lookups
		api.GET("/offences/search", cfg.OffenceHandler.Search)
		api.GET("/offences/codes", cfg.OffenceHandler.GetByCodes)
		api.GET("/offences/changed", cfg.OffenceHandler.GetByChangedRange)
		api.GET("/offences/pcsc-indicators", cfg.OffenceHandler.PcscIndicators)
		api.GET("/offences/categorisation", cfg.OffenceHandler.Categorisations)
		api.GET("/offences/:id", cfg.OffenceHandler.GetOffence)
		api.GET("/statutes", cfg.OffenceHandler.ListStatutes)

		// Schedules
		api.GET("/schedules", cfg.ScheduleHandler.ListSchedules)
		api.GET("/schedules/:id", cfg.ScheduleHandler.GetSchedule)
		api.POST("/schedules/link-offence", cfg.ScheduleHandler.LinkOffence)
		api.POST("/schedules/unlink-offence", cfg.ScheduleHandler.UnlinkOffence)

		// Admin
		api.GET("/admin/toggles", cfg.AdminHandler.ListToggles)
		api.PUT("/admin/toggles", cfg.AdminHandler.SetToggle)
		api.GET("/admin/load-results", cfg.AdminHandler.LoadResults)
		api.GET("/admin/change-history", cfg.AdminHandler.ChangeHistory)
		api.PUT("/admin/reactivated", cfg.AdminHandler.MarkReactivated)
		api.DELETE("/admin/reactivated/:code", cfg.AdminHandler.ClearReactivated)
		api.POST("/admin/sync/sdrs", cfg.AdminHandler.RunSdrsSync)
		api.POST("/admin/sync/sdrs/full-load", cfg.AdminHandler.RunSdrsFullLoad)
		api.POST("/admin/sync/nomis/full", cfg.AdminHandler.RunNomisFullSync)
		api.POST("/admin/sync/nomis/delta", cfg.AdminHandler.RunNomisDeltaSync)
	}

	return router
}
