package app

import (
	"github.com/gin-gonic/gin"

	"github.com/opencourts/offence-registry-backend/internal/server"
)

func wireRouter(h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		OffenceHandler:  h.Offence,
		ScheduleHandler: h.Schedule,
		AdminHandler:    h.Admin,
	})
}
