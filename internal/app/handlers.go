package app

import (
	"github.com/opencourts/offence-registry-backend/internal/http/handlers"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type Handlers struct {
	Offence  *handlers.OffenceHandler
	Schedule *handlers.ScheduleHandler
	Admin    *handlers.AdminHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	return Handlers{
		Offence:  handlers.NewOffenceHandler(log, s.Offences),
		Schedule: handlers.NewScheduleHandler(log, s.Schedules),
		Admin:    handlers.NewAdminHandler(log, s.FeatureToggles, s.SdrsSync, s.NomisSync),
	}
}
