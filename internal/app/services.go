package app

import (
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/services"
)

type Services struct {
	FeatureToggles services.FeatureToggleService
	ScheduleCache  services.ScheduleCacheService
	Offences       services.OffenceService
	Schedules      services.ScheduleService
	NomisSync      services.NomisSyncService
	SdrsSync       services.SdrsSyncService
	Events         services.EventService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	toggles := services.NewFeatureToggleService(db, log, r.FeatureToggle)
	cache := services.NewScheduleCacheService(db, log, r.Schedule, r.Mapping, r.Offence, cfg.ScheduleCacheTTL)

	return Services{
		FeatureToggles: toggles,
		ScheduleCache:  cache,
		Offences:       services.NewOffenceService(db, log, r.Offence, r.Statute, cache, toggles),
		Schedules:      services.NewScheduleService(db, log, r.Schedule, r.Mapping, r.Offence, c.Nomis, cache),
		NomisSync: services.NewNomisSyncService(db, log, r.Offence, r.OffenceToSync,
			r.NomisChangeHistory, r.OffenceReactivated, r.SdrsLoadResult, toggles, c.Nomis),
		SdrsSync: services.NewSdrsSyncService(db, log, r.Offence, r.Statute, r.OffenceToSync,
			r.EventToRaise, r.SdrsLoadResult, r.SdrsLoadResultHistory, toggles, cache, c.Sdrs),
		Events: services.NewEventService(db, log, r.EventToRaise, toggles, c.Publisher),
	}
}
