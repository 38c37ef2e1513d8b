package app

import (
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type Repos struct {
	Offence            repos.OffenceRepo
	Statute            repos.StatuteRepo
	OffenceToSync      repos.OffenceToSyncRepo
	EventToRaise       repos.EventToRaiseRepo
	NomisChangeHistory repos.NomisChangeHistoryRepo
	OffenceReactivated repos.OffenceReactivatedRepo
	FeatureToggle      repos.FeatureToggleRepo

	Schedule repos.ScheduleRepo
	Mapping  repos.MappingRepo

	SdrsLoadResult        repos.SdrsLoadResultRepo
	SdrsLoadResultHistory repos.SdrsLoadResultHistoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Offence:            repos.NewOffenceRepo(db, log),
		Statute:            repos.NewStatuteRepo(db, log),
		OffenceToSync:      repos.NewOffenceToSyncRepo(db, log),
		EventToRaise:       repos.NewEventToRaiseRepo(db, log),
		NomisChangeHistory: repos.NewNomisChangeHistoryRepo(db, log),
		OffenceReactivated: repos.NewOffenceReactivatedRepo(db, log),
		FeatureToggle:      repos.NewFeatureToggleRepo(db, log),

		Schedule: repos.NewScheduleRepo(db, log),
		Mapping:  repos.NewMappingRepo(db, log),

		SdrsLoadResult:        repos.NewSdrsLoadResultRepo(db, log),
		SdrsLoadResultHistory: repos.NewSdrsLoadResultHistoryRepo(db, log),
	}
}
