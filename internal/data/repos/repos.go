package repos

import (
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/repos/offences"
	"github.com/opencourts/offence-registry-backend/internal/data/repos/schedules"
	"github.com/opencourts/offence-registry-backend/internal/data/repos/sdrs"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type OffenceRepo = offences.OffenceRepo
type StatuteRepo = offences.StatuteRepo
type OffenceToSyncRepo = offences.OffenceToSyncRepo
type EventToRaiseRepo = offences.EventToRaiseRepo
type NomisChangeHistoryRepo = offences.NomisChangeHistoryRepo
type OffenceReactivatedRepo = offences.OffenceReactivatedRepo
type FeatureToggleRepo = offences.FeatureToggleRepo

type ScheduleRepo = schedules.ScheduleRepo
type MappingRepo = schedules.MappingRepo

type SdrsLoadResultRepo = sdrs.LoadResultRepo
type SdrsLoadResultHistoryRepo = sdrs.LoadResultHistoryRepo

func NewOffenceRepo(db *gorm.DB, baseLog *logger.Logger) OffenceRepo {
	return offences.NewOffenceRepo(db, baseLog)
}
func NewStatuteRepo(db *gorm.DB, baseLog *logger.Logger) StatuteRepo {
	return offences.NewStatuteRepo(db, baseLog)
}
func NewOffenceToSyncRepo(db *gorm.DB, baseLog *logger.Logger) OffenceToSyncRepo {
	return offences.NewOffenceToSyncRepo(db, baseLog)
}
func NewEventToRaiseRepo(db *gorm.DB, baseLog *logger.Logger) EventToRaiseRepo {
	return offences.NewEventToRaiseRepo(db, baseLog)
}
func NewNomisChangeHistoryRepo(db *gorm.DB, baseLog *logger.Logger) NomisChangeHistoryRepo {
	return offences.NewNomisChangeHistoryRepo(db, baseLog)
}
func NewOffenceReactivatedRepo(db *gorm.DB, baseLog *logger.Logger) OffenceReactivatedRepo {
	return offences.NewOffenceReactivatedRepo(db, baseLog)
}
func NewFeatureToggleRepo(db *gorm.DB, baseLog *logger.Logger) FeatureToggleRepo {
	return offences.NewFeatureToggleRepo(db, baseLog)
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return schedules.NewScheduleRepo(db, baseLog)
}
func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return schedules.NewMappingRepo(db, baseLog)
}

func NewSdrsLoadResultRepo(db *gorm.DB, baseLog *logger.Logger) SdrsLoadResultRepo {
	return sdrs.NewLoadResultRepo(db, baseLog)
}
func NewSdrsLoadResultHistoryRepo(db *gorm.DB, baseLog *logger.Logger) SdrsLoadResultHistoryRepo {
	return sdrs.NewLoadResultHistoryRepo(db, baseLog)
}
