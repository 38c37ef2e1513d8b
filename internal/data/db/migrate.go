package db

import (
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Offence registry
		// =========================
		&types.Offence{},
		&types.Statute{},

		// =========================
		// Schedules + mappings
		// =========================
		&types.Schedule{},
		&types.SchedulePart{},
		&types.ScheduleParagraph{},
		&types.OffenceScheduleMapping{},

		// =========================
		// Target-system sync bookkeeping
		// =========================
		&types.NomisChangeHistory{},
		&types.OffenceToSyncWithNomis{},
		&types.OffenceReactivatedInNomis{},
		&types.EventToRaise{},

		// =========================
		// Reference-source load tracking
		// =========================
		&types.SdrsLoadResult{},
		&types.SdrsLoadResultHistory{},

		// =========================
		// Runtime switches
		// =========================
		&types.FeatureToggle{},
	)
}
