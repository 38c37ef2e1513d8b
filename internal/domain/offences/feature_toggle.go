package offences

import "time"

type Feature string

const (
	FeatureFullSyncNomis       Feature = "FULL_SYNC_NOMIS"
	FeatureDeltaSyncNomis      Feature = "DELTA_SYNC_NOMIS"
	FeatureSyncSdrs            Feature = "SYNC_SDRS"
	FeaturePublishEvents       Feature = "PUBLISH_EVENTS"
	FeatureT3OffenceExclusions Feature = "T3_OFFENCE_EXCLUSIONS"
)

// FeatureToggle gates the scheduled jobs and the tranche three exclusion
// rules. Toggles are read afresh at the start of every run.
type FeatureToggle struct {
	Feature   Feature   `gorm:"column:feature;primaryKey" json:"feature"`
	Enabled   bool      `gorm:"column:enabled;not null;default:false" json:"enabled"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (FeatureToggle) TableName() string { return "feature_toggle" }
