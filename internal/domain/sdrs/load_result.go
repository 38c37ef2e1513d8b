package sdrs

import (
	"time"

	"github.com/google/uuid"
)

type LoadStatus string

const (
	LoadStatusSuccess LoadStatus = "SUCCESS"
	LoadStatusFail    LoadStatus = "FAIL"
)

type LoadType string

const (
	LoadTypeFull  LoadType = "FULL"
	LoadTypeDelta LoadType = "DELTA"
)

// Cache identifies one independently tracked reference-source shard: the 26
// alphabetic offence partitions plus the two auxiliary feeds.
type Cache string

const (
	CacheApplications Cache = "APPLICATIONS"
	CacheMojOffence   Cache = "MOJ_OFFENCE"
)

// OffenceCache returns the shard for one alphabetic partition, e.g.
// OFFENCES_A for 'A'.
func OffenceCache(alpha byte) Cache {
	return Cache("OFFENCES_" + string(alpha))
}

// AllCaches lists every shard in load order: A-Z, then the auxiliary feeds.
func AllCaches() []Cache {
	out := make([]Cache, 0, 28)
	for ch := byte('A'); ch <= 'Z'; ch++ {
		out = append(out, OffenceCache(ch))
	}
	return append(out, CacheApplications, CacheMojOffence)
}

// AlphaChar returns the partition letter for an alphabetic offence shard and
// false for the auxiliary feeds.
func (c Cache) AlphaChar() (string, bool) {
	const prefix = "OFFENCES_"
	s := string(c)
	if len(s) == len(prefix)+1 && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// SdrsLoadResult is the current state of one shard, upserted after every
// attempted load.
type SdrsLoadResult struct {
	Cache                  Cache      `gorm:"column:cache;primaryKey" json:"cache"`
	Status                 LoadStatus `gorm:"column:status;not null" json:"status"`
	LoadType               LoadType   `gorm:"column:load_type;not null" json:"loadType"`
	LoadDate               *time.Time `gorm:"column:load_date" json:"loadDate,omitempty"`
	LastSuccessfulLoadDate *time.Time `gorm:"column:last_successful_load_date" json:"lastSuccessfulLoadDate,omitempty"`
	NomisSyncRequired      bool       `gorm:"column:nomis_sync_required;not null;default:false" json:"nomisSyncRequired"`
	CreatedAt              time.Time  `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt              time.Time  `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (SdrsLoadResult) TableName() string { return "sdrs_load_result" }

// SdrsLoadResultHistory is the append-only trail of shard loads.
type SdrsLoadResultHistory struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Cache             Cache      `gorm:"column:cache;not null;index" json:"cache"`
	Status            LoadStatus `gorm:"column:status;not null" json:"status"`
	LoadType          LoadType   `gorm:"column:load_type;not null" json:"loadType"`
	LoadDate          *time.Time `gorm:"column:load_date" json:"loadDate,omitempty"`
	NomisSyncRequired bool       `gorm:"column:nomis_sync_required;not null;default:false" json:"nomisSyncRequired"`
	CreatedAt         time.Time  `gorm:"not null;default:now()" json:"createdDate"`
}

func (SdrsLoadResultHistory) TableName() string { return "sdrs_load_result_history" }
