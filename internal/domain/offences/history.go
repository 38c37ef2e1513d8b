package offences

import (
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

type NomisChangeType string

const (
	NomisChangeOffence        NomisChangeType = "OFFENCE"
	NomisChangeStatute        NomisChangeType = "STATUTE"
	NomisChangeHomeOfficeCode NomisChangeType = "HOME_OFFICE_CODE"
)

// NomisChangeHistory is the append-only audit trail of every create or update
// pushed to the target system. Rows are never updated or deleted.
type NomisChangeHistory struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code            string          `gorm:"column:code;not null;index" json:"code"`
	Description     string          `gorm:"column:description;type:text" json:"description"`
	ChangeType      ChangeType      `gorm:"column:change_type;not null" json:"changeType"`
	NomisChangeType NomisChangeType `gorm:"column:nomis_change_type;not null" json:"nomisChangeType"`
	SentToNomisDate time.Time       `gorm:"column:sent_to_nomis_date;not null;index" json:"sentToNomisDate"`
}

func (NomisChangeHistory) TableName() string { return "nomis_change_history" }
