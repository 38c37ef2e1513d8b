package offences

import (
	"time"

	"github.com/google/uuid"
)

// Statute is the act a group of offence codes belongs to, keyed by the four
// character prefix shared by those codes.
type Statute struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code           string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	LegislationAct string    `gorm:"column:legislation_act;type:text" json:"legislationAct,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (Statute) TableName() string { return "statute" }
