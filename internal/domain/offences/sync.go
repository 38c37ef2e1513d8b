package offences

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SyncToNomisReason string

const (
	ReasonOffenceUpdate  SyncToNomisReason = "OFFENCE_UPDATE"
	ReasonHoCodeUpdate   SyncToNomisReason = "HO_CODE_UPDATE"
	ReasonFutureEndDated SyncToNomisReason = "FUTURE_END_DATED"
)

// OffenceToSyncWithNomis is a dirty-queue entry consumed by delta sync.
type OffenceToSyncWithNomis struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OffenceCode string            `gorm:"column:offence_code;not null;index" json:"offenceCode"`
	Reason      SyncToNomisReason `gorm:"column:reason;not null" json:"reason"`
	CreatedAt   time.Time         `gorm:"not null;default:now()" json:"createdDate"`
}

func (OffenceToSyncWithNomis) TableName() string { return "offence_to_sync_with_nomis" }

type EventType string

const EventOffenceChanged EventType = "OFFENCE_CHANGED"

// EventToRaise is an outbox row, deleted once the event has been published.
// Payload is the offence as it stood when the row was queued, so consumers see
// the state that triggered the event even if the row has changed again since.
type EventToRaise struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OffenceCode string         `gorm:"column:offence_code;not null;index" json:"offenceCode"`
	EventType   EventType      `gorm:"column:event_type;not null" json:"eventType"`
	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"createdDate"`
}

func (EventToRaise) TableName() string { return "event_to_raise" }

// OffenceReactivatedInNomis marks codes a user manually reactivated in the
// target system; such codes are excluded from the normal reconciliation diff.
type OffenceReactivatedInNomis struct {
	OffenceCode       string    `gorm:"column:offence_code;primaryKey" json:"offenceCode"`
	ReactivatedByUser string    `gorm:"column:reactivated_by_user;not null" json:"reactivatedByUser"`
	CreatedAt         time.Time `gorm:"not null;default:now()" json:"createdDate"`
}

func (OffenceReactivatedInNomis) TableName() string { return "offence_reactivated_in_nomis" }
