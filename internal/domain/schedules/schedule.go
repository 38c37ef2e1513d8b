package schedules

import (
	"time"

	"github.com/google/uuid"
)

// Schedule codes the classification rebuild recognises. Each code names the
// statutory grouping whose mappings feed one of the derived offence-code sets.
const (
	Schedule15Code                = "15"        // Criminal Justice Act 2003, parts 1 and 2
	Schedule3Code                 = "3"         // Sexual Offences Act 2003 notification requirements
	ScheduleSeriousViolentCode    = "SV"        // serious violent offences
	ScheduleDomesticAbuseCode     = "DA"        // domestic abuse offences
	ScheduleNationalSecurityCode  = "NS"        // national security offences
	ScheduleTerrorismCode         = "TER"       // terrorism offences
	ScheduleSexualLegislationCode = "SL"        // sexual offences listed by legislation
	ScheduleSexualMappingCode     = "SX"        // explicit sexual schedule mappings
	ScheduleT3SexualCode          = "T3-SX"     // tranche three sexual offences
	ScheduleT3DomesticAbuseCode   = "T3-DA"     // tranche three domestic abuse offences
	ScheduleT3MurderCode          = "T3-MURDER" // tranche three murder offences
)

// Schedule is a statutory grouping of offences (act + code, e.g. Schedule 15
// of the Criminal Justice Act 2003), subdivided into numbered parts.
type Schedule struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Act       string    `gorm:"column:act;not null" json:"act"`
	Code      string    `gorm:"column:code;not null;index:idx_schedule_act_code,unique,priority:2" json:"code"`
	Url       string    `gorm:"column:url" json:"url,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (Schedule) TableName() string { return "schedule" }

// SchedulePart belongs to exactly one schedule.
type SchedulePart struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScheduleID uuid.UUID `gorm:"type:uuid;column:schedule_id;not null;index" json:"scheduleId"`
	PartNumber int       `gorm:"column:part_number;not null" json:"partNumber"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (SchedulePart) TableName() string { return "schedule_part" }

// ScheduleParagraph belongs to exactly one part.
type ScheduleParagraph struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SchedulePartID  uuid.UUID `gorm:"type:uuid;column:schedule_part_id;not null;index" json:"schedulePartId"`
	ParagraphNumber int       `gorm:"column:paragraph_number;not null" json:"paragraphNumber"`
	ParagraphTitle  string    `gorm:"column:paragraph_title" json:"paragraphTitle"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (ScheduleParagraph) TableName() string { return "schedule_paragraph" }

// OffenceScheduleMapping attaches an offence to a schedule part, optionally
// narrowed to a single paragraph. An offence may appear under many parts.
type OffenceScheduleMapping struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SchedulePartID      uuid.UUID  `gorm:"type:uuid;column:schedule_part_id;not null;index:idx_mapping_part_offence,unique,priority:1" json:"schedulePartId"`
	OffenceID           uuid.UUID  `gorm:"type:uuid;column:offence_id;not null;index:idx_mapping_part_offence,unique,priority:2;index" json:"offenceId"`
	ScheduleParagraphID *uuid.UUID `gorm:"type:uuid;column:schedule_paragraph_id;index" json:"scheduleParagraphId,omitempty"`
	LineReference       string     `gorm:"column:line_reference;type:text" json:"lineReference,omitempty"`
	LegislationText     string     `gorm:"column:legislation_text;type:text" json:"legislationText,omitempty"`
	CreatedAt           time.Time  `gorm:"not null;default:now()" json:"createdDate"`
}

func (OffenceScheduleMapping) TableName() string { return "offence_schedule_mapping" }
