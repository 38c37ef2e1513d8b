package offences

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CustodialIndicator string

const (
	CustodialYes    CustodialIndicator = "Y"
	CustodialNo     CustodialIndicator = "N"
	CustodialEither CustodialIndicator = "E"
)

// Offence is the locally held copy of a reference-source offence definition.
// The code is the natural key: a 4 character statute prefix, up to 4 further
// alphanumerics, and for inchoate variants a trailing letter beyond 7 chars.
// Rows are never deleted; retirement is expressed through EndDate.
type Offence struct {
	ID                          uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code                        string             `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Description                 string             `gorm:"column:description;type:text" json:"description"`
	CjsTitle                    string             `gorm:"column:cjs_title;type:text" json:"cjsTitle,omitempty"`
	RevisionID                  int                `gorm:"column:revision_id;not null;default:0" json:"revisionId"`
	StartDate                   time.Time          `gorm:"column:start_date;type:date;not null" json:"startDate"`
	EndDate                     *time.Time         `gorm:"column:end_date;type:date" json:"endDate,omitempty"`
	Category                    *int               `gorm:"column:category" json:"category,omitempty"`
	SubCategory                 *int               `gorm:"column:sub_category" json:"subCategory,omitempty"`
	ActsAndSections             string             `gorm:"column:acts_and_sections;type:text" json:"actsAndSections,omitempty"`
	CustodialIndicator          CustodialIndicator `gorm:"column:custodial_indicator" json:"custodialIndicator,omitempty"`
	MaxPeriodIsLife             bool               `gorm:"column:max_period_is_life;not null;default:false" json:"maxPeriodIsLife"`
	MaxPeriodOfIndictmentYears  *int               `gorm:"column:max_period_of_indictment_years" json:"maxPeriodOfIndictmentYears,omitempty"`
	MaxPeriodOfIndictmentMonths *int               `gorm:"column:max_period_of_indictment_months" json:"maxPeriodOfIndictmentMonths,omitempty"`
	MaxPeriodOfIndictmentWeeks  *int               `gorm:"column:max_period_of_indictment_weeks" json:"maxPeriodOfIndictmentWeeks,omitempty"`
	MaxPeriodOfIndictmentDays   *int               `gorm:"column:max_period_of_indictment_days" json:"maxPeriodOfIndictmentDays,omitempty"`
	ParentOffenceID             *uuid.UUID         `gorm:"type:uuid;column:parent_offence_id;index" json:"parentOffenceId,omitempty"`
	ChangedDate                 time.Time          `gorm:"column:changed_date;not null" json:"changedDate"`
	CreatedAt                   time.Time          `gorm:"not null;default:now()" json:"createdDate"`
	UpdatedAt                   time.Time          `gorm:"not null;default:now()" json:"lastUpdatedDate"`
}

func (Offence) TableName() string { return "offence" }

// StatuteCode is the first four characters of the offence code.
func (o *Offence) StatuteCode() string {
	if len(o.Code) < 4 {
		return o.Code
	}
	return o.Code[:4]
}

// HomeOfficeStatsCode is nil when both category parts are nil; otherwise the
// zero padded category (3 digits) and sub-category (2 digits) joined by a
// slash, with a nil side left empty.
func (o *Offence) HomeOfficeStatsCode() *string {
	if o.Category == nil && o.SubCategory == nil {
		return nil
	}
	left, right := "", ""
	if o.Category != nil {
		left = fmt.Sprintf("%03d", *o.Category)
	}
	if o.SubCategory != nil {
		right = fmt.Sprintf("%02d", *o.SubCategory)
	}
	s := left + "/" + right
	return &s
}

// NomisHoCode renders the home office code the way the target system stores
// it: blank padded rather than zero padded.
func (o *Offence) NomisHoCode() *string {
	if o.Category == nil && o.SubCategory == nil {
		return nil
	}
	left, right := "   ", "  "
	if o.Category != nil {
		left = fmt.Sprintf("%3d", *o.Category)
	}
	if o.SubCategory != nil {
		right = fmt.Sprintf("%2d", *o.SubCategory)
	}
	s := left + "/" + right
	return &s
}

// SeverityRanking is the legislation-derived ranking pushed to the target
// system: the category, defaulting to 99 when the category is absent or zero.
func (o *Offence) SeverityRanking() string {
	if o.Category == nil || *o.Category == 0 {
		return "99"
	}
	return fmt.Sprintf("%d", *o.Category)
}

// ActiveFlag is "Y" unless the end date has passed as of the given day.
func (o *Offence) ActiveFlag(at time.Time) string {
	if o.HasEndDatePassed(at) {
		return "N"
	}
	return "Y"
}

func (o *Offence) HasEndDatePassed(at time.Time) bool {
	if o.EndDate == nil {
		return false
	}
	return o.EndDate.Before(truncateToDay(at))
}

// IsChild reports whether the code marks an inchoate variant of a parent
// offence (anything beyond seven characters).
func (o *Offence) IsChild() bool { return len(o.Code) > 7 }

// ParentCode is the first seven characters of the code for child offences.
func (o *Offence) ParentCode() *string {
	if len(o.Code) < 8 {
		return nil
	}
	p := o.Code[:7]
	return &p
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
