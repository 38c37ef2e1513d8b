package schedules

import "time"

// ListACutoffDate is the statutory cutoff for List A membership: only
// offences whose start date is strictly before 2022-06-28 qualify.
var ListACutoffDate = time.Date(2022, time.June, 28, 0, 0, 0, 0, time.UTC)

// Statute prefixes reserved for sexual offences. Any offence code beginning
// with one of these is classified SEXUAL regardless of schedule mappings.
var sexualStatutePrefixes = [...]string{"SX03", "SX56"}

// PcscMarkers records membership of the four sentencing lists for one code.
// Lists B and C are identical by statute and deliberately kept separate.
type PcscMarkers struct {
	OffenceCode string `json:"offenceCode"`
	InListA     bool   `json:"inListA"`
	InListB     bool   `json:"inListB"`
	InListC     bool   `json:"inListC"`
	InListD     bool   `json:"inListD"`
}

type ExclusionCategory string

const (
	ExclusionSexual           ExclusionCategory = "SEXUAL"
	ExclusionDomesticAbuse    ExclusionCategory = "DOMESTIC_ABUSE"
	ExclusionMurder           ExclusionCategory = "MURDER"
	ExclusionNationalSecurity ExclusionCategory = "NATIONAL_SECURITY"
	ExclusionTerrorism        ExclusionCategory = "TERRORISM"
	ExclusionViolent          ExclusionCategory = "VIOLENT"
	ExclusionNone             ExclusionCategory = "NONE"
)

type ScheduleCategory string

const (
	CategorySexual  ScheduleCategory = "SEXUAL"
	CategoryViolent ScheduleCategory = "VIOLENT"
	CategoryNone    ScheduleCategory = "NONE"
)

// PcscMarkers derives sentencing-list membership for one offence code.
func (ci *CachedScheduleInformation) PcscMarkers(code string) PcscMarkers {
	inPart1 := ci.Part1LifeOffences.Contains(code)
	inPart2 := ci.Part2LifeOffences.Contains(code)
	seriousViolent := ci.SeriousViolentOffences.Contains(code)

	listA := false
	if start, ok := ci.Part1LifeOffences[code]; ok && start.Before(ListACutoffDate) {
		listA = true
	}
	if start, ok := ci.Part2LifeOffences[code]; ok && start.Before(ListACutoffDate) {
		listA = true
	}

	// Lists B and C share one rule but are separate statutory outputs.
	listB := seriousViolent || inPart2
	listC := seriousViolent || inPart2

	return PcscMarkers{
		OffenceCode: code,
		InListA:     listA,
		InListB:     listB,
		InListC:     listC,
		InListD:     inPart1 || inPart2,
	}
}

// ExclusionCategory assigns exactly one exclusion label per code. The
// evaluation order is fixed and order-sensitive: sexual dominates domestic
// abuse, which dominates the remaining categories. When trancheThree is
// enabled the tranche three sets are consulted ahead of the base conditions
// for the labels they extend, and murder becomes classifiable.
func (ci *CachedScheduleInformation) ExclusionCategory(code string, trancheThree bool) ExclusionCategory {
	if trancheThree && ci.TrancheThreeSexualOffences.Contains(code) {
		return ExclusionSexual
	}
	if ci.isSexual(code) {
		return ExclusionSexual
	}
	if trancheThree && ci.TrancheThreeDomesticAbuseOffences.Contains(code) {
		return ExclusionDomesticAbuse
	}
	if ci.DomesticAbuseOffences.Contains(code) {
		return ExclusionDomesticAbuse
	}
	if trancheThree && ci.TrancheThreeMurderOffences.Contains(code) {
		return ExclusionMurder
	}
	if ci.NationalSecurityOffences.Contains(code) {
		return ExclusionNationalSecurity
	}
	if ci.TerrorismOffences.Contains(code) {
		return ExclusionTerrorism
	}
	if ci.Part1LifeOffences.Contains(code) {
		return ExclusionViolent
	}
	return ExclusionNone
}

// ScheduleCategory is the non-exclusion classification: sexual takes priority
// over violent when both apply.
func (ci *CachedScheduleInformation) ScheduleCategory(code string) ScheduleCategory {
	if ci.Schedule3Offences.Contains(code) || ci.Part2LifeOffences.Contains(code) {
		return CategorySexual
	}
	if ci.Part1LifeOffences.Contains(code) {
		return CategoryViolent
	}
	return CategoryNone
}

func (ci *CachedScheduleInformation) isSexual(code string) bool {
	if ci.Part2LifeOffences.Contains(code) {
		return true
	}
	if len(code) >= 4 {
		for _, prefix := range sexualStatutePrefixes {
			if code[:4] == prefix {
				return true
			}
		}
	}
	return ci.SexualByLegislationOffences.Contains(code) ||
		ci.SexualScheduleMappingOffences.Contains(code)
}
