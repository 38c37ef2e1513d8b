package schedules

import "time"

// OffenceCodeSet is a membership set of offence codes.
type OffenceCodeSet map[string]struct{}

func (s OffenceCodeSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

func (s OffenceCodeSet) Add(code string) { s[code] = struct{}{} }

// DatedOffenceCodes maps an offence code to its start date, for the
// categorisations whose rules carry a date cutoff.
type DatedOffenceCodes map[string]time.Time

func (d DatedOffenceCodes) Contains(code string) bool {
	_, ok := d[code]
	return ok
}

// CachedScheduleInformation is a point-in-time snapshot of the named offence
// code sets derived from the schedule mapping graph. It has no identity of its
// own: it is rebuilt wholesale and never mutated incrementally.
type CachedScheduleInformation struct {
	// Schedule 15 mappings whose offence attracts a life maximum, split by part.
	Part1LifeOffences DatedOffenceCodes
	Part2LifeOffences DatedOffenceCodes

	SeriousViolentOffences OffenceCodeSet
	Schedule3Offences      OffenceCodeSet

	SexualByLegislationOffences   OffenceCodeSet
	SexualScheduleMappingOffences OffenceCodeSet
	DomesticAbuseOffences         OffenceCodeSet
	NationalSecurityOffences      OffenceCodeSet
	TerrorismOffences             OffenceCodeSet

	TrancheThreeSexualOffences        OffenceCodeSet
	TrancheThreeDomesticAbuseOffences OffenceCodeSet
	TrancheThreeMurderOffences        OffenceCodeSet

	GeneratedAt time.Time
}

// NewCachedScheduleInformation returns an empty snapshot with every set
// allocated, ready to be populated by a rebuild.
func NewCachedScheduleInformation(generatedAt time.Time) *CachedScheduleInformation {
	return &CachedScheduleInformation{
		Part1LifeOffences:                 DatedOffenceCodes{},
		Part2LifeOffences:                 DatedOffenceCodes{},
		SeriousViolentOffences:            OffenceCodeSet{},
		Schedule3Offences:                 OffenceCodeSet{},
		SexualByLegislationOffences:       OffenceCodeSet{},
		SexualScheduleMappingOffences:     OffenceCodeSet{},
		DomesticAbuseOffences:             OffenceCodeSet{},
		NationalSecurityOffences:          OffenceCodeSet{},
		TerrorismOffences:                 OffenceCodeSet{},
		TrancheThreeSexualOffences:        OffenceCodeSet{},
		TrancheThreeDomesticAbuseOffences: OffenceCodeSet{},
		TrancheThreeMurderOffences:        OffenceCodeSet{},
		GeneratedAt:                       generatedAt,
	}
}
