package services

import (
	"time"

	"github.com/google/uuid"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	domsched "github.com/opencourts/offence-registry-backend/internal/domain/schedules"
)

// buildScheduleInformation derives the offence code sets from the full
// schedule mapping graph. It is pure: everything it needs is passed in, so a
// rebuild is a read of four tables followed by this walk.
//
// Each schedule code feeds a fixed set: the 2003 Act Schedule 15 parts 1 and
// 2 feed the life-maximum sets (membership requires a life maximum on the
// offence), and the remaining codes feed their set unconditionally.
func buildScheduleInformation(
	scheds []*types.Schedule,
	parts []*types.SchedulePart,
	mappings []*types.OffenceScheduleMapping,
	offs []*types.Offence,
	generatedAt time.Time,
) *types.CachedScheduleInformation {
	info := domsched.NewCachedScheduleInformation(generatedAt)

	schedByID := make(map[uuid.UUID]*types.Schedule, len(scheds))
	for _, s := range scheds {
		schedByID[s.ID] = s
	}
	partByID := make(map[uuid.UUID]*types.SchedulePart, len(parts))
	for _, p := range parts {
		partByID[p.ID] = p
	}
	offByID := make(map[uuid.UUID]*types.Offence, len(offs))
	for _, o := range offs {
		offByID[o.ID] = o
	}

	for _, m := range mappings {
		part := partByID[m.SchedulePartID]
		if part == nil {
			continue
		}
		sched := schedByID[part.ScheduleID]
		if sched == nil {
			continue
		}
		off := offByID[m.OffenceID]
		if off == nil {
			continue
		}

		switch sched.Code {
		case domsched.Schedule15Code:
			if !off.MaxPeriodIsLife {
				continue
			}
			switch part.PartNumber {
			case 1:
				info.Part1LifeOffences[off.Code] = off.StartDate
			case 2:
				info.Part2LifeOffences[off.Code] = off.StartDate
			}
		case domsched.Schedule3Code:
			info.Schedule3Offences.Add(off.Code)
		case domsched.ScheduleSeriousViolentCode:
			info.SeriousViolentOffences.Add(off.Code)
		case domsched.ScheduleDomesticAbuseCode:
			info.DomesticAbuseOffences.Add(off.Code)
		case domsched.ScheduleNationalSecurityCode:
			info.NationalSecurityOffences.Add(off.Code)
		case domsched.ScheduleTerrorismCode:
			info.TerrorismOffences.Add(off.Code)
		case domsched.ScheduleSexualLegislationCode:
			info.SexualByLegislationOffences.Add(off.Code)
		case domsched.ScheduleSexualMappingCode:
			info.SexualScheduleMappingOffences.Add(off.Code)
		case domsched.ScheduleT3SexualCode:
			info.TrancheThreeSexualOffences.Add(off.Code)
		case domsched.ScheduleT3DomesticAbuseCode:
			info.TrancheThreeDomesticAbuseOffences.Add(off.Code)
		case domsched.ScheduleT3MurderCode:
			info.TrancheThreeMurderOffences.Add(off.Code)
		}
	}

	return info
}
