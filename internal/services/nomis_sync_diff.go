package services

import (
	"sort"
	"strings"
	"time"

	"github.com/opencourts/offence-registry-backend/internal/clients/nomis"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
)

// syncPlan is the complete set of pushes one reconciliation pass has decided
// on. Building the plan is pure; executing it is the service's job.
type syncPlan struct {
	statutesToCreate []nomis.Statute
	hoCodesToCreate  []nomis.HomeOfficeCode
	offencesToCreate []nomis.Offence
	offencesToUpdate []nomis.Offence
}

func (p syncPlan) empty() bool {
	return len(p.statutesToCreate) == 0 &&
		len(p.hoCodesToCreate) == 0 &&
		len(p.offencesToCreate) == 0 &&
		len(p.offencesToUpdate) == 0
}

// statuteDescriptions picks one description per statute prefix: the first
// non-blank acts-and-sections text in code order, falling back to the prefix
// itself. Local offences must already be sorted by code.
func statuteDescriptions(local []*types.Offence) map[string]string {
	out := map[string]string{}
	for _, off := range local {
		prefix := off.StatuteCode()
		if _, ok := out[prefix]; ok {
			continue
		}
		if desc := strings.TrimSpace(off.ActsAndSections); desc != "" {
			out[prefix] = desc
		}
	}
	for _, off := range local {
		prefix := off.StatuteCode()
		if _, ok := out[prefix]; !ok {
			out[prefix] = prefix
		}
	}
	return out
}

func toNomisStatute(prefix string, descriptions map[string]string) nomis.Statute {
	return nomis.Statute{
		Code:           prefix,
		Description:    descriptions[prefix],
		LegislatingAct: descriptions[prefix],
		ActiveFlag:     "Y",
	}
}

func toNomisOffence(off *types.Offence, descriptions map[string]string, at time.Time) nomis.Offence {
	var expiry *string
	if off.EndDate != nil {
		s := off.EndDate.Format("2006-01-02")
		expiry = &s
	}
	return nomis.Offence{
		Code:            off.Code,
		Description:     off.Description,
		CjsTitle:        off.CjsTitle,
		StatuteCode:     toNomisStatute(off.StatuteCode(), descriptions),
		HoCode:          off.NomisHoCode(),
		SeverityRanking: off.SeverityRanking(),
		ActiveFlag:      off.ActiveFlag(at),
		ExpiryDate:      expiry,
	}
}

// offenceDiffers compares the fields the target system stores, as exact
// strings. A difference in any one of them means a push.
func offenceDiffers(want, got nomis.Offence) bool {
	if want.Description != got.Description {
		return true
	}
	if want.CjsTitle != got.CjsTitle {
		return true
	}
	if want.SeverityRanking != got.SeverityRanking {
		return true
	}
	if !stringPtrEqual(want.HoCode, got.HoCode) {
		return true
	}
	if want.ActiveFlag != got.ActiveFlag {
		return true
	}
	if !stringPtrEqual(want.ExpiryDate, got.ExpiryDate) {
		return true
	}
	return false
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// buildSyncPlan reconciles the local offences against what the target system
// currently holds. Codes in the reactivated set were manually re-enabled in
// the target system and are left untouched. Missing statutes and home office
// codes are created ahead of the offences that reference them.
func buildSyncPlan(
	local []*types.Offence,
	remote []nomis.Offence,
	reactivated map[string]struct{},
	at time.Time,
) syncPlan {
	plan := syncPlan{}
	descriptions := statuteDescriptions(local)

	remoteByCode := make(map[string]nomis.Offence, len(remote))
	remoteStatutes := map[string]struct{}{}
	remoteHoCodes := map[string]struct{}{}
	for _, r := range remote {
		remoteByCode[r.Code] = r
		if r.StatuteCode.Code != "" {
			remoteStatutes[r.StatuteCode.Code] = struct{}{}
		}
		if r.HoCode != nil {
			remoteHoCodes[*r.HoCode] = struct{}{}
		}
	}

	statutesNeeded := map[string]struct{}{}
	hoCodesNeeded := map[string]struct{}{}

	for _, off := range local {
		if _, ok := reactivated[off.Code]; ok {
			continue
		}
		want := toNomisOffence(off, descriptions, at)

		got, exists := remoteByCode[off.Code]
		if !exists {
			plan.offencesToCreate = append(plan.offencesToCreate, want)
		} else if offenceDiffers(want, got) {
			plan.offencesToUpdate = append(plan.offencesToUpdate, want)
		} else {
			continue
		}

		if _, ok := remoteStatutes[want.StatuteCode.Code]; !ok {
			statutesNeeded[want.StatuteCode.Code] = struct{}{}
		}
		if want.HoCode != nil {
			if _, ok := remoteHoCodes[*want.HoCode]; !ok {
				hoCodesNeeded[*want.HoCode] = struct{}{}
			}
		}
	}

	for prefix := range statutesNeeded {
		plan.statutesToCreate = append(plan.statutesToCreate, toNomisStatute(prefix, descriptions))
	}
	sort.Slice(plan.statutesToCreate, func(i, j int) bool {
		return plan.statutesToCreate[i].Code < plan.statutesToCreate[j].Code
	})

	for code := range hoCodesNeeded {
		plan.hoCodesToCreate = append(plan.hoCodesToCreate, nomis.HomeOfficeCode{
			Code:        code,
			Description: code,
			ActiveFlag:  "Y",
		})
	}
	sort.Slice(plan.hoCodesToCreate, func(i, j int) bool {
		return plan.hoCodesToCreate[i].Code < plan.hoCodesToCreate[j].Code
	})

	return plan
}
