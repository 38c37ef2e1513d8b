package domain

import (
	"github.com/opencourts/offence-registry-backend/internal/domain/offences"
	"github.com/opencourts/offence-registry-backend/internal/domain/schedules"
	"github.com/opencourts/offence-registry-backend/internal/domain/sdrs"
)

type Offence = offences.Offence
type Statute = offences.Statute
type OffenceToSyncWithNomis = offences.OffenceToSyncWithNomis
type EventToRaise = offences.EventToRaise
type OffenceReactivatedInNomis = offences.OffenceReactivatedInNomis
type NomisChangeHistory = offences.NomisChangeHistory
type FeatureToggle = offences.FeatureToggle

type Schedule = schedules.Schedule
type SchedulePart = schedules.SchedulePart
type ScheduleParagraph = schedules.ScheduleParagraph
type OffenceScheduleMapping = schedules.OffenceScheduleMapping
type CachedScheduleInformation = schedules.CachedScheduleInformation
type PcscMarkers = schedules.PcscMarkers

type SdrsLoadResult = sdrs.SdrsLoadResult
type SdrsLoadResultHistory = sdrs.SdrsLoadResultHistory

type Feature = offences.Feature
type ChangeType = offences.ChangeType
type NomisChangeType = offences.NomisChangeType
type SyncToNomisReason = offences.SyncToNomisReason
type EventType = offences.EventType
type ExclusionCategory = schedules.ExclusionCategory
type ScheduleCategory = schedules.ScheduleCategory
type SdrsCache = sdrs.Cache
type LoadStatus = sdrs.LoadStatus
type LoadType = sdrs.LoadType

const (
	FeatureFullSyncNomis       = offences.FeatureFullSyncNomis
	FeatureDeltaSyncNomis      = offences.FeatureDeltaSyncNomis
	FeatureSyncSdrs            = offences.FeatureSyncSdrs
	FeaturePublishEvents       = offences.FeaturePublishEvents
	FeatureT3OffenceExclusions = offences.FeatureT3OffenceExclusions

	ChangeInsert = offences.ChangeInsert
	ChangeUpdate = offences.ChangeUpdate

	NomisChangeOffence        = offences.NomisChangeOffence
	NomisChangeStatute        = offences.NomisChangeStatute
	NomisChangeHomeOfficeCode = offences.NomisChangeHomeOfficeCode

	ReasonOffenceUpdate  = offences.ReasonOffenceUpdate
	ReasonHoCodeUpdate   = offences.ReasonHoCodeUpdate
	ReasonFutureEndDated = offences.ReasonFutureEndDated

	EventOffenceChanged = offences.EventOffenceChanged

	LoadStatusSuccess = sdrs.LoadStatusSuccess
	LoadStatusFail    = sdrs.LoadStatusFail
	LoadTypeFull      = sdrs.LoadTypeFull
	LoadTypeDelta     = sdrs.LoadTypeDelta
)
