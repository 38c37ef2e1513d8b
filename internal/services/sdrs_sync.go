package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	sdrsclient "github.com/opencourts/offence-registry-backend/internal/clients/sdrs"
	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	domoff "github.com/opencourts/offence-registry-backend/internal/domain/offences"
	domsdrs "github.com/opencourts/offence-registry-backend/internal/domain/sdrs"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// SdrsSyncService pulls offence definitions from the reference source, shard
// by shard. Each shard is loaded in its own transaction, so one failing shard
// is recorded as FAIL and retried next run without holding up the rest.
type SdrsSyncService interface {
	Synchronize(dbc dbctx.Context) error
	FullLoad(dbc dbctx.Context) error
	LoadResults(dbc dbctx.Context) ([]*types.SdrsLoadResult, error)
}

type sdrsSyncService struct {
	db  *gorm.DB
	log *logger.Logger

	offenceRepo    repos.OffenceRepo
	statuteRepo    repos.StatuteRepo
	toSyncRepo     repos.OffenceToSyncRepo
	eventRepo      repos.EventToRaiseRepo
	loadResultRepo repos.SdrsLoadResultRepo
	loadHistory    repos.SdrsLoadResultHistoryRepo
	toggles        FeatureToggleService
	cache          ScheduleCacheService
	sdrs           sdrsclient.Client

	now func() time.Time
}

func NewSdrsSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	offenceRepo repos.OffenceRepo,
	statuteRepo repos.StatuteRepo,
	toSyncRepo repos.OffenceToSyncRepo,
	eventRepo repos.EventToRaiseRepo,
	loadResultRepo repos.SdrsLoadResultRepo,
	loadHistory repos.SdrsLoadResultHistoryRepo,
	toggles FeatureToggleService,
	cache ScheduleCacheService,
	client sdrsclient.Client,
) SdrsSyncService {
	return &sdrsSyncService{
		db:             db,
		log:            baseLog.With("service", "SdrsSyncService"),
		offenceRepo:    offenceRepo,
		statuteRepo:    statuteRepo,
		toSyncRepo:     toSyncRepo,
		eventRepo:      eventRepo,
		loadResultRepo: loadResultRepo,
		loadHistory:    loadHistory,
		toggles:        toggles,
		cache:          cache,
		sdrs:           client,
		now:            time.Now,
	}
}

func (s *sdrsSyncService) LoadResults(dbc dbctx.Context) ([]*types.SdrsLoadResult, error) {
	return s.loadResultRepo.FindAll(dbc)
}

// Synchronize consults the reference source's control table and reloads only
// the shards that are out of date, have never loaded, or failed last time.
func (s *sdrsSyncService) Synchronize(dbc dbctx.Context) error {
	enabled, err := s.toggles.IsEnabled(dbc, types.FeatureSyncSdrs)
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Info("reference source sync disabled by feature toggle")
		return nil
	}

	control, err := s.sdrs.ControlTable(dbc.Ctx)
	if err != nil {
		return err
	}
	lastUpdates := make(map[types.SdrsCache]time.Time, len(control))
	for _, rec := range control {
		lastUpdates[types.SdrsCache(rec.DataSet)] = rec.LastUpdate
	}

	prior, err := s.loadResultStates(dbc)
	if err != nil {
		return err
	}

	loaded := 0
	for _, cache := range domsdrs.AllCaches() {
		loadType, needed := shardLoadDecision(prior[cache], lastUpdates[cache])
		if !needed {
			continue
		}
		loaded++
		s.loadShard(dbc, cache, loadType, prior[cache])
	}

	if loaded > 0 {
		s.cache.Evict()
	}
	s.log.Info("reference source sync completed", "shards_loaded", loaded)
	return nil
}

// FullLoad reloads every shard from scratch regardless of the control table.
func (s *sdrsSyncService) FullLoad(dbc dbctx.Context) error {
	prior, err := s.loadResultStates(dbc)
	if err != nil {
		return err
	}
	for _, cache := range domsdrs.AllCaches() {
		s.loadShard(dbc, cache, types.LoadTypeFull, prior[cache])
	}
	s.cache.Evict()
	s.log.Info("reference source full load completed")
	return nil
}

func (s *sdrsSyncService) loadResultStates(dbc dbctx.Context) (map[types.SdrsCache]*types.SdrsLoadResult, error) {
	rows, err := s.loadResultRepo.FindAll(dbc)
	if err != nil {
		return nil, err
	}
	out := make(map[types.SdrsCache]*types.SdrsLoadResult, len(rows))
	for _, r := range rows {
		out[r.Cache] = r
	}
	return out, nil
}

// shardLoadDecision decides whether a shard needs loading and how. A shard
// that never succeeded gets a full load; a shard whose control-table
// timestamp moved past the last successful load gets a delta.
func shardLoadDecision(prior *types.SdrsLoadResult, lastUpdate time.Time) (types.LoadType, bool) {
	if prior == nil || prior.LastSuccessfulLoadDate == nil {
		return types.LoadTypeFull, true
	}
	if prior.Status == types.LoadStatusFail {
		return types.LoadTypeDelta, true
	}
	if !lastUpdate.IsZero() && lastUpdate.After(*prior.LastSuccessfulLoadDate) {
		return types.LoadTypeDelta, true
	}
	return "", false
}

// loadShard runs one shard end to end. Failures are recorded against the
// shard and do not propagate: the control table will drive a retry.
func (s *sdrsSyncService) loadShard(dbc dbctx.Context, cache types.SdrsCache, loadType types.LoadType, prior *types.SdrsLoadResult) {
	started := s.now()

	var since *time.Time
	if loadType == types.LoadTypeDelta && prior != nil {
		since = prior.LastSuccessfulLoadDate
	}

	incoming, err := s.fetchShard(dbc, cache, loadType, since)
	if err != nil {
		var notFound *sdrsclient.CacheNotFoundError
		if errors.As(err, &notFound) {
			s.log.Warn("reference source has no cache file yet", "cache", cache)
		} else {
			s.log.Error("reference source fetch failed", "cache", cache, "error", err)
		}
		s.recordLoad(dbc, cache, loadType, prior, started, false, false)
		return
	}

	changed := 0
	err = s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		n, err := s.applyShard(txc, incoming)
		changed = n
		return err
	})
	if err != nil {
		s.log.Error("reference source load failed", "cache", cache, "load_type", loadType, "error", err)
		s.recordLoad(dbc, cache, loadType, prior, started, false, false)
		return
	}

	s.recordLoad(dbc, cache, loadType, prior, started, true, changed > 0)
	s.log.Info("reference source shard loaded",
		"cache", cache, "load_type", loadType, "received", len(incoming), "changed", changed)
}

func (s *sdrsSyncService) fetchShard(dbc dbctx.Context, cache types.SdrsCache, loadType types.LoadType, since *time.Time) ([]sdrsclient.Offence, error) {
	all := loadType == types.LoadTypeFull
	if all {
		since = nil
	}
	if alpha, ok := cache.AlphaChar(); ok {
		return s.sdrs.Offences(dbc.Ctx, alpha, all, since)
	}
	switch cache {
	case domsdrs.CacheApplications:
		return s.sdrs.Applications(dbc.Ctx, all, since)
	default:
		return s.sdrs.MojOffences(dbc.Ctx, all, since)
	}
}

// applyShard upserts the incoming records, queues every new or changed code
// for target-system sync plus an outbox event, and re-links inchoate children
// to their parents. It returns the number of changed offences.
func (s *sdrsSyncService) applyShard(dbc dbctx.Context, incoming []sdrsclient.Offence) (int, error) {
	if len(incoming) == 0 {
		return 0, nil
	}

	codes := make([]string, 0, len(incoming))
	for _, rec := range incoming {
		codes = append(codes, rec.Code)
	}
	existing, err := s.offenceRepo.GetByCodes(dbc, codes)
	if err != nil {
		return 0, err
	}
	existingByCode := make(map[string]*types.Offence, len(existing))
	for _, off := range existing {
		existingByCode[off.Code] = off
	}

	var (
		toUpsert []*types.Offence
		queue    []*types.OffenceToSyncWithNomis
		events   []*types.EventToRaise
	)
	for i := range incoming {
		rec := &incoming[i]
		off := fromSdrsOffence(rec)
		prior := existingByCode[rec.Code]

		if prior != nil && prior.RevisionID == off.RevisionID && prior.ChangedDate.Equal(off.ChangedDate) {
			continue
		}
		toUpsert = append(toUpsert, off)

		reason := types.ReasonOffenceUpdate
		if prior != nil && hoCodeChanged(prior, off) {
			reason = types.ReasonHoCodeUpdate
		}
		queue = append(queue, &types.OffenceToSyncWithNomis{OffenceCode: off.Code, Reason: reason})
		if off.EndDate != nil && !off.HasEndDatePassed(s.now()) {
			queue = append(queue, &types.OffenceToSyncWithNomis{
				OffenceCode: off.Code,
				Reason:      types.ReasonFutureEndDated,
			})
		}
		payload, err := json.Marshal(off)
		if err != nil {
			return 0, err
		}
		events = append(events, &types.EventToRaise{
			OffenceCode: off.Code,
			EventType:   types.EventOffenceChanged,
			Payload:     payload,
		})
	}
	if len(toUpsert) == 0 {
		return 0, nil
	}

	if err := s.offenceRepo.Upsert(dbc, toUpsert); err != nil {
		return 0, err
	}
	if err := s.upsertStatutes(dbc, toUpsert); err != nil {
		return 0, err
	}
	if err := s.linkParents(dbc, toUpsert); err != nil {
		return 0, err
	}
	if err := s.toSyncRepo.Create(dbc, queue); err != nil {
		return 0, err
	}
	if err := s.eventRepo.Create(dbc, events); err != nil {
		return 0, err
	}
	return len(toUpsert), nil
}

// upsertStatutes keeps the local statute table in step with the offences just
// loaded, one row per four character prefix.
func (s *sdrsSyncService) upsertStatutes(dbc dbctx.Context, upserted []*types.Offence) error {
	descriptions := statuteDescriptions(upserted)
	seen := map[string]struct{}{}
	var statutes []*types.Statute
	for _, off := range upserted {
		prefix := off.StatuteCode()
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		statutes = append(statutes, &types.Statute{
			Code:           prefix,
			Description:    descriptions[prefix],
			LegislationAct: descriptions[prefix],
		})
	}
	return s.statuteRepo.Upsert(dbc, statutes)
}

// linkParents points every upserted inchoate child at its parent row, and
// adopts any pre-existing orphan children of upserted parents.
func (s *sdrsSyncService) linkParents(dbc dbctx.Context, upserted []*types.Offence) error {
	parentCodes := map[string]struct{}{}
	for _, off := range upserted {
		if p := off.ParentCode(); p != nil {
			parentCodes[*p] = struct{}{}
		}
		if len(off.Code) == 7 {
			parentCodes[off.Code] = struct{}{}
		}
	}
	if len(parentCodes) == 0 {
		return nil
	}
	codes := make([]string, 0, len(parentCodes))
	for code := range parentCodes {
		codes = append(codes, code)
	}
	parents, err := s.offenceRepo.GetByCodes(dbc, codes)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		children, err := s.offenceRepo.FindChildren(dbc, parent.Code)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.ParentOffenceID != nil && *child.ParentOffenceID == parent.ID {
				continue
			}
			parentID := parent.ID
			if err := s.offenceRepo.SetParentOffenceID(dbc, child.ID, &parentID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *sdrsSyncService) recordLoad(dbc dbctx.Context, cache types.SdrsCache, loadType types.LoadType, prior *types.SdrsLoadResult, started time.Time, success, changed bool) {
	status := types.LoadStatusFail
	result := &types.SdrsLoadResult{
		Cache:    cache,
		Status:   status,
		LoadType: loadType,
		LoadDate: &started,
	}
	if prior != nil {
		result.LastSuccessfulLoadDate = prior.LastSuccessfulLoadDate
		result.NomisSyncRequired = prior.NomisSyncRequired
	}
	if success {
		result.Status = types.LoadStatusSuccess
		result.LastSuccessfulLoadDate = &started
		if changed {
			result.NomisSyncRequired = true
		}
	}

	if err := s.loadResultRepo.Upsert(dbc, result); err != nil {
		s.log.Error("failed to record shard load result", "cache", cache, "error", err)
		return
	}
	if err := s.loadHistory.Create(dbc, &types.SdrsLoadResultHistory{
		Cache:             cache,
		Status:            result.Status,
		LoadType:          loadType,
		LoadDate:          &started,
		NomisSyncRequired: result.NomisSyncRequired,
	}); err != nil {
		s.log.Error("failed to record shard load history", "cache", cache, "error", err)
	}
}

func fromSdrsOffence(rec *sdrsclient.Offence) *types.Offence {
	off := &types.Offence{
		Code:                        rec.Code,
		Description:                 rec.Description,
		CjsTitle:                    rec.CjsTitle,
		RevisionID:                  rec.OffenceRevisionID,
		StartDate:                   rec.OffenceStartDate,
		EndDate:                     rec.OffenceEndDate,
		Category:                    rec.Category,
		SubCategory:                 rec.SubCategory,
		ActsAndSections:             rec.OffenceActsAndSections,
		CustodialIndicator:          domoff.CustodialIndicator(rec.CustodialIndicator),
		MaxPeriodOfIndictmentYears:  rec.MaxPeriodOfIndictmentYears,
		MaxPeriodOfIndictmentMonths: rec.MaxPeriodOfIndictmentMonths,
		MaxPeriodOfIndictmentWeeks:  rec.MaxPeriodOfIndictmentWeeks,
		MaxPeriodOfIndictmentDays:   rec.MaxPeriodOfIndictmentDays,
		ChangedDate:                 rec.ChangedDate,
	}
	if rec.MaxPeriodIsLife != nil {
		off.MaxPeriodIsLife = *rec.MaxPeriodIsLife
	}
	return off
}

func hoCodeChanged(prior, next *types.Offence) bool {
	return !stringPtrEqual(prior.HomeOfficeStatsCode(), next.HomeOfficeStatsCode())
}
