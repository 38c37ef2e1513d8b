package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/clients/nomis"
	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	apperrors "github.com/opencourts/offence-registry-backend/internal/pkg/errors"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// NomisSyncService reconciles the local offence registry into the target
// system. Full sync walks every alphabetic partition; delta sync drains the
// dirty queue plus any partitions flagged by the reference-source loads.
// Queue entries and partition flags are only cleared after their pushes
// succeed, so a failed run is retried in full on the next schedule.
type NomisSyncService interface {
	FullSync(dbc dbctx.Context) error
	DeltaSync(dbc dbctx.Context) error
	ChangeHistory(dbc dbctx.Context, since time.Time) ([]*types.NomisChangeHistory, error)
	MarkReactivated(dbc dbctx.Context, offenceCode, user string) error
	ClearReactivated(dbc dbctx.Context, offenceCode string) error
}

type nomisSyncService struct {
	db  *gorm.DB
	log *logger.Logger

	offenceRepo     repos.OffenceRepo
	toSyncRepo      repos.OffenceToSyncRepo
	historyRepo     repos.NomisChangeHistoryRepo
	reactivatedRepo repos.OffenceReactivatedRepo
	loadResultRepo  repos.SdrsLoadResultRepo
	toggles         FeatureToggleService
	nomis           nomis.Client

	now func() time.Time
}

func NewNomisSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	offenceRepo repos.OffenceRepo,
	toSyncRepo repos.OffenceToSyncRepo,
	historyRepo repos.NomisChangeHistoryRepo,
	reactivatedRepo repos.OffenceReactivatedRepo,
	loadResultRepo repos.SdrsLoadResultRepo,
	toggles FeatureToggleService,
	nomisClient nomis.Client,
) NomisSyncService {
	return &nomisSyncService{
		db:              db,
		log:             baseLog.With("service", "NomisSyncService"),
		offenceRepo:     offenceRepo,
		toSyncRepo:      toSyncRepo,
		historyRepo:     historyRepo,
		reactivatedRepo: reactivatedRepo,
		loadResultRepo:  loadResultRepo,
		toggles:         toggles,
		nomis:           nomisClient,
		now:             time.Now,
	}
}

func (s *nomisSyncService) FullSync(dbc dbctx.Context) error {
	enabled, err := s.toggles.IsEnabled(dbc, types.FeatureFullSyncNomis)
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Info("full sync disabled by feature toggle")
		return nil
	}

	reactivated, err := s.reactivatedCodes(dbc)
	if err != nil {
		return err
	}

	failed := 0
	for ch := byte('A'); ch <= 'Z'; ch++ {
		prefix := string(ch)
		if err := s.syncPrefix(dbc, prefix, reactivated); err != nil {
			failed++
			s.log.Error("full sync failed for partition", "prefix", prefix, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("full sync: %d of 26 partitions failed", failed)
	}
	s.log.Info("full sync completed")
	return nil
}

func (s *nomisSyncService) DeltaSync(dbc dbctx.Context) error {
	enabled, err := s.toggles.IsEnabled(dbc, types.FeatureDeltaSyncNomis)
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Info("delta sync disabled by feature toggle")
		return nil
	}

	reactivated, err := s.reactivatedCodes(dbc)
	if err != nil {
		return err
	}

	if err := s.syncFlaggedPartitions(dbc, reactivated); err != nil {
		return err
	}
	return s.drainDirtyQueue(dbc, reactivated)
}

func (s *nomisSyncService) ChangeHistory(dbc dbctx.Context, since time.Time) ([]*types.NomisChangeHistory, error) {
	return s.historyRepo.FindSince(dbc, since)
}

// MarkReactivated records that a user manually re-enabled the code in the
// target system; reconciliation leaves such codes alone from then on.
func (s *nomisSyncService) MarkReactivated(dbc dbctx.Context, offenceCode, user string) error {
	if offenceCode == "" {
		return fmt.Errorf("offence code required: %w", apperrors.ErrInvalidArgument)
	}
	s.log.Info("marking offence as reactivated in target system", "offence_code", offenceCode, "user", user)
	return s.reactivatedRepo.Upsert(dbc, &types.OffenceReactivatedInNomis{
		OffenceCode:       offenceCode,
		ReactivatedByUser: user,
	})
}

func (s *nomisSyncService) ClearReactivated(dbc dbctx.Context, offenceCode string) error {
	if offenceCode == "" {
		return fmt.Errorf("offence code required: %w", apperrors.ErrInvalidArgument)
	}
	return s.reactivatedRepo.DeleteByCode(dbc, offenceCode)
}

// syncFlaggedPartitions re-reconciles the alphabetic partitions the
// reference-source loads marked as changed. Each partition's flag is cleared
// only once its reconciliation succeeds.
func (s *nomisSyncService) syncFlaggedPartitions(dbc dbctx.Context, reactivated map[string]struct{}) error {
	flagged, err := s.loadResultRepo.FindNomisSyncRequired(dbc)
	if err != nil {
		return err
	}
	var cleared []types.SdrsCache
	for _, lr := range flagged {
		alpha, ok := lr.Cache.AlphaChar()
		if !ok {
			// Auxiliary feeds have no partition of their own; their offences
			// are queued individually during the load.
			cleared = append(cleared, lr.Cache)
			continue
		}
		if err := s.syncPrefix(dbc, alpha, reactivated); err != nil {
			s.log.Error("delta sync failed for flagged partition", "cache", lr.Cache, "error", err)
			continue
		}
		cleared = append(cleared, lr.Cache)
	}
	return s.loadResultRepo.ClearNomisSyncRequired(dbc, cleared)
}

// drainDirtyQueue pushes every queued offence, grouped by statute prefix so
// each target-system read covers a whole statute. Future-end-dated entries
// are held back until the end date passes, at which point only the active
// flag is pushed.
func (s *nomisSyncService) drainDirtyQueue(dbc dbctx.Context, reactivated map[string]struct{}) error {
	entries, err := s.toSyncRepo.FindAll(dbc)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	var done []uuid.UUID
	codesByPrefix := map[string][]string{}
	entryIDsByPrefix := map[string][]uuid.UUID{}

	for _, e := range entries {
		if e.Reason == types.ReasonFutureEndDated {
			handled, err := s.handleFutureEndDated(dbc, e)
			if err != nil {
				s.log.Error("delta sync failed for future end-dated offence",
					"offence_code", e.OffenceCode, "error", err)
				continue
			}
			if handled {
				done = append(done, e.ID)
			}
			continue
		}
		if len(e.OffenceCode) < 4 {
			// Malformed entry; drop it rather than retry forever.
			s.log.Warn("dropping dirty-queue entry with malformed code", "offence_code", e.OffenceCode)
			done = append(done, e.ID)
			continue
		}
		prefix := e.OffenceCode[:4]
		codesByPrefix[prefix] = append(codesByPrefix[prefix], e.OffenceCode)
		entryIDsByPrefix[prefix] = append(entryIDsByPrefix[prefix], e.ID)
	}

	failed := 0
	for prefix, codes := range codesByPrefix {
		if err := s.syncCodes(dbc, prefix, codes, reactivated); err != nil {
			failed++
			s.log.Error("delta sync failed for statute group", "statute", prefix, "error", err)
			continue
		}
		done = append(done, entryIDsByPrefix[prefix]...)
	}

	if err := s.toSyncRepo.DeleteByIDs(dbc, done); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("delta sync: %d statute groups failed", failed)
	}
	s.log.Info("delta sync completed", "entries_cleared", len(done))
	return nil
}

// handleFutureEndDated reports whether the entry is finished with. An entry
// whose end date is still in the future stays queued.
func (s *nomisSyncService) handleFutureEndDated(dbc dbctx.Context, e *types.OffenceToSyncWithNomis) (bool, error) {
	off, err := s.offenceRepo.GetByCode(dbc, e.OffenceCode)
	if err != nil {
		return false, err
	}
	if off == nil {
		// The offence went away; nothing left to deactivate.
		return true, nil
	}
	if off.EndDate == nil {
		// The end date was withdrawn before it arrived.
		return true, nil
	}
	if !off.HasEndDatePassed(s.now()) {
		return false, nil
	}
	expiry := off.EndDate.Format("2006-01-02")
	if err := s.nomis.UpdateOffenceActiveFlag(dbc.Ctx, off.Code, "N", &expiry); err != nil {
		return false, err
	}
	if err := s.recordHistory(dbc, []nomis.Offence{{Code: off.Code, Description: off.Description}},
		types.ChangeUpdate, types.NomisChangeOffence); err != nil {
		return false, err
	}
	s.log.Info("deactivated end-dated offence in target system", "offence_code", off.Code)
	return true, nil
}

// syncPrefix reconciles every local offence whose code starts with prefix
// against the target system's view of the same prefix.
func (s *nomisSyncService) syncPrefix(dbc dbctx.Context, prefix string, reactivated map[string]struct{}) error {
	local, err := s.offenceRepo.FindByCodePrefix(dbc, prefix)
	if err != nil {
		return err
	}
	if len(local) == 0 {
		return nil
	}
	return s.reconcile(dbc, prefix, local, reactivated)
}

// syncCodes reconciles a specific set of codes sharing one statute prefix,
// pulling in the inchoate children of any parent code in the set.
func (s *nomisSyncService) syncCodes(dbc dbctx.Context, prefix string, codes []string, reactivated map[string]struct{}) error {
	expanded := map[string]struct{}{}
	for _, code := range codes {
		expanded[code] = struct{}{}
		if len(code) == 7 {
			children, err := s.offenceRepo.FindChildren(dbc, code)
			if err != nil {
				return err
			}
			for _, child := range children {
				expanded[child.Code] = struct{}{}
			}
		}
	}
	all := make([]string, 0, len(expanded))
	for code := range expanded {
		all = append(all, code)
	}

	local, err := s.offenceRepo.GetByCodes(dbc, all)
	if err != nil {
		return err
	}
	if len(local) == 0 {
		return nil
	}
	return s.reconcile(dbc, prefix, local, reactivated)
}

func (s *nomisSyncService) reconcile(dbc dbctx.Context, prefix string, local []*types.Offence, reactivated map[string]struct{}) error {
	remote, err := s.fetchRemote(dbc, prefix)
	if err != nil {
		return err
	}

	plan := buildSyncPlan(local, remote, reactivated, s.now())
	if plan.empty() {
		return nil
	}

	if len(plan.statutesToCreate) > 0 {
		if err := s.nomis.CreateStatutes(dbc.Ctx, plan.statutesToCreate); err != nil {
			return fmt.Errorf("create statutes for %s: %w", prefix, err)
		}
		if err := s.recordStatuteHistory(dbc, plan.statutesToCreate); err != nil {
			return err
		}
	}
	if len(plan.hoCodesToCreate) > 0 {
		if err := s.nomis.CreateHomeOfficeCodes(dbc.Ctx, plan.hoCodesToCreate); err != nil {
			return fmt.Errorf("create home office codes for %s: %w", prefix, err)
		}
		if err := s.recordHoCodeHistory(dbc, plan.hoCodesToCreate); err != nil {
			return err
		}
	}
	if len(plan.offencesToCreate) > 0 {
		if err := s.nomis.CreateOffences(dbc.Ctx, plan.offencesToCreate); err != nil {
			return fmt.Errorf("create offences for %s: %w", prefix, err)
		}
		if err := s.recordHistory(dbc, plan.offencesToCreate, types.ChangeInsert, types.NomisChangeOffence); err != nil {
			return err
		}
	}
	if len(plan.offencesToUpdate) > 0 {
		if err := s.nomis.UpdateOffences(dbc.Ctx, plan.offencesToUpdate); err != nil {
			return fmt.Errorf("update offences for %s: %w", prefix, err)
		}
		if err := s.recordHistory(dbc, plan.offencesToUpdate, types.ChangeUpdate, types.NomisChangeOffence); err != nil {
			return err
		}
	}

	s.log.Info("reconciled partition into target system",
		"prefix", prefix,
		"statutes_created", len(plan.statutesToCreate),
		"ho_codes_created", len(plan.hoCodesToCreate),
		"offences_created", len(plan.offencesToCreate),
		"offences_updated", len(plan.offencesToUpdate))
	return nil
}

func (s *nomisSyncService) fetchRemote(dbc dbctx.Context, prefix string) ([]nomis.Offence, error) {
	var out []nomis.Offence
	for page := 0; ; page++ {
		resp, err := s.nomis.OffencesByCode(dbc.Ctx, prefix, page)
		if err != nil {
			return nil, fmt.Errorf("fetch target offences for %s page %d: %w", prefix, page, err)
		}
		out = append(out, resp.Content...)
		if resp.Last || len(resp.Content) == 0 {
			break
		}
	}
	return out, nil
}

func (s *nomisSyncService) reactivatedCodes(dbc dbctx.Context) (map[string]struct{}, error) {
	rows, err := s.reactivatedRepo.FindAll(dbc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		out[r.OffenceCode] = struct{}{}
	}
	return out, nil
}

func (s *nomisSyncService) recordHistory(dbc dbctx.Context, offs []nomis.Offence, change types.ChangeType, nomisType types.NomisChangeType) error {
	rows := make([]*types.NomisChangeHistory, 0, len(offs))
	sent := s.now()
	for _, o := range offs {
		rows = append(rows, &types.NomisChangeHistory{
			Code:            o.Code,
			Description:     o.Description,
			ChangeType:      change,
			NomisChangeType: nomisType,
			SentToNomisDate: sent,
		})
	}
	return s.historyRepo.Create(dbc, rows)
}

func (s *nomisSyncService) recordStatuteHistory(dbc dbctx.Context, statutes []nomis.Statute) error {
	rows := make([]*types.NomisChangeHistory, 0, len(statutes))
	sent := s.now()
	for _, st := range statutes {
		rows = append(rows, &types.NomisChangeHistory{
			Code:            st.Code,
			Description:     st.Description,
			ChangeType:      types.ChangeInsert,
			NomisChangeType: types.NomisChangeStatute,
			SentToNomisDate: sent,
		})
	}
	return s.historyRepo.Create(dbc, rows)
}

func (s *nomisSyncService) recordHoCodeHistory(dbc dbctx.Context, hoCodes []nomis.HomeOfficeCode) error {
	rows := make([]*types.NomisChangeHistory, 0, len(hoCodes))
	sent := s.now()
	for _, hc := range hoCodes {
		rows = append(rows, &types.NomisChangeHistory{
			Code:            hc.Code,
			Description:     hc.Description,
			ChangeType:      types.ChangeInsert,
			NomisChangeType: types.NomisChangeHomeOfficeCode,
			SentToNomisDate: sent,
		})
	}
	return s.historyRepo.Create(dbc, rows)
}
