package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opencourts/offence-registry-backend/internal/clients/nomis"
	redisclient "github.com/opencourts/offence-registry-backend/internal/clients/redis"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

func testLogger() *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		panic(err)
	}
	return log
}

func testCtx() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

// ---------- offence repo ----------

type fakeOffenceRepo struct {
	offences []*types.Offence
}

func (r *fakeOffenceRepo) Upsert(dbc dbctx.Context, offs []*types.Offence) error {
	for _, off := range offs {
		if off.ID == uuid.Nil {
			off.ID = uuid.New()
		}
		replaced := false
		for i, existing := range r.offences {
			if existing.Code == off.Code {
				off.ID = existing.ID
				r.offences[i] = off
				replaced = true
				break
			}
		}
		if !replaced {
			r.offences = append(r.offences, off)
		}
	}
	return nil
}

func (r *fakeOffenceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offence, error) {
	for _, off := range r.offences {
		if off.ID == id {
			return off, nil
		}
	}
	return nil, nil
}

func (r *fakeOffenceRepo) GetByCode(dbc dbctx.Context, code string) (*types.Offence, error) {
	for _, off := range r.offences {
		if off.Code == code {
			return off, nil
		}
	}
	return nil, nil
}

func (r *fakeOffenceRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Offence, error) {
	want := map[string]struct{}{}
	for _, c := range codes {
		want[c] = struct{}{}
	}
	var out []*types.Offence
	for _, off := range r.offences {
		if _, ok := want[off.Code]; ok {
			out = append(out, off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *fakeOffenceRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Offence, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*types.Offence
	for _, off := range r.offences {
		if _, ok := want[off.ID]; ok {
			out = append(out, off)
		}
	}
	return out, nil
}

func (r *fakeOffenceRepo) FindByCodePrefix(dbc dbctx.Context, prefix string) ([]*types.Offence, error) {
	var out []*types.Offence
	for _, off := range r.offences {
		if strings.HasPrefix(off.Code, prefix) {
			out = append(out, off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *fakeOffenceRepo) FindChildren(dbc dbctx.Context, parentCode string) ([]*types.Offence, error) {
	var out []*types.Offence
	for _, off := range r.offences {
		if strings.HasPrefix(off.Code, parentCode) && len(off.Code) > 7 {
			out = append(out, off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *fakeOffenceRepo) SetParentOffenceID(dbc dbctx.Context, id uuid.UUID, parentID *uuid.UUID) error {
	for _, off := range r.offences {
		if off.ID == id {
			off.ParentOffenceID = parentID
		}
	}
	return nil
}

func (r *fakeOffenceRepo) FindByChangedDateRange(dbc dbctx.Context, from, to time.Time) ([]*types.Offence, error) {
	var out []*types.Offence
	for _, off := range r.offences {
		if !off.ChangedDate.Before(from) && off.ChangedDate.Before(to) {
			out = append(out, off)
		}
	}
	return out, nil
}

// ---------- statute repo ----------

type fakeStatuteRepo struct {
	statutes []*types.Statute
}

func (r *fakeStatuteRepo) Upsert(dbc dbctx.Context, statutes []*types.Statute) error {
	for _, st := range statutes {
		replaced := false
		for i, existing := range r.statutes {
			if existing.Code == st.Code {
				r.statutes[i] = st
				replaced = true
				break
			}
		}
		if !replaced {
			r.statutes = append(r.statutes, st)
		}
	}
	return nil
}

func (r *fakeStatuteRepo) FindAll(dbc dbctx.Context) ([]*types.Statute, error) {
	return r.statutes, nil
}

func (r *fakeStatuteRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Statute, error) {
	want := map[string]struct{}{}
	for _, c := range codes {
		want[c] = struct{}{}
	}
	var out []*types.Statute
	for _, st := range r.statutes {
		if _, ok := want[st.Code]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

// ---------- dirty queue ----------

type fakeToSyncRepo struct {
	entries []*types.OffenceToSyncWithNomis
}

func (r *fakeToSyncRepo) Create(dbc dbctx.Context, entries []*types.OffenceToSyncWithNomis) error {
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		r.entries = append(r.entries, e)
	}
	return nil
}

func (r *fakeToSyncRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceToSyncWithNomis, error) {
	out := make([]*types.OffenceToSyncWithNomis, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *fakeToSyncRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	drop := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var kept []*types.OffenceToSyncWithNomis
	for _, e := range r.entries {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

// ---------- history ----------

type fakeHistoryRepo struct {
	rows []*types.NomisChangeHistory
}

func (r *fakeHistoryRepo) Create(dbc dbctx.Context, rows []*types.NomisChangeHistory) error {
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeHistoryRepo) FindSince(dbc dbctx.Context, since time.Time) ([]*types.NomisChangeHistory, error) {
	var out []*types.NomisChangeHistory
	for _, row := range r.rows {
		if !row.SentToNomisDate.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

// ---------- reactivated ----------

type fakeReactivatedRepo struct {
	rows []*types.OffenceReactivatedInNomis
}

func (r *fakeReactivatedRepo) Upsert(dbc dbctx.Context, row *types.OffenceReactivatedInNomis) error {
	for i, existing := range r.rows {
		if existing.OffenceCode == row.OffenceCode {
			r.rows[i] = row
			return nil
		}
	}
	r.rows = append(r.rows, row)
	return nil
}

func (r *fakeReactivatedRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceReactivatedInNomis, error) {
	return r.rows, nil
}

func (r *fakeReactivatedRepo) DeleteByCode(dbc dbctx.Context, code string) error {
	var kept []*types.OffenceReactivatedInNomis
	for _, row := range r.rows {
		if row.OffenceCode != code {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

// ---------- load results ----------

type fakeLoadResultRepo struct {
	rows map[types.SdrsCache]*types.SdrsLoadResult
}

func newFakeLoadResultRepo() *fakeLoadResultRepo {
	return &fakeLoadResultRepo{rows: map[types.SdrsCache]*types.SdrsLoadResult{}}
}

func (r *fakeLoadResultRepo) FindAll(dbc dbctx.Context) ([]*types.SdrsLoadResult, error) {
	var out []*types.SdrsLoadResult
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cache < out[j].Cache })
	return out, nil
}

func (r *fakeLoadResultRepo) Upsert(dbc dbctx.Context, result *types.SdrsLoadResult) error {
	r.rows[result.Cache] = result
	return nil
}

func (r *fakeLoadResultRepo) FindNomisSyncRequired(dbc dbctx.Context) ([]*types.SdrsLoadResult, error) {
	var out []*types.SdrsLoadResult
	for _, row := range r.rows {
		if row.NomisSyncRequired {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cache < out[j].Cache })
	return out, nil
}

func (r *fakeLoadResultRepo) ClearNomisSyncRequired(dbc dbctx.Context, caches []types.SdrsCache) error {
	for _, cache := range caches {
		if row, ok := r.rows[cache]; ok {
			row.NomisSyncRequired = false
		}
	}
	return nil
}

// ---------- feature toggles ----------

type fakeToggleRepo struct {
	toggles map[types.Feature]bool
}

func newFakeToggleRepo(enabled ...types.Feature) *fakeToggleRepo {
	r := &fakeToggleRepo{toggles: map[types.Feature]bool{}}
	for _, f := range enabled {
		r.toggles[f] = true
	}
	return r
}

func (r *fakeToggleRepo) FindAll(dbc dbctx.Context) ([]*types.FeatureToggle, error) {
	var out []*types.FeatureToggle
	for f, enabled := range r.toggles {
		out = append(out, &types.FeatureToggle{Feature: f, Enabled: enabled})
	}
	return out, nil
}

func (r *fakeToggleRepo) Upsert(dbc dbctx.Context, toggle *types.FeatureToggle) error {
	r.toggles[toggle.Feature] = toggle.Enabled
	return nil
}

// ---------- outbox ----------

type fakeEventRepo struct {
	events []*types.EventToRaise
}

func (r *fakeEventRepo) Create(dbc dbctx.Context, events []*types.EventToRaise) error {
	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		r.events = append(r.events, e)
	}
	return nil
}

func (r *fakeEventRepo) FindOldest(dbc dbctx.Context, limit int) ([]*types.EventToRaise, error) {
	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]*types.EventToRaise, limit)
	copy(out, r.events[:limit])
	return out, nil
}

func (r *fakeEventRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	drop := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var kept []*types.EventToRaise
	for _, e := range r.events {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

// ---------- schedule + mapping repos ----------

type fakeScheduleRepo struct {
	schedules  []*types.Schedule
	parts      []*types.SchedulePart
	paragraphs []*types.ScheduleParagraph
}

func (r *fakeScheduleRepo) FindAll(dbc dbctx.Context) ([]*types.Schedule, error) {
	return r.schedules, nil
}

func (r *fakeScheduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Schedule, error) {
	for _, s := range r.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Schedule, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*types.Schedule
	for _, s := range r.schedules {
		if _, ok := want[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetPartByID(dbc dbctx.Context, id uuid.UUID) (*types.SchedulePart, error) {
	for _, p := range r.parts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindPartsByScheduleIDs(dbc dbctx.Context, scheduleIDs []uuid.UUID) ([]*types.SchedulePart, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range scheduleIDs {
		want[id] = struct{}{}
	}
	var out []*types.SchedulePart
	for _, p := range r.parts {
		if _, ok := want[p.ScheduleID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) FindAllParts(dbc dbctx.Context) ([]*types.SchedulePart, error) {
	return r.parts, nil
}

func (r *fakeScheduleRepo) FindParagraphsByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.ScheduleParagraph, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range partIDs {
		want[id] = struct{}{}
	}
	var out []*types.ScheduleParagraph
	for _, p := range r.paragraphs {
		if _, ok := want[p.SchedulePartID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMappingRepo struct {
	mappings []*types.OffenceScheduleMapping
	findErr  error
}

func (r *fakeMappingRepo) Create(dbc dbctx.Context, mappings []*types.OffenceScheduleMapping) error {
	for _, m := range mappings {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		r.mappings = append(r.mappings, m)
	}
	return nil
}

func (r *fakeMappingRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceScheduleMapping, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.mappings, nil
}

func (r *fakeMappingRepo) FindByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.OffenceScheduleMapping, error) {
	want := map[uuid.UUID]struct{}{}
	for _, id := range partIDs {
		want[id] = struct{}{}
	}
	var out []*types.OffenceScheduleMapping
	for _, m := range r.mappings {
		if _, ok := want[m.SchedulePartID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) ExistsForPartAndOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) (bool, error) {
	for _, m := range r.mappings {
		if m.SchedulePartID == partID && m.OffenceID == offenceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMappingRepo) DeleteForPartAndOffences(dbc dbctx.Context, partID uuid.UUID, offenceIDs []uuid.UUID) error {
	drop := map[uuid.UUID]struct{}{}
	for _, id := range offenceIDs {
		drop[id] = struct{}{}
	}
	var kept []*types.OffenceScheduleMapping
	for _, m := range r.mappings {
		if m.SchedulePartID == partID {
			if _, ok := drop[m.OffenceID]; ok {
				continue
			}
		}
		kept = append(kept, m)
	}
	r.mappings = kept
	return nil
}

// ---------- target system client ----------

type activeFlagUpdate struct {
	code   string
	flag   string
	expiry *string
}

type fakeNomisClient struct {
	remote map[string][]nomis.Offence

	createdStatutes []nomis.Statute
	createdHoCodes  []nomis.HomeOfficeCode
	createdOffences []nomis.Offence
	updatedOffences []nomis.Offence
	deactivated     []activeFlagUpdate
	linked          []nomis.ScheduleMapping
	unlinked        []nomis.ScheduleMapping
}

func newFakeNomisClient() *fakeNomisClient {
	return &fakeNomisClient{remote: map[string][]nomis.Offence{}}
}

func (c *fakeNomisClient) addRemote(off nomis.Offence) {
	prefix := off.Code[:1]
	c.remote[prefix] = append(c.remote[prefix], off)
}

func (c *fakeNomisClient) OffencesByCode(ctx context.Context, codePrefix string, page int) (*nomis.OffencePage, error) {
	if page > 0 {
		return &nomis.OffencePage{Last: true}, nil
	}
	var content []nomis.Offence
	for _, off := range c.remote[codePrefix[:1]] {
		if strings.HasPrefix(off.Code, codePrefix) {
			content = append(content, off)
		}
	}
	return &nomis.OffencePage{Content: content, TotalPages: 1, Last: true}, nil
}

func (c *fakeNomisClient) CreateStatutes(ctx context.Context, statutes []nomis.Statute) error {
	c.createdStatutes = append(c.createdStatutes, statutes...)
	return nil
}

func (c *fakeNomisClient) CreateHomeOfficeCodes(ctx context.Context, hoCodes []nomis.HomeOfficeCode) error {
	c.createdHoCodes = append(c.createdHoCodes, hoCodes...)
	return nil
}

func (c *fakeNomisClient) CreateOffences(ctx context.Context, offs []nomis.Offence) error {
	c.createdOffences = append(c.createdOffences, offs...)
	for _, off := range offs {
		c.addRemote(off)
	}
	return nil
}

func (c *fakeNomisClient) UpdateOffences(ctx context.Context, offs []nomis.Offence) error {
	c.updatedOffences = append(c.updatedOffences, offs...)
	return nil
}

func (c *fakeNomisClient) UpdateOffenceActiveFlag(ctx context.Context, offenceCode, activeFlag string, expiryDate *string) error {
	c.deactivated = append(c.deactivated, activeFlagUpdate{code: offenceCode, flag: activeFlag, expiry: expiryDate})
	return nil
}

func (c *fakeNomisClient) LinkToSchedule(ctx context.Context, mappings []nomis.ScheduleMapping) error {
	c.linked = append(c.linked, mappings...)
	return nil
}

func (c *fakeNomisClient) UnlinkFromSchedule(ctx context.Context, mappings []nomis.ScheduleMapping) error {
	c.unlinked = append(c.unlinked, mappings...)
	return nil
}

// ---------- event publisher ----------

type fakePublisher struct {
	published []redisclient.OffenceEvent
	failAfter int
	fail      bool
}

func (p *fakePublisher) Publish(ctx context.Context, event redisclient.OffenceEvent) error {
	if p.fail && len(p.published) >= p.failAfter {
		return context.DeadlineExceeded
	}
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
