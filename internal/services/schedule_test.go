package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	domsched "github.com/opencourts/offence-registry-backend/internal/domain/schedules"
	apperrors "github.com/opencourts/offence-registry-backend/internal/pkg/errors"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
)

type scheduleServiceFixture struct {
	svc       *scheduleService
	schedules *fakeScheduleRepo
	mappings  *fakeMappingRepo
	offences  *fakeOffenceRepo
	client    *fakeNomisClient
	part      *types.SchedulePart
}

func newScheduleServiceFixture(t *testing.T, schedCode string) *scheduleServiceFixture {
	t.Helper()
	f := &scheduleServiceFixture{
		schedules: &fakeScheduleRepo{},
		mappings:  &fakeMappingRepo{},
		offences:  &fakeOffenceRepo{},
		client:    newFakeNomisClient(),
	}
	sched := &types.Schedule{ID: uuid.New(), Act: "Criminal Justice Act 2003", Code: schedCode}
	f.part = &types.SchedulePart{ID: uuid.New(), ScheduleID: sched.ID, PartNumber: 1}
	f.schedules.schedules = append(f.schedules.schedules, sched)
	f.schedules.parts = append(f.schedules.parts, f.part)

	cache := newScheduleCacheFixture(t, time.Hour)
	svc := NewScheduleService(nil, testLogger(), f.schedules, f.mappings, f.offences, f.client, cache.svc)
	f.svc = svc.(*scheduleService)
	f.svc.runTx = func(dbc dbctx.Context, fn func(dbctx.Context) error) error { return fn(dbc) }
	return f
}

func (f *scheduleServiceFixture) seedOffence(t *testing.T, code string) *types.Offence {
	t.Helper()
	off := &types.Offence{Code: code, Description: code}
	require.NoError(t, f.offences.Upsert(testCtx(), []*types.Offence{off}))
	return off
}

func (f *scheduleServiceFixture) mappedOffenceIDs() map[uuid.UUID]struct{} {
	out := map[uuid.UUID]struct{}{}
	for _, m := range f.mappings.mappings {
		out[m.OffenceID] = struct{}{}
	}
	return out
}

func TestScheduleByIDStitchesDetails(t *testing.T) {
	schedules := &fakeScheduleRepo{}
	mappings := &fakeMappingRepo{}
	offences := &fakeOffenceRepo{}

	sched := &types.Schedule{ID: uuid.New(), Act: "Criminal Justice Act 2003", Code: domsched.Schedule15Code}
	part1 := &types.SchedulePart{ID: uuid.New(), ScheduleID: sched.ID, PartNumber: 1}
	part2 := &types.SchedulePart{ID: uuid.New(), ScheduleID: sched.ID, PartNumber: 2}
	para := &types.ScheduleParagraph{ID: uuid.New(), SchedulePartID: part1.ID, ParagraphNumber: 1, ParagraphTitle: "Manslaughter"}
	off := &types.Offence{ID: uuid.New(), Code: "AB12345", Description: "Manslaughter"}

	schedules.schedules = append(schedules.schedules, sched)
	schedules.parts = append(schedules.parts, part1, part2)
	schedules.paragraphs = append(schedules.paragraphs, para)
	offences.offences = append(offences.offences, off)
	mappings.mappings = append(mappings.mappings, &types.OffenceScheduleMapping{
		ID:             uuid.New(),
		SchedulePartID: part1.ID,
		OffenceID:      off.ID,
		LineReference:  "para 1",
	})

	svc := NewScheduleService(nil, testLogger(), schedules, mappings, offences, newFakeNomisClient(), nil)

	details, err := svc.ScheduleByID(testCtx(), sched.ID)
	require.NoError(t, err)

	assert.Equal(t, domsched.Schedule15Code, details.Schedule.Code)
	require.Len(t, details.Parts, 2)

	first := details.Parts[0]
	assert.Equal(t, 1, first.Part.PartNumber)
	require.Len(t, first.Paragraphs, 1)
	assert.Equal(t, "Manslaughter", first.Paragraphs[0].ParagraphTitle)
	require.Len(t, first.Offences, 1)
	assert.Equal(t, "AB12345", first.Offences[0].Offence.Code)
	assert.Equal(t, "para 1", first.Offences[0].LineReference)

	assert.Empty(t, details.Parts[1].Offences)
}

func TestScheduleByIDNotFound(t *testing.T) {
	svc := NewScheduleService(nil, testLogger(), &fakeScheduleRepo{}, &fakeMappingRepo{},
		&fakeOffenceRepo{}, newFakeNomisClient(), nil)

	_, err := svc.ScheduleByID(testCtx(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLinkOffenceCascadesToChildren(t *testing.T) {
	f := newScheduleServiceFixture(t, domsched.Schedule15Code)
	parent := f.seedOffence(t, "TH68001")
	child := f.seedOffence(t, "TH68001A")

	require.NoError(t, f.svc.LinkOffence(testCtx(), f.part.ID, parent.ID))

	mapped := f.mappedOffenceIDs()
	require.Len(t, mapped, 2)
	assert.Contains(t, mapped, parent.ID)
	assert.Contains(t, mapped, child.ID)

	require.Len(t, f.client.linked, 2)
	codes := []string{f.client.linked[0].OffenceCode, f.client.linked[1].OffenceCode}
	assert.Contains(t, codes, "TH68001")
	assert.Contains(t, codes, "TH68001A")
	assert.Equal(t, "SCHEDULE_15", f.client.linked[0].ScheduleCode)
}

func TestLinkOffenceLocalOnlySchedule(t *testing.T) {
	f := newScheduleServiceFixture(t, domsched.Schedule3Code)
	off := f.seedOffence(t, "SX03001")

	require.NoError(t, f.svc.LinkOffence(testCtx(), f.part.ID, off.ID))

	assert.Len(t, f.mappings.mappings, 1)
	assert.Empty(t, f.client.linked)
}

func TestLinkOffenceAlreadyLinked(t *testing.T) {
	f := newScheduleServiceFixture(t, domsched.Schedule15Code)
	off := f.seedOffence(t, "TH68001")

	require.NoError(t, f.svc.LinkOffence(testCtx(), f.part.ID, off.ID))
	err := f.svc.LinkOffence(testCtx(), f.part.ID, off.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyLinked))
}

func TestUnlinkOffenceCascadesToChildren(t *testing.T) {
	f := newScheduleServiceFixture(t, domsched.Schedule15Code)
	parent := f.seedOffence(t, "TH68001")
	f.seedOffence(t, "TH68001A")
	require.NoError(t, f.svc.LinkOffence(testCtx(), f.part.ID, parent.ID))
	require.Len(t, f.mappings.mappings, 2)

	require.NoError(t, f.svc.UnlinkOffence(testCtx(), f.part.ID, parent.ID))

	assert.Empty(t, f.mappings.mappings)
	require.Len(t, f.client.unlinked, 2)
	codes := []string{f.client.unlinked[0].OffenceCode, f.client.unlinked[1].OffenceCode}
	assert.Contains(t, codes, "TH68001A")
}

func TestNomisScheduleName(t *testing.T) {
	replicated := &types.Schedule{Code: domsched.Schedule15Code}
	assert.Equal(t, "SCHEDULE_15", nomisScheduleName(replicated))

	localOnly := &types.Schedule{Code: domsched.Schedule3Code}
	assert.Equal(t, "", nomisScheduleName(localOnly))
}
