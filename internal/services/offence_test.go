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
)

type offenceServiceFixture struct {
	svc      OffenceService
	offences *fakeOffenceRepo
	statutes *fakeStatuteRepo
	cache    *scheduleCacheFixture
	toggles  *fakeToggleRepo
}

func newOffenceServiceFixture(t *testing.T, enabled ...types.Feature) *offenceServiceFixture {
	t.Helper()
	f := &offenceServiceFixture{
		offences: &fakeOffenceRepo{},
		statutes: &fakeStatuteRepo{},
		cache:    newScheduleCacheFixture(t, time.Hour),
		toggles:  newFakeToggleRepo(enabled...),
	}
	log := testLogger()
	toggles := NewFeatureToggleService(nil, log, f.toggles)
	f.svc = NewOffenceService(nil, log, f.offences, f.statutes, f.cache.svc, toggles)
	return f
}

func TestGetByIDNotFound(t *testing.T) {
	f := newOffenceServiceFixture(t)
	_, err := f.svc.GetByID(testCtx(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSearchByCodePrefixValidation(t *testing.T) {
	f := newOffenceServiceFixture(t)

	_, err := f.svc.SearchByCodePrefix(testCtx(), "AB")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	// Whitespace does not count toward the minimum.
	_, err = f.svc.SearchByCodePrefix(testCtx(), "  AB  ")
	require.Error(t, err)
}

func TestSearchByCodePrefixUppercases(t *testing.T) {
	f := newOffenceServiceFixture(t)
	require.NoError(t, f.offences.Upsert(testCtx(), []*types.Offence{{Code: "TH68001"}}))

	got, err := f.svc.SearchByCodePrefix(testCtx(), "th68")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TH68001", got[0].Code)
}

func TestFindByChangedDateRangeValidation(t *testing.T) {
	f := newOffenceServiceFixture(t)
	at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.FindByChangedDateRange(testCtx(), at, at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestPcscIndicators(t *testing.T) {
	f := newOffenceServiceFixture(t)
	f.cache.seedMapping(domsched.ScheduleSeriousViolentCode, "SV00001")

	markers, err := f.svc.PcscIndicators(testCtx(), []string{"SV00001", "XX99999"})
	require.NoError(t, err)

	require.Len(t, markers, 2)
	assert.True(t, markers[0].InListB)
	assert.False(t, markers[1].InListB)

	_, err = f.svc.PcscIndicators(testCtx(), nil)
	assert.Error(t, err)
}

func TestCategorisationsHonourTrancheThreeToggle(t *testing.T) {
	withToggle := newOffenceServiceFixture(t, types.FeatureT3OffenceExclusions)
	withToggle.cache.seedMapping(domsched.ScheduleT3MurderCode, "MU00001")

	got, err := withToggle.svc.Categorisations(testCtx(), []string{"MU00001"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domsched.ExclusionMurder, got[0].ExclusionCategory)

	withoutToggle := newOffenceServiceFixture(t)
	withoutToggle.cache.seedMapping(domsched.ScheduleT3MurderCode, "MU00001")

	got, err = withoutToggle.svc.Categorisations(testCtx(), []string{"MU00001"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domsched.ExclusionNone, got[0].ExclusionCategory)
}

func TestStatutesListsAll(t *testing.T) {
	f := newOffenceServiceFixture(t)
	require.NoError(t, f.statutes.Upsert(testCtx(), []*types.Statute{
		{Code: "TH68", Description: "Theft Act 1968"},
	}))

	got, err := f.svc.Statutes(testCtx())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TH68", got[0].Code)
}
