package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
)

func SeedOffence(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Offence {
	tb.Helper()
	o := &types.Offence{
		ID:          uuid.New(),
		Code:        code,
		Description: "desc " + code,
		StartDate:   time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		ChangedDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed offence: %v", err)
	}
	return o
}

func SeedStatute(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Statute {
	tb.Helper()
	s := &types.Statute{
		ID:          uuid.New(),
		Code:        code,
		Description: "statute " + code,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed statute: %v", err)
	}
	return s
}

func SeedSchedule(tb testing.TB, ctx context.Context, tx *gorm.DB, act, code string) *types.Schedule {
	tb.Helper()
	s := &types.Schedule{
		ID:   uuid.New(),
		Act:  act,
		Code: code,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schedule: %v", err)
	}
	return s
}

func SeedSchedulePart(tb testing.TB, ctx context.Context, tx *gorm.DB, scheduleID uuid.UUID, partNumber int) *types.SchedulePart {
	tb.Helper()
	p := &types.SchedulePart{
		ID:         uuid.New(),
		ScheduleID: scheduleID,
		PartNumber: partNumber,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed schedule part: %v", err)
	}
	return p
}

func SeedMapping(tb testing.TB, ctx context.Context, tx *gorm.DB, partID, offenceID uuid.UUID) *types.OffenceScheduleMapping {
	tb.Helper()
	m := &types.OffenceScheduleMapping{
		ID:             uuid.New(),
		SchedulePartID: partID,
		OffenceID:      offenceID,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mapping: %v", err)
	}
	return m
}
