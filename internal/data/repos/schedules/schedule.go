package schedules

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type ScheduleRepo interface {
	FindAll(dbc dbctx.Context) ([]*types.Schedule, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Schedule, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Schedule, error)
	GetPartByID(dbc dbctx.Context, id uuid.UUID) (*types.SchedulePart, error)
	FindPartsByScheduleIDs(dbc dbctx.Context, scheduleIDs []uuid.UUID) ([]*types.SchedulePart, error)
	FindAllParts(dbc dbctx.Context) ([]*types.SchedulePart, error)
	FindParagraphsByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.ScheduleParagraph, error)
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleRepo"),
	}
}

func (r *scheduleRepo) FindAll(dbc dbctx.Context) ([]*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Schedule
	if err := transaction.WithContext(dbc.Ctx).
		Order("act ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var sched types.Schedule
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&sched).Error
	if err != nil {
		return nil, err
	}
	if sched.ID == uuid.Nil {
		return nil, nil
	}
	return &sched, nil
}

func (r *scheduleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Schedule
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepo) GetPartByID(dbc dbctx.Context, id uuid.UUID) (*types.SchedulePart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var part types.SchedulePart
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&part).Error
	if err != nil {
		return nil, err
	}
	if part.ID == uuid.Nil {
		return nil, nil
	}
	return &part, nil
}

func (r *scheduleRepo) FindPartsByScheduleIDs(dbc dbctx.Context, scheduleIDs []uuid.UUID) ([]*types.SchedulePart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SchedulePart
	if len(scheduleIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("schedule_id IN ?", scheduleIDs).
		Order("part_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepo) FindAllParts(dbc dbctx.Context) ([]*types.SchedulePart, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SchedulePart
	if err := transaction.WithContext(dbc.Ctx).
		Order("part_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepo) FindParagraphsByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.ScheduleParagraph, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleParagraph
	if len(partIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("schedule_part_id IN ?", partIDs).
		Order("paragraph_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
