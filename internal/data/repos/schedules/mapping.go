package schedules

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type MappingRepo interface {
	Create(dbc dbctx.Context, mappings []*types.OffenceScheduleMapping) error
	FindAll(dbc dbctx.Context) ([]*types.OffenceScheduleMapping, error)
	FindByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.OffenceScheduleMapping, error)
	ExistsForPartAndOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) (bool, error)
	DeleteForPartAndOffences(dbc dbctx.Context, partID uuid.UUID, offenceIDs []uuid.UUID) error
}

type mappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return &mappingRepo{
		db:  db,
		log: baseLog.With("repo", "MappingRepo"),
	}
}

func (r *mappingRepo) Create(dbc dbctx.Context, mappings []*types.OffenceScheduleMapping) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(mappings) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&mappings).Error
}

func (r *mappingRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceScheduleMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.OffenceScheduleMapping
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mappingRepo) FindByPartIDs(dbc dbctx.Context, partIDs []uuid.UUID) ([]*types.OffenceScheduleMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.OffenceScheduleMapping
	if len(partIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("schedule_part_id IN ?", partIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mappingRepo) ExistsForPartAndOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if partID == uuid.Nil || offenceID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.OffenceScheduleMapping{}).
		Where("schedule_part_id = ? AND offence_id = ?", partID, offenceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mappingRepo) DeleteForPartAndOffences(dbc dbctx.Context, partID uuid.UUID, offenceIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if partID == uuid.Nil || len(offenceIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("schedule_part_id = ? AND offence_id IN ?", partID, offenceIDs).
		Delete(&types.OffenceScheduleMapping{}).Error
}
