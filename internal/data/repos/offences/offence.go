package offences

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type OffenceRepo interface {
	Upsert(dbc dbctx.Context, offs []*types.Offence) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offence, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Offence, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Offence, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Offence, error)
	FindByCodePrefix(dbc dbctx.Context, prefix string) ([]*types.Offence, error)
	FindChildren(dbc dbctx.Context, parentCode string) ([]*types.Offence, error)
	SetParentOffenceID(dbc dbctx.Context, id uuid.UUID, parentID *uuid.UUID) error
	FindByChangedDateRange(dbc dbctx.Context, from, to time.Time) ([]*types.Offence, error)
}

type offenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOffenceRepo(db *gorm.DB, baseLog *logger.Logger) OffenceRepo {
	return &offenceRepo{
		db:  db,
		log: baseLog.With("repo", "OffenceRepo"),
	}
}

func (r *offenceRepo) Upsert(dbc dbctx.Context, offs []*types.Offence) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(offs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "cjs_title", "revision_id", "start_date", "end_date",
				"category", "sub_category", "acts_and_sections", "custodial_indicator",
				"max_period_is_life", "max_period_of_indictment_years",
				"max_period_of_indictment_months", "max_period_of_indictment_weeks",
				"max_period_of_indictment_days", "changed_date", "updated_at",
			}),
		}).
		Create(&offs).Error
}

func (r *offenceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var off types.Offence
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&off).Error
	if err != nil {
		return nil, err
	}
	if off.ID == uuid.Nil {
		return nil, nil
	}
	return &off, nil
}

func (r *offenceRepo) GetByCode(dbc dbctx.Context, code string) (*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil, nil
	}
	var off types.Offence
	err := transaction.WithContext(dbc.Ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&off).Error
	if err != nil {
		return nil, err
	}
	if off.ID == uuid.Nil {
		return nil, nil
	}
	return &off, nil
}

func (r *offenceRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offence
	if len(codes) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("code IN ?", codes).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offenceRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offence
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

// FindByCodePrefix matches case-insensitively and orders by code ascending,
// which is the deterministic ordering the reconciler relies on.
func (r *offenceRepo) FindByCodePrefix(dbc dbctx.Context, prefix string) ([]*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offence
	if prefix == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("code ILIKE ?", prefix+"%").
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offenceRepo) FindChildren(dbc dbctx.Context, parentCode string) ([]*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offence
	if len(parentCode) != 7 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("code LIKE ? AND char_length(code) > 7", parentCode+"%").
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offenceRepo) SetParentOffenceID(dbc dbctx.Context, id uuid.UUID, parentID *uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Offence{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parent_offence_id": parentID,
			"updated_at":        time.Now(),
		}).Error
}

func (r *offenceRepo) FindByChangedDateRange(dbc dbctx.Context, from, to time.Time) ([]*types.Offence, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offence
	if err := transaction.WithContext(dbc.Ctx).
		Where("changed_date >= ? AND changed_date < ?", from, to).
		Order("changed_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
