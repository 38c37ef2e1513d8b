package offences

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type OffenceReactivatedRepo interface {
	Upsert(dbc dbctx.Context, row *types.OffenceReactivatedInNomis) error
	FindAll(dbc dbctx.Context) ([]*types.OffenceReactivatedInNomis, error)
	DeleteByCode(dbc dbctx.Context, code string) error
}

type offenceReactivatedRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOffenceReactivatedRepo(db *gorm.DB, baseLog *logger.Logger) OffenceReactivatedRepo {
	return &offenceReactivatedRepo{
		db:  db,
		log: baseLog.With("repo", "OffenceReactivatedRepo"),
	}
}

func (r *offenceReactivatedRepo) Upsert(dbc dbctx.Context, row *types.OffenceReactivatedInNomis) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "offence_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"reactivated_by_user"}),
		}).
		Create(row).Error
}

func (r *offenceReactivatedRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceReactivatedInNomis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.OffenceReactivatedInNomis
	if err := transaction.WithContext(dbc.Ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offenceReactivatedRepo) DeleteByCode(dbc dbctx.Context, code string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("offence_code = ?", code).
		Delete(&types.OffenceReactivatedInNomis{}).Error
}
