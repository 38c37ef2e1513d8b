package offences

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type OffenceToSyncRepo interface {
	Create(dbc dbctx.Context, entries []*types.OffenceToSyncWithNomis) error
	FindAll(dbc dbctx.Context) ([]*types.OffenceToSyncWithNomis, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type offenceToSyncRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOffenceToSyncRepo(db *gorm.DB, baseLog *logger.Logger) OffenceToSyncRepo {
	return &offenceToSyncRepo{
		db:  db,
		log: baseLog.With("repo", "OffenceToSyncRepo"),
	}
}

func (r *offenceToSyncRepo) Create(dbc dbctx.Context, entries []*types.OffenceToSyncWithNomis) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&entries).Error
}

func (r *offenceToSyncRepo) FindAll(dbc dbctx.Context) ([]*types.OffenceToSyncWithNomis, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.OffenceToSyncWithNomis
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offenceToSyncRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.OffenceToSyncWithNomis{}).Error
}
