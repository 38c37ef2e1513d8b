package offences

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type StatuteRepo interface {
	Upsert(dbc dbctx.Context, statutes []*types.Statute) error
	FindAll(dbc dbctx.Context) ([]*types.Statute, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Statute, error)
}

type statuteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatuteRepo(db *gorm.DB, baseLog *logger.Logger) StatuteRepo {
	return &statuteRepo{
		db:  db,
		log: baseLog.With("repo", "StatuteRepo"),
	}
}

func (r *statuteRepo) Upsert(dbc dbctx.Context, statutes []*types.Statute) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(statutes) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "legislation_act", "updated_at"}),
		}).
		Create(&statutes).Error
}

func (r *statuteRepo) FindAll(dbc dbctx.Context) ([]*types.Statute, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Statute
	if err := transaction.WithContext(dbc.Ctx).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *statuteRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Statute, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Statute
	if len(codes) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("code IN ?", codes).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
