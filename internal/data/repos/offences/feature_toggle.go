package offences

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type FeatureToggleRepo interface {
	FindAll(dbc dbctx.Context) ([]*types.FeatureToggle, error)
	Upsert(dbc dbctx.Context, toggle *types.FeatureToggle) error
}

type featureToggleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeatureToggleRepo(db *gorm.DB, baseLog *logger.Logger) FeatureToggleRepo {
	return &featureToggleRepo{
		db:  db,
		log: baseLog.With("repo", "FeatureToggleRepo"),
	}
}

func (r *featureToggleRepo) FindAll(dbc dbctx.Context) ([]*types.FeatureToggle, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FeatureToggle
	if err := transaction.WithContext(dbc.Ctx).
		Order("feature ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *featureToggleRepo) Upsert(dbc dbctx.Context, toggle *types.FeatureToggle) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if toggle == nil {
		return nil
	}
	toggle.UpdatedAt = time.Now()
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feature"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(toggle).Error
}
