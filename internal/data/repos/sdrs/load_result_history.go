package sdrs

import (
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// LoadResultHistoryRepo is append-only.
type LoadResultHistoryRepo interface {
	Create(dbc dbctx.Context, row *types.SdrsLoadResultHistory) error
	FindByCache(dbc dbctx.Context, cache types.SdrsCache) ([]*types.SdrsLoadResultHistory, error)
}

type loadResultHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoadResultHistoryRepo(db *gorm.DB, baseLog *logger.Logger) LoadResultHistoryRepo {
	return &loadResultHistoryRepo{
		db:  db,
		log: baseLog.With("repo", "LoadResultHistoryRepo"),
	}
}

func (r *loadResultHistoryRepo) Create(dbc dbctx.Context, row *types.SdrsLoadResultHistory) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(row).Error
}

func (r *loadResultHistoryRepo) FindByCache(dbc dbctx.Context, cache types.SdrsCache) ([]*types.SdrsLoadResultHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SdrsLoadResultHistory
	if err := transaction.WithContext(dbc.Ctx).
		Where("cache = ?", cache).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
