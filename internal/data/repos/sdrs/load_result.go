package sdrs

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type LoadResultRepo interface {
	FindAll(dbc dbctx.Context) ([]*types.SdrsLoadResult, error)
	Upsert(dbc dbctx.Context, result *types.SdrsLoadResult) error
	FindNomisSyncRequired(dbc dbctx.Context) ([]*types.SdrsLoadResult, error)
	ClearNomisSyncRequired(dbc dbctx.Context, caches []types.SdrsCache) error
}

type loadResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoadResultRepo(db *gorm.DB, baseLog *logger.Logger) LoadResultRepo {
	return &loadResultRepo{
		db:  db,
		log: baseLog.With("repo", "LoadResultRepo"),
	}
}

func (r *loadResultRepo) FindAll(dbc dbctx.Context) ([]*types.SdrsLoadResult, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SdrsLoadResult
	if err := transaction.WithContext(dbc.Ctx).
		Order("cache ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *loadResultRepo) Upsert(dbc dbctx.Context, result *types.SdrsLoadResult) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if result == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cache"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "load_type", "load_date", "last_successful_load_date",
				"nomis_sync_required", "updated_at",
			}),
		}).
		Create(result).Error
}

func (r *loadResultRepo) FindNomisSyncRequired(dbc dbctx.Context) ([]*types.SdrsLoadResult, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SdrsLoadResult
	if err := transaction.WithContext(dbc.Ctx).
		Where("nomis_sync_required = ?", true).
		Order("cache ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *loadResultRepo) ClearNomisSyncRequired(dbc dbctx.Context, caches []types.SdrsCache) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(caches) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.SdrsLoadResult{}).
		Where("cache IN ?", caches).
		Update("nomis_sync_required", false).Error
}
