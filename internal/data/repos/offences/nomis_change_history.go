package offences

import (
	"time"

	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// NomisChangeHistoryRepo is append-only: no update or delete methods exist.
type NomisChangeHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.NomisChangeHistory) error
	FindSince(dbc dbctx.Context, since time.Time) ([]*types.NomisChangeHistory, error)
}

type nomisChangeHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNomisChangeHistoryRepo(db *gorm.DB, baseLog *logger.Logger) NomisChangeHistoryRepo {
	return &nomisChangeHistoryRepo{
		db:  db,
		log: baseLog.With("repo", "NomisChangeHistoryRepo"),
	}
}

func (r *nomisChangeHistoryRepo) Create(dbc dbctx.Context, rows []*types.NomisChangeHistory) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *nomisChangeHistoryRepo) FindSince(dbc dbctx.Context, since time.Time) ([]*types.NomisChangeHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.NomisChangeHistory
	if err := transaction.WithContext(dbc.Ctx).
		Where("sent_to_nomis_date >= ?", since).
		Order("sent_to_nomis_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
