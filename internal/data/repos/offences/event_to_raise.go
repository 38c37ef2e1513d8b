package offences

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type EventToRaiseRepo interface {
	Create(dbc dbctx.Context, events []*types.EventToRaise) error
	FindOldest(dbc dbctx.Context, limit int) ([]*types.EventToRaise, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type eventToRaiseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventToRaiseRepo(db *gorm.DB, baseLog *logger.Logger) EventToRaiseRepo {
	return &eventToRaiseRepo{
		db:  db,
		log: baseLog.With("repo", "EventToRaiseRepo"),
	}
}

func (r *eventToRaiseRepo) Create(dbc dbctx.Context, events []*types.EventToRaise) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&events).Error
}

func (r *eventToRaiseRepo) FindOldest(dbc dbctx.Context, limit int) ([]*types.EventToRaise, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var out []*types.EventToRaise
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventToRaiseRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.EventToRaise{}).Error
}
