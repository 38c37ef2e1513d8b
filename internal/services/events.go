package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/opencourts/offence-registry-backend/internal/clients/redis"
	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

const eventBatchSize = 100

// EventService drains the outbox. A row is deleted only after its event has
// been published, so delivery is at-least-once and consumers must tolerate
// duplicates.
type EventService interface {
	PublishPending(dbc dbctx.Context) error
}

type eventService struct {
	db  *gorm.DB
	log *logger.Logger

	eventRepo repos.EventToRaiseRepo
	toggles   FeatureToggleService
	publisher redisclient.EventPublisher
}

func NewEventService(
	db *gorm.DB,
	baseLog *logger.Logger,
	eventRepo repos.EventToRaiseRepo,
	toggles FeatureToggleService,
	publisher redisclient.EventPublisher,
) EventService {
	return &eventService{
		db:        db,
		log:       baseLog.With("service", "EventService"),
		eventRepo: eventRepo,
		toggles:   toggles,
		publisher: publisher,
	}
}

func (s *eventService) PublishPending(dbc dbctx.Context) error {
	enabled, err := s.toggles.IsEnabled(dbc, types.FeaturePublishEvents)
	if err != nil {
		return err
	}
	if !enabled {
		s.log.Debug("event publishing disabled by feature toggle")
		return nil
	}

	published := 0
	for {
		batch, err := s.eventRepo.FindOldest(dbc, eventBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		var done []uuid.UUID
		for _, row := range batch {
			err := s.publisher.Publish(dbc.Ctx, redisclient.OffenceEvent{
				EventType:   string(row.EventType),
				OffenceCode: row.OffenceCode,
				Offence:     json.RawMessage(row.Payload),
				OccurredAt:  time.Now().UTC(),
			})
			if err != nil {
				// Stop at the first failure; the rest of the outbox stays
				// queued for the next run.
				if delErr := s.eventRepo.DeleteByIDs(dbc, done); delErr != nil {
					return delErr
				}
				return err
			}
			done = append(done, row.ID)
		}
		if err := s.eventRepo.DeleteByIDs(dbc, done); err != nil {
			return err
		}
		published += len(done)
		if len(batch) < eventBatchSize {
			break
		}
	}

	if published > 0 {
		s.log.Info("published pending offence events", "count", published)
	}
	return nil
}
