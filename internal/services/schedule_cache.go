package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

const scheduleCacheKey = "schedule-information"

// ScheduleCacheService holds the single classification snapshot. Reads serve
// the cached copy until the TTL lapses; the rebuild is collapsed through
// singleflight so concurrent cache misses trigger exactly one rebuild. When a
// rebuild fails and a stale copy exists, the stale copy is served.
type ScheduleCacheService interface {
	Get(dbc dbctx.Context) (*types.CachedScheduleInformation, error)
	Evict()
}

type scheduleCacheService struct {
	db  *gorm.DB
	log *logger.Logger

	scheduleRepo repos.ScheduleRepo
	mappingRepo  repos.MappingRepo
	offenceRepo  repos.OffenceRepo

	ttl   time.Duration
	now   func() time.Time
	runTx func(dbc dbctx.Context, fn func(dbctx.Context) error) error
	group singleflight.Group

	mu     sync.RWMutex
	cached *types.CachedScheduleInformation
}

func NewScheduleCacheService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scheduleRepo repos.ScheduleRepo,
	mappingRepo repos.MappingRepo,
	offenceRepo repos.OffenceRepo,
	ttl time.Duration,
) ScheduleCacheService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &scheduleCacheService{
		db:           db,
		log:          baseLog.With("service", "ScheduleCacheService"),
		scheduleRepo: scheduleRepo,
		mappingRepo:  mappingRepo,
		offenceRepo:  offenceRepo,
		ttl:          ttl,
		now:          time.Now,
	}
	s.runTx = func(dbc dbctx.Context, fn func(dbctx.Context) error) error {
		return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
		})
	}
	return s
}

func (s *scheduleCacheService) Get(dbc dbctx.Context) (*types.CachedScheduleInformation, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && s.now().Before(cached.GeneratedAt.Add(s.ttl)) {
		return cached, nil
	}

	v, err, _ := s.group.Do(scheduleCacheKey, func() (interface{}, error) {
		// Re-check under the flight: another caller may have just rebuilt.
		s.mu.RLock()
		fresh := s.cached
		s.mu.RUnlock()
		if fresh != nil && s.now().Before(fresh.GeneratedAt.Add(s.ttl)) {
			return fresh, nil
		}

		info, err := s.rebuild(dbc)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = info
		s.mu.Unlock()
		return info, nil
	})
	if err != nil {
		if cached != nil {
			s.log.Warn("snapshot rebuild failed, serving stale copy",
				"generated_at", cached.GeneratedAt, "error", err)
			return cached, nil
		}
		return nil, err
	}
	return v.(*types.CachedScheduleInformation), nil
}

func (s *scheduleCacheService) Evict() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	s.log.Debug("schedule information snapshot evicted")
}

// rebuild reads schedules, parts, mappings and offences in one transaction so
// the snapshot is a consistent view of the store.
func (s *scheduleCacheService) rebuild(dbc dbctx.Context) (*types.CachedScheduleInformation, error) {
	started := s.now()

	var info *types.CachedScheduleInformation
	err := s.runTx(dbc, func(txc dbctx.Context) error {
		scheds, err := s.scheduleRepo.FindAll(txc)
		if err != nil {
			return err
		}
		parts, err := s.scheduleRepo.FindAllParts(txc)
		if err != nil {
			return err
		}
		mappings, err := s.mappingRepo.FindAll(txc)
		if err != nil {
			return err
		}

		offenceIDs := make([]uuid.UUID, 0, len(mappings))
		seen := make(map[uuid.UUID]struct{}, len(mappings))
		for _, m := range mappings {
			if _, ok := seen[m.OffenceID]; ok {
				continue
			}
			seen[m.OffenceID] = struct{}{}
			offenceIDs = append(offenceIDs, m.OffenceID)
		}
		offs, err := s.offenceRepo.GetByIDs(txc, offenceIDs)
		if err != nil {
			return err
		}

		info = buildScheduleInformation(scheds, parts, mappings, offs, started)
		s.log.Info("schedule information snapshot rebuilt",
			"mappings", len(mappings),
			"offences", len(offs),
			"took", s.now().Sub(started).String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
