package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron"

	redisclient "github.com/opencourts/offence-registry-backend/internal/clients/redis"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/services"
	"github.com/opencourts/offence-registry-backend/internal/utils"
)

// Scheduler wires the recurring jobs onto cron under a distributed lease.
// Every instance schedules every job; the lease decides which instance
// actually runs it, and the losers skip silently.
type Scheduler struct {
	log  *logger.Logger
	cron *cron.Cron
	lock redisclient.JobLock

	sdrsSync  services.SdrsSyncService
	nomisSync services.NomisSyncService
	events    services.EventService
	cache     services.ScheduleCacheService
}

type Schedules struct {
	SdrsSync      string
	NomisFullSync string
	NomisDelta    string
	PublishEvents string
	CacheEvict    string
}

// SchedulesFromEnv reads the cron expressions, with defaults matching the
// cadence the sync pipeline expects: frequent reference pulls and event
// publishing, nightly delta reconciliation, weekly full reconciliation.
func SchedulesFromEnv(log *logger.Logger) Schedules {
	return Schedules{
		SdrsSync:      utils.GetEnv("CRON_SDRS_SYNC", "0 */10 * * * *", log),
		NomisFullSync: utils.GetEnv("CRON_NOMIS_FULL_SYNC", "0 0 2 * * 0", log),
		NomisDelta:    utils.GetEnv("CRON_NOMIS_DELTA_SYNC", "0 15 * * * *", log),
		PublishEvents: utils.GetEnv("CRON_PUBLISH_EVENTS", "0 */5 * * * *", log),
		CacheEvict:    utils.GetEnv("CRON_CACHE_EVICT", "0 0 */2 * * *", log),
	}
}

func NewScheduler(
	baseLog *logger.Logger,
	lock redisclient.JobLock,
	sdrsSync services.SdrsSyncService,
	nomisSync services.NomisSyncService,
	events services.EventService,
	cache services.ScheduleCacheService,
) *Scheduler {
	return &Scheduler{
		log:       baseLog.With("component", "Scheduler"),
		cron:      cron.New(),
		lock:      lock,
		sdrsSync:  sdrsSync,
		nomisSync: nomisSync,
		events:    events,
		cache:     cache,
	}
}

type job struct {
	name     string
	spec     string
	leaseTTL time.Duration
	run      func(dbc dbctx.Context) error
}

func (s *Scheduler) jobs(schedules Schedules) []job {
	return []job{
		{"sdrs-sync", schedules.SdrsSync, 30 * time.Minute, s.sdrsSync.Synchronize},
		{"nomis-full-sync", schedules.NomisFullSync, 2 * time.Hour, s.nomisSync.FullSync},
		{"nomis-delta-sync", schedules.NomisDelta, 30 * time.Minute, s.nomisSync.DeltaSync},
		{"publish-events", schedules.PublishEvents, 5 * time.Minute, s.events.PublishPending},
		{"cache-evict", schedules.CacheEvict, time.Minute, func(dbc dbctx.Context) error {
			s.cache.Evict()
			return nil
		}},
	}
}

func (s *Scheduler) Start(schedules Schedules) error {
	jobs := s.jobs(schedules)
	for _, j := range jobs {
		j := j
		err := s.cron.AddFunc(j.spec, func() {
			s.runUnderLease(j.name, j.leaseTTL, j.run)
		})
		if err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(jobs))
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runUnderLease(name string, ttl time.Duration, run func(dbc dbctx.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	defer cancel()

	release, acquired, err := s.lock.Acquire(ctx, name, ttl)
	if err != nil {
		s.log.Error("lease acquisition failed", "job", name, "error", err)
		return
	}
	if !acquired {
		s.log.Debug("lease held elsewhere, skipping", "job", name)
		return
	}
	defer release()

	started := time.Now()
	if err := run(dbctx.Context{Ctx: ctx}); err != nil {
		s.log.Error("scheduled job failed", "job", name, "took", time.Since(started).String(), "error", err)
		return
	}
	s.log.Info("scheduled job completed", "job", name, "took", time.Since(started).String())
}
