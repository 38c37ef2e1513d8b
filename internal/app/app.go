package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/db"
	"github.com/opencourts/offence-registry-backend/internal/jobs"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Router    *gin.Engine
	Cfg       Config
	Repos     Repos
	Clients   Clients
	Services  Services
	Scheduler *jobs.Scheduler
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)

	clientset, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(theDB, log, cfg, reposet, clientset)
	handlerset := wireHandlers(log, serviceset)
	router := wireRouter(handlerset)

	scheduler := jobs.NewScheduler(log, clientset.JobLock,
		serviceset.SdrsSync, serviceset.NomisSync, serviceset.Events, serviceset.ScheduleCache)

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clientset,
		Services:  serviceset,
		Scheduler: scheduler,
	}, nil
}

func (a *App) Start() error {
	if err := a.Scheduler.Start(jobs.SchedulesFromEnv(a.Log)); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.Log.Info("Starting HTTP server", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Shutdown() {
	a.Scheduler.Stop()
	_ = a.Clients.JobLock.Close()
	_ = a.Clients.Publisher.Close()
	a.Log.Sync()
}
