package app

import (
	"github.com/opencourts/offence-registry-backend/internal/clients/nomis"
	redisclient "github.com/opencourts/offence-registry-backend/internal/clients/redis"
	"github.com/opencourts/offence-registry-backend/internal/clients/sdrs"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

type Clients struct {
	Nomis     nomis.Client
	Sdrs      sdrs.Client
	JobLock   redisclient.JobLock
	Publisher redisclient.EventPublisher
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	nomisClient, err := nomis.New(log, nomis.Config{
		BaseURL:  cfg.NomisBaseURL,
		PageSize: cfg.NomisPageSize,
	})
	if err != nil {
		return Clients{}, err
	}
	sdrsClient, err := sdrs.New(log, sdrs.Config{BaseURL: cfg.SdrsBaseURL})
	if err != nil {
		return Clients{}, err
	}
	jobLock, err := redisclient.NewJobLock(log)
	if err != nil {
		return Clients{}, err
	}
	publisher, err := redisclient.NewEventPublisher(log)
	if err != nil {
		return Clients{}, err
	}
	return Clients{
		Nomis:     nomisClient,
		Sdrs:      sdrsClient,
		JobLock:   jobLock,
		Publisher: publisher,
	}, nil
}
