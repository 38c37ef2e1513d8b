package app

import (
	"time"

	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/utils"
)

type Config struct {
	Port string

	NomisBaseURL  string
	NomisPageSize int
	SdrsBaseURL   string

	ScheduleCacheTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:             utils.GetEnv("PORT", "8080", log),
		NomisBaseURL:     utils.GetEnv("NOMIS_BASE_URL", "http://localhost:8081", log),
		NomisPageSize:    utils.GetEnvAsInt("NOMIS_PAGE_SIZE", 1000, log),
		SdrsBaseURL:      utils.GetEnv("SDRS_BASE_URL", "http://localhost:8082", log),
		ScheduleCacheTTL: time.Duration(utils.GetEnvAsInt("SCHEDULE_CACHE_TTL_SECONDS", 7200, log)) * time.Second,
	}
}
