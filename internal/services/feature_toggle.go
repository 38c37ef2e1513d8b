package services

import (
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// FeatureToggleService gates the scheduled jobs. A feature with no stored row
// is disabled.
type FeatureToggleService interface {
	IsEnabled(dbc dbctx.Context, feature types.Feature) (bool, error)
	List(dbc dbctx.Context) ([]*types.FeatureToggle, error)
	Set(dbc dbctx.Context, feature types.Feature, enabled bool) error
}

type featureToggleService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.FeatureToggleRepo
}

func NewFeatureToggleService(db *gorm.DB, baseLog *logger.Logger, repo repos.FeatureToggleRepo) FeatureToggleService {
	return &featureToggleService{
		db:   db,
		log:  baseLog.With("service", "FeatureToggleService"),
		repo: repo,
	}
}

func (s *featureToggleService) IsEnabled(dbc dbctx.Context, feature types.Feature) (bool, error) {
	toggles, err := s.repo.FindAll(dbc)
	if err != nil {
		return false, err
	}
	for _, t := range toggles {
		if t.Feature == feature {
			return t.Enabled, nil
		}
	}
	return false, nil
}

func (s *featureToggleService) List(dbc dbctx.Context) ([]*types.FeatureToggle, error) {
	return s.repo.FindAll(dbc)
}

func (s *featureToggleService) Set(dbc dbctx.Context, feature types.Feature, enabled bool) error {
	s.log.Info("updating feature toggle", "feature", feature, "enabled", enabled)
	return s.repo.Upsert(dbc, &types.FeatureToggle{Feature: feature, Enabled: enabled})
}
