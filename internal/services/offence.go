package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	apperrors "github.com/opencourts/offence-registry-backend/internal/pkg/errors"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// OffenceCategorisation pairs a code with both classification outputs.
type OffenceCategorisation struct {
	OffenceCode       string                  `json:"offenceCode"`
	ExclusionCategory types.ExclusionCategory `json:"exclusionCategory"`
	ScheduleCategory  types.ScheduleCategory  `json:"scheduleCategory"`
}

type OffenceService interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offence, error)
	SearchByCodePrefix(dbc dbctx.Context, prefix string) ([]*types.Offence, error)
	FindByCodes(dbc dbctx.Context, codes []string) ([]*types.Offence, error)
	FindByChangedDateRange(dbc dbctx.Context, from, to time.Time) ([]*types.Offence, error)
	PcscIndicators(dbc dbctx.Context, codes []string) ([]types.PcscMarkers, error)
	Categorisations(dbc dbctx.Context, codes []string) ([]OffenceCategorisation, error)
	Statutes(dbc dbctx.Context) ([]*types.Statute, error)
}

type offenceService struct {
	db  *gorm.DB
	log *logger.Logger

	offenceRepo repos.OffenceRepo
	statuteRepo repos.StatuteRepo
	cache       ScheduleCacheService
	toggles     FeatureToggleService
}

func NewOffenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	offenceRepo repos.OffenceRepo,
	statuteRepo repos.StatuteRepo,
	cache ScheduleCacheService,
	toggles FeatureToggleService,
) OffenceService {
	return &offenceService{
		db:          db,
		log:         baseLog.With("service", "OffenceService"),
		offenceRepo: offenceRepo,
		statuteRepo: statuteRepo,
		cache:       cache,
		toggles:     toggles,
	}
}

func (s *offenceService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offence, error) {
	off, err := s.offenceRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if off == nil {
		return nil, fmt.Errorf("offence %s: %w", id, apperrors.ErrNotFound)
	}
	return off, nil
}

// SearchByCodePrefix requires at least three characters so a lookup can never
// sweep the whole table.
func (s *offenceService) SearchByCodePrefix(dbc dbctx.Context, prefix string) ([]*types.Offence, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 3 {
		return nil, fmt.Errorf("code prefix must be at least 3 characters: %w", apperrors.ErrInvalidArgument)
	}
	return s.offenceRepo.FindByCodePrefix(dbc, strings.ToUpper(prefix))
}

func (s *offenceService) FindByCodes(dbc dbctx.Context, codes []string) ([]*types.Offence, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one offence code required: %w", apperrors.ErrInvalidArgument)
	}
	return s.offenceRepo.GetByCodes(dbc, codes)
}

func (s *offenceService) FindByChangedDateRange(dbc dbctx.Context, from, to time.Time) ([]*types.Offence, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("changed date range is empty: %w", apperrors.ErrInvalidArgument)
	}
	return s.offenceRepo.FindByChangedDateRange(dbc, from, to)
}

func (s *offenceService) PcscIndicators(dbc dbctx.Context, codes []string) ([]types.PcscMarkers, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one offence code required: %w", apperrors.ErrInvalidArgument)
	}
	info, err := s.cache.Get(dbc)
	if err != nil {
		return nil, err
	}
	out := make([]types.PcscMarkers, 0, len(codes))
	for _, code := range codes {
		out = append(out, info.PcscMarkers(code))
	}
	return out, nil
}

func (s *offenceService) Statutes(dbc dbctx.Context) ([]*types.Statute, error) {
	return s.statuteRepo.FindAll(dbc)
}

func (s *offenceService) Categorisations(dbc dbctx.Context, codes []string) ([]OffenceCategorisation, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one offence code required: %w", apperrors.ErrInvalidArgument)
	}
	info, err := s.cache.Get(dbc)
	if err != nil {
		return nil, err
	}
	trancheThree, err := s.toggles.IsEnabled(dbc, types.FeatureT3OffenceExclusions)
	if err != nil {
		return nil, err
	}
	out := make([]OffenceCategorisation, 0, len(codes))
	for _, code := range codes {
		out = append(out, OffenceCategorisation{
			OffenceCode:       code,
			ExclusionCategory: info.ExclusionCategory(code, trancheThree),
			ScheduleCategory:  info.ScheduleCategory(code),
		})
	}
	return out, nil
}
