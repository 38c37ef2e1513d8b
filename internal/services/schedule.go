package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opencourts/offence-registry-backend/internal/clients/nomis"
	"github.com/opencourts/offence-registry-backend/internal/data/repos"
	types "github.com/opencourts/offence-registry-backend/internal/domain"
	domsched "github.com/opencourts/offence-registry-backend/internal/domain/schedules"
	apperrors "github.com/opencourts/offence-registry-backend/internal/pkg/errors"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// ScheduleDetails is a schedule stitched together with its parts, paragraphs
// and mapped offences.
type ScheduleDetails struct {
	Schedule types.Schedule        `json:"schedule"`
	Parts    []SchedulePartDetails `json:"parts"`
}

type SchedulePartDetails struct {
	Part       types.SchedulePart        `json:"part"`
	Paragraphs []types.ScheduleParagraph `json:"paragraphs"`
	Offences   []MappedOffence           `json:"offences"`
}

type MappedOffence struct {
	Offence         types.Offence `json:"offence"`
	LineReference   string        `json:"lineReference,omitempty"`
	LegislationText string        `json:"legislationText,omitempty"`
}

type ScheduleService interface {
	Schedules(dbc dbctx.Context) ([]*types.Schedule, error)
	ScheduleByID(dbc dbctx.Context, id uuid.UUID) (*ScheduleDetails, error)
	LinkOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) error
	UnlinkOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) error
}

type scheduleService struct {
	db  *gorm.DB
	log *logger.Logger

	scheduleRepo repos.ScheduleRepo
	mappingRepo  repos.MappingRepo
	offenceRepo  repos.OffenceRepo
	nomis        nomis.Client
	cache        ScheduleCacheService

	runTx func(dbc dbctx.Context, fn func(dbctx.Context) error) error
}

func NewScheduleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scheduleRepo repos.ScheduleRepo,
	mappingRepo repos.MappingRepo,
	offenceRepo repos.OffenceRepo,
	nomisClient nomis.Client,
	cache ScheduleCacheService,
) ScheduleService {
	s := &scheduleService{
		db:           db,
		log:          baseLog.With("service", "ScheduleService"),
		scheduleRepo: scheduleRepo,
		mappingRepo:  mappingRepo,
		offenceRepo:  offenceRepo,
		nomis:        nomisClient,
		cache:        cache,
	}
	s.runTx = func(dbc dbctx.Context, fn func(dbctx.Context) error) error {
		return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
		})
	}
	return s
}

func (s *scheduleService) Schedules(dbc dbctx.Context) ([]*types.Schedule, error) {
	return s.scheduleRepo.FindAll(dbc)
}

func (s *scheduleService) ScheduleByID(dbc dbctx.Context, id uuid.UUID) (*ScheduleDetails, error) {
	sched, err := s.scheduleRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule %s: %w", id, apperrors.ErrNotFound)
	}

	parts, err := s.scheduleRepo.FindPartsByScheduleIDs(dbc, []uuid.UUID{sched.ID})
	if err != nil {
		return nil, err
	}
	partIDs := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		partIDs = append(partIDs, p.ID)
	}

	paragraphs, err := s.scheduleRepo.FindParagraphsByPartIDs(dbc, partIDs)
	if err != nil {
		return nil, err
	}
	mappings, err := s.mappingRepo.FindByPartIDs(dbc, partIDs)
	if err != nil {
		return nil, err
	}

	offenceIDs := make([]uuid.UUID, 0, len(mappings))
	for _, m := range mappings {
		offenceIDs = append(offenceIDs, m.OffenceID)
	}
	offs, err := s.offenceRepo.GetByIDs(dbc, offenceIDs)
	if err != nil {
		return nil, err
	}
	offByID := make(map[uuid.UUID]*types.Offence, len(offs))
	for _, o := range offs {
		offByID[o.ID] = o
	}

	details := &ScheduleDetails{Schedule: *sched}
	for _, p := range parts {
		pd := SchedulePartDetails{Part: *p}
		for _, para := range paragraphs {
			if para.SchedulePartID == p.ID {
				pd.Paragraphs = append(pd.Paragraphs, *para)
			}
		}
		for _, m := range mappings {
			if m.SchedulePartID != p.ID {
				continue
			}
			off := offByID[m.OffenceID]
			if off == nil {
				continue
			}
			pd.Offences = append(pd.Offences, MappedOffence{
				Offence:         *off,
				LineReference:   m.LineReference,
				LegislationText: m.LegislationText,
			})
		}
		details.Parts = append(details.Parts, pd)
	}
	return details, nil
}

// LinkOffence attaches an offence to a schedule part. Inchoate children of the
// offence are linked alongside it, and when the schedule is pushed to the
// target system the mappings are replicated there.
func (s *scheduleService) LinkOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) error {
	part, sched, err := s.resolvePart(dbc, partID)
	if err != nil {
		return err
	}
	off, err := s.offenceRepo.GetByID(dbc, offenceID)
	if err != nil {
		return err
	}
	if off == nil {
		return fmt.Errorf("offence %s: %w", offenceID, apperrors.ErrNotFound)
	}

	exists, err := s.mappingRepo.ExistsForPartAndOffence(dbc, part.ID, off.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("offence %s on part %d: %w", off.Code, part.PartNumber, apperrors.ErrAlreadyLinked)
	}

	family := []*types.Offence{off}
	if !off.IsChild() && len(off.Code) == 7 {
		children, err := s.offenceRepo.FindChildren(dbc, off.Code)
		if err != nil {
			return err
		}
		family = append(family, children...)
	}

	mappings := make([]*types.OffenceScheduleMapping, 0, len(family))
	for _, member := range family {
		linked, err := s.mappingRepo.ExistsForPartAndOffence(dbc, part.ID, member.ID)
		if err != nil {
			return err
		}
		if linked {
			continue
		}
		mappings = append(mappings, &types.OffenceScheduleMapping{
			SchedulePartID: part.ID,
			OffenceID:      member.ID,
		})
	}

	err = s.runTx(dbc, func(txc dbctx.Context) error {
		return s.mappingRepo.Create(txc, mappings)
	})
	if err != nil {
		return err
	}

	if nomisSchedule := nomisScheduleName(sched); nomisSchedule != "" {
		links := make([]nomis.ScheduleMapping, 0, len(family))
		for _, member := range family {
			links = append(links, nomis.ScheduleMapping{
				OffenceCode:  member.Code,
				ScheduleCode: nomisSchedule,
			})
		}
		if err := s.nomis.LinkToSchedule(dbc.Ctx, links); err != nil {
			return fmt.Errorf("link %s to %s in target system: %w", off.Code, nomisSchedule, err)
		}
	}

	s.cache.Evict()
	s.log.Info("offence linked to schedule part",
		"offence_code", off.Code, "schedule_code", sched.Code, "part", part.PartNumber,
		"linked", len(mappings))
	return nil
}

// UnlinkOffence removes an offence from a schedule part along with any of its
// inchoate children linked to the same part.
func (s *scheduleService) UnlinkOffence(dbc dbctx.Context, partID, offenceID uuid.UUID) error {
	part, sched, err := s.resolvePart(dbc, partID)
	if err != nil {
		return err
	}
	off, err := s.offenceRepo.GetByID(dbc, offenceID)
	if err != nil {
		return err
	}
	if off == nil {
		return fmt.Errorf("offence %s: %w", offenceID, apperrors.ErrNotFound)
	}

	family := []*types.Offence{off}
	if !off.IsChild() && len(off.Code) == 7 {
		children, err := s.offenceRepo.FindChildren(dbc, off.Code)
		if err != nil {
			return err
		}
		family = append(family, children...)
	}
	ids := make([]uuid.UUID, 0, len(family))
	for _, member := range family {
		ids = append(ids, member.ID)
	}

	err = s.runTx(dbc, func(txc dbctx.Context) error {
		return s.mappingRepo.DeleteForPartAndOffences(txc, part.ID, ids)
	})
	if err != nil {
		return err
	}

	if nomisSchedule := nomisScheduleName(sched); nomisSchedule != "" {
		links := make([]nomis.ScheduleMapping, 0, len(family))
		for _, member := range family {
			links = append(links, nomis.ScheduleMapping{
				OffenceCode:  member.Code,
				ScheduleCode: nomisSchedule,
			})
		}
		if err := s.nomis.UnlinkFromSchedule(dbc.Ctx, links); err != nil {
			return fmt.Errorf("unlink %s from %s in target system: %w", off.Code, nomisSchedule, err)
		}
	}

	s.cache.Evict()
	s.log.Info("offence unlinked from schedule part",
		"offence_code", off.Code, "schedule_code", sched.Code, "part", part.PartNumber)
	return nil
}

func (s *scheduleService) resolvePart(dbc dbctx.Context, partID uuid.UUID) (*types.SchedulePart, *types.Schedule, error) {
	part, err := s.scheduleRepo.GetPartByID(dbc, partID)
	if err != nil {
		return nil, nil, err
	}
	if part == nil {
		return nil, nil, fmt.Errorf("schedule part %s: %w", partID, apperrors.ErrNotFound)
	}
	sched, err := s.scheduleRepo.GetByID(dbc, part.ScheduleID)
	if err != nil {
		return nil, nil, err
	}
	if sched == nil {
		return nil, nil, fmt.Errorf("schedule %s: %w", part.ScheduleID, apperrors.ErrNotFound)
	}
	return part, sched, nil
}

// nomisScheduleName maps a schedule to the name the target system knows it
// by. Only Schedule 15 of the 2003 Act is replicated; every other schedule is
// local-only.
func nomisScheduleName(sched *types.Schedule) string {
	if sched.Code == domsched.Schedule15Code {
		return "SCHEDULE_15"
	}
	return ""
}
