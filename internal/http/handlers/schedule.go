package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/services"
)

type ScheduleHandler struct {
	log *logger.Logger
	svc services.ScheduleService
}

func NewScheduleHandler(baseLog *logger.Logger, svc services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		log: baseLog.With("handler", "ScheduleHandler"),
		svc: svc,
	}
}

// GET /api/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	scheds, err := h.svc.Schedules(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": scheds})
}

// GET /api/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}
	details, err := h.svc.ScheduleByID(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type linkOffenceRequest struct {
	SchedulePartID uuid.UUID `json:"schedulePartId" binding:"required"`
	OffenceID      uuid.UUID `json:"offenceId" binding:"required"`
}

// POST /api/schedules/link-offence
func (h *ScheduleHandler) LinkOffence(c *gin.Context) {
	var req linkOffenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.LinkOffence(dbctx.Context{Ctx: c.Request.Context()}, req.SchedulePartID, req.OffenceID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/schedules/unlink-offence
func (h *ScheduleHandler) UnlinkOffence(c *gin.Context) {
	var req linkOffenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.UnlinkOffence(dbctx.Context{Ctx: c.Request.Context()}, req.SchedulePartID, req.OffenceID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
