package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/services"
)

type OffenceHandler struct {
	log *logger.Logger
	svc services.OffenceService
}

func NewOffenceHandler(baseLog *logger.Logger, svc services.OffenceService) *OffenceHandler {
	return &OffenceHandler{
		log: baseLog.With("handler", "OffenceHandler"),
		svc: svc,
	}
}

// GET /api/offences/:id
func (h *OffenceHandler) GetOffence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offence id"})
		return
	}
	off, err := h.svc.GetByID(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, off)
}

// GET /api/offences/search?code=...
func (h *OffenceHandler) Search(c *gin.Context) {
	offs, err := h.svc.SearchByCodePrefix(dbctx.Context{Ctx: c.Request.Context()}, c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offences": offs})
}

// GET /api/offences/codes?code=A&code=B
func (h *OffenceHandler) GetByCodes(c *gin.Context) {
	offs, err := h.svc.FindByCodes(dbctx.Context{Ctx: c.Request.Context()}, c.QueryArray("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offences": offs})
}

// GET /api/offences/changed?from=2006-01-02&to=2006-01-02
func (h *OffenceHandler) GetByChangedRange(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	offs, err := h.svc.FindByChangedDateRange(dbctx.Context{Ctx: c.Request.Context()}, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offences": offs})
}

// GET /api/statutes
func (h *OffenceHandler) ListStatutes(c *gin.Context) {
	statutes, err := h.svc.Statutes(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statutes": statutes})
}

// GET /api/offences/pcsc-indicators?code=A&code=B
func (h *OffenceHandler) PcscIndicators(c *gin.Context) {
	markers, err := h.svc.PcscIndicators(dbctx.Context{Ctx: c.Request.Context()}, c.QueryArray("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offencePcscMarkers": markers})
}

// GET /api/offences/categorisation?code=A&code=B
func (h *OffenceHandler) Categorisations(c *gin.Context) {
	cats, err := h.svc.Categorisations(dbctx.Context{Ctx: c.Request.Context()}, c.QueryArray("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categorisations": cats})
}
