package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/opencourts/offence-registry-backend/internal/domain"
	"github.com/opencourts/offence-registry-backend/internal/platform/dbctx"
	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
	"github.com/opencourts/offence-registry-backend/internal/services"
)

// AdminHandler exposes the manual levers: feature toggles, on-demand syncs
// and the shard load results.
type AdminHandler struct {
	log       *logger.Logger
	toggles   services.FeatureToggleService
	sdrsSync  services.SdrsSyncService
	nomisSync services.NomisSyncService
}

func NewAdminHandler(
	baseLog *logger.Logger,
	toggles services.FeatureToggleService,
	sdrsSync services.SdrsSyncService,
	nomisSync services.NomisSyncService,
) *AdminHandler {
	return &AdminHandler{
		log:       baseLog.With("handler", "AdminHandler"),
		toggles:   toggles,
		sdrsSync:  sdrsSync,
		nomisSync: nomisSync,
	}
}

// GET /api/admin/toggles
func (h *AdminHandler) ListToggles(c *gin.Context) {
	toggles, err := h.toggles.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"featureToggles": toggles})
}

type setToggleRequest struct {
	Feature types.Feature `json:"feature" binding:"required"`
	Enabled *bool         `json:"enabled" binding:"required"`
}

// PUT /api/admin/toggles
func (h *AdminHandler) SetToggle(c *gin.Context) {
	var req setToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.toggles.Set(dbctx.Context{Ctx: c.Request.Context()}, req.Feature, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/change-history?since=2006-01-02
func (h *AdminHandler) ChangeHistory(c *gin.Context) {
	since, err := time.Parse("2006-01-02", c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since date"})
		return
	}
	rows, err := h.nomisSync.ChangeHistory(dbctx.Context{Ctx: c.Request.Context()}, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changeHistory": rows})
}

type reactivatedRequest struct {
	OffenceCode string `json:"offenceCode" binding:"required"`
	User        string `json:"user" binding:"required"`
}

// PUT /api/admin/reactivated
func (h *AdminHandler) MarkReactivated(c *gin.Context) {
	var req reactivatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.nomisSync.MarkReactivated(dbctx.Context{Ctx: c.Request.Context()}, req.OffenceCode, req.User); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/admin/reactivated/:code
func (h *AdminHandler) ClearReactivated(c *gin.Context) {
	if err := h.nomisSync.ClearReactivated(dbctx.Context{Ctx: c.Request.Context()}, c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/load-results
func (h *AdminHandler) LoadResults(c *gin.Context) {
	results, err := h.sdrsSync.LoadResults(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loadResults": results})
}

// POST /api/admin/sync/sdrs
func (h *AdminHandler) RunSdrsSync(c *gin.Context) {
	if err := h.sdrsSync.Synchronize(dbctx.Context{Ctx: c.Request.Context()}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/admin/sync/sdrs/full-load
func (h *AdminHandler) RunSdrsFullLoad(c *gin.Context) {
	if err := h.sdrsSync.FullLoad(dbctx.Context{Ctx: c.Request.Context()}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/admin/sync/nomis/full
func (h *AdminHandler) RunNomisFullSync(c *gin.Context) {
	if err := h.nomisSync.FullSync(dbctx.Context{Ctx: c.Request.Context()}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/admin/sync/nomis/delta
func (h *AdminHandler) RunNomisDeltaSync(c *gin.Context) {
	if err := h.nomisSync.DeltaSync(dbctx.Context{Ctx: c.Request.Context()}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
