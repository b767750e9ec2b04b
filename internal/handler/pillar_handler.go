package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pillar-academy-api/internal/middleware"
	"github.com/noah-isme/pillar-academy-api/internal/service"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
	"github.com/noah-isme/pillar-academy-api/pkg/response"
)

// PillarHandler exposes the progression surface: overview, module completion
// and the advance decision.
type PillarHandler struct {
	service *service.ProgressionService
}

// NewPillarHandler creates a new handler.
func NewPillarHandler(svc *service.ProgressionService) *PillarHandler {
	return &PillarHandler{service: svc}
}

// Overview godoc
// @Summary Curriculum overview
// @Description Per-pillar status, entitlement and module counts for the current learner
// @Tags Pillars
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /pillars [get]
func (h *PillarHandler) Overview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pillars, cached, err := h.service.Overview(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, pillars, nil, middleware.ExtractMeta(c))
}

// CompleteModule godoc
// @Summary Complete a module
// @Description Mark one sub-unit of an unlocked, viewable pillar as finished
// @Tags Pillars
// @Produce json
// @Param id path string true "Module ID"
// @Success 204 "No Content"
// @Failure 402 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /modules/{id}/complete [post]
func (h *PillarHandler) CompleteModule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	moduleID := c.Param("id")
	if moduleID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "module id is required"))
		return
	}

	if err := h.service.CompleteModule(c.Request.Context(), claims.UserID, moduleID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Advance godoc
// @Summary Advance past a pillar
// @Description Decide what happens when the learner tries to move past a pillar
// @Tags Pillars
// @Produce json
// @Param index path int true "Pillar index"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pillars/{index}/advance [post]
func (h *PillarHandler) Advance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pillar index must be a positive integer"))
		return
	}

	result, err := h.service.Advance(c.Request.Context(), claims.UserID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
