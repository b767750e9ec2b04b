package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pillar-academy-api/internal/service"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
	"github.com/noah-isme/pillar-academy-api/pkg/response"
)

// SpecializationHandler exposes the post-curriculum tracks and the two-band
// global progress figure.
type SpecializationHandler struct {
	service *service.SpecializationService
}

// NewSpecializationHandler creates a new handler.
func NewSpecializationHandler(svc *service.SpecializationService) *SpecializationHandler {
	return &SpecializationHandler{service: svc}
}

// Tracks godoc
// @Summary List specialization tracks
// @Description Available tracks with the learner's per-track completion
// @Tags Specializations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /specializations [get]
func (h *SpecializationHandler) Tracks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tracks, err := h.service.Tracks(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tracks, nil)
}

// Choose godoc
// @Summary Choose specialization track
// @Description Bind the learner to a track once every pillar is complete
// @Tags Specializations
// @Produce json
// @Param id path string true "Track ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /specializations/{id}/choose [post]
func (h *SpecializationHandler) Choose(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	learner, err := h.service.Choose(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, learner, nil)
}

// GlobalProgress godoc
// @Summary Global progress
// @Description Two-band progress figure: pillars fill 0-50, specialization 50-100
// @Tags Specializations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /progress [get]
func (h *SpecializationHandler) GlobalProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	progress, err := h.service.GlobalProgress(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, progress, nil)
}
