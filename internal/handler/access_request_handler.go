package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	"github.com/noah-isme/pillar-academy-api/internal/service"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
	"github.com/noah-isme/pillar-academy-api/pkg/response"
)

// AccessRequestHandler serves the legacy manual-approval path.
type AccessRequestHandler struct {
	service *service.AccessRequestService
}

// NewAccessRequestHandler creates a new handler.
func NewAccessRequestHandler(svc *service.AccessRequestService) *AccessRequestHandler {
	return &AccessRequestHandler{service: svc}
}

// Create godoc
// @Summary Create access request
// @Description File a manual access request for administrator review
// @Tags AccessRequests
// @Accept json
// @Produce json
// @Param payload body models.CreateAccessRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /access-requests [post]
func (h *AccessRequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateAccessRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid access request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claims.UserID, req.CurrentPillar, req.RequestedPillar)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List godoc
// @Summary List access requests
// @Description Admin listing of manual access requests, optionally per learner
// @Tags AccessRequests
// @Produce json
// @Param learner_id query string false "Learner filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /access-requests [get]
func (h *AccessRequestHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	requests, err := h.service.List(c.Request.Context(), c.Query("learner_id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}
