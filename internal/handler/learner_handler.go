package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pillar-academy-api/internal/models"
	"github.com/noah-isme/pillar-academy-api/internal/service"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
	"github.com/noah-isme/pillar-academy-api/pkg/response"
)

type learnerReader interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, int, error)
}

// LearnerHandler serves profile and admin learner listings.
type LearnerHandler struct {
	learners        learnerReader
	specializations *service.SpecializationService
}

// NewLearnerHandler creates a new handler.
func NewLearnerHandler(learners learnerReader, specializations *service.SpecializationService) *LearnerHandler {
	return &LearnerHandler{learners: learners, specializations: specializations}
}

// Me godoc
// @Summary Get current profile
// @Description Returns the authenticated account with its progress snapshot
// @Tags Learners
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *LearnerHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	learner, err := h.learners.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "account not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account"))
		return
	}

	payload := gin.H{"learner": learner}
	if progress, err := h.specializations.GlobalProgress(c.Request.Context(), claims.UserID); err == nil {
		payload["progress"] = progress
	}

	response.JSON(c, http.StatusOK, payload, nil)
}

// List godoc
// @Summary List learners
// @Description Admin listing with role, tier and search filters
// @Tags Learners
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param role query string false "Role filter"
// @Param tier query string false "Subscription tier filter"
// @Param search query string false "Search by name or email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /learners [get]
func (h *LearnerHandler) List(c *gin.Context) {
	filter := models.LearnerFilter{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if tier := c.Query("tier"); tier != "" {
		t := models.SubscriptionTier(tier)
		filter.Tier = &t
	}

	learners, total, err := h.learners.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learners"))
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize < 1 {
		pagination.PageSize = 20
	}
	response.JSON(c, http.StatusOK, learners, pagination)
}
