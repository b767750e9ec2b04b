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

// ExamHandler exposes the exam wizard and the admin grading surface.
type ExamHandler struct {
	service *service.ExamService
}

// NewExamHandler creates a new handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// StartAttempt godoc
// @Summary Start exam attempt
// @Description Open the exam wizard for a pillar, or resume the in-flight attempt
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body models.StartAttemptRequest true "Pillar to examine"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /exams/attempts [post]
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attempt payload"))
		return
	}

	attempt, err := h.service.StartAttempt(c.Request.Context(), claims.UserID, req.PillarIndex)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, attempt)
}

// Acknowledge godoc
// @Summary Acknowledge exam intro
// @Description Move the wizard from the intro step to the quiz
// @Tags Exams
// @Produce json
// @Param index path int true "Pillar index"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/attempts/{index}/acknowledge [post]
func (h *ExamHandler) Acknowledge(c *gin.Context) {
	claims, index, ok := h.attemptParams(c)
	if !ok {
		return
	}

	attempt, err := h.service.Acknowledge(c.Request.Context(), claims.UserID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, attempt, nil)
}

// Answer godoc
// @Summary Answer quiz question
// @Description Record the selected option for the current quiz question
// @Tags Exams
// @Accept json
// @Produce json
// @Param index path int true "Pillar index"
// @Param payload body models.AnswerRequest true "Selected option"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/attempts/{index}/answers [post]
func (h *ExamHandler) Answer(c *gin.Context) {
	claims, index, ok := h.attemptParams(c)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	attempt, err := h.service.Answer(c.Request.Context(), claims.UserID, index, req.Option)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, attempt, nil)
}

// Written godoc
// @Summary Submit written answer
// @Description Set the free-text reflection for the written step
// @Tags Exams
// @Accept json
// @Produce json
// @Param index path int true "Pillar index"
// @Param payload body models.WrittenRequest true "Written answer"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exams/attempts/{index}/written [post]
func (h *ExamHandler) Written(c *gin.Context) {
	claims, index, ok := h.attemptParams(c)
	if !ok {
		return
	}

	var req models.WrittenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid written payload"))
		return
	}

	attempt, err := h.service.Written(c.Request.Context(), claims.UserID, index, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, attempt, nil)
}

// Submit godoc
// @Summary Submit exam
// @Description Persist the attempt as a pending submission for admin grading
// @Tags Exams
// @Produce json
// @Param index path int true "Pillar index"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/attempts/{index}/submit [post]
func (h *ExamHandler) Submit(c *gin.Context) {
	claims, index, ok := h.attemptParams(c)
	if !ok {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), claims.UserID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Status godoc
// @Summary Latest exam status
// @Description Status of the most recent submission for a pillar, null when none exists
// @Tags Exams
// @Produce json
// @Param pillar query int true "Pillar index"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exams/status [get]
func (h *ExamHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pillar, err := strconv.Atoi(c.Query("pillar"))
	if err != nil || pillar < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pillar must be a positive integer"))
		return
	}

	submission, err := h.service.Status(c.Request.Context(), claims.UserID, pillar)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, submission, nil)
}

// List godoc
// @Summary List exam submissions
// @Description Admin listing of submissions with learner, pillar and status filters
// @Tags Exams
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param learner_id query string false "Learner filter"
// @Param pillar query int false "Pillar filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter := models.ExamFilter{
		LearnerID: c.Query("learner_id"),
		Status:    models.ExamStatus(c.Query("status")),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter.PillarIndex, _ = strconv.Atoi(c.Query("pillar"))

	submissions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, submissions, pagination)
}

// Grade godoc
// @Summary Grade exam submission
// @Description Record the admin verdict; approval raises the learner's approved pillar
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body models.GradeRequest true "Verdict"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/grade [post]
func (h *ExamHandler) Grade(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	submission, err := h.service.Grade(c.Request.Context(), c.Param("id"), claims.UserID, req.Outcome, req.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, submission, nil)
}

func (h *ExamHandler) attemptParams(c *gin.Context) (*models.JWTClaims, int, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, 0, false
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pillar index must be a positive integer"))
		return nil, 0, false
	}
	return claims, index, true
}
