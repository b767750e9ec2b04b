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

type tierReader interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
}

// EntitlementHandler exposes premium activation and the per-pillar view
// verdict.
type EntitlementHandler struct {
	service  *service.EntitlementService
	learners tierReader
}

// NewEntitlementHandler creates a new handler.
func NewEntitlementHandler(svc *service.EntitlementService, learners tierReader) *EntitlementHandler {
	return &EntitlementHandler{service: svc, learners: learners}
}

// ActivateInvite godoc
// @Summary Redeem invite code
// @Description Redeem a one-shot invite code and upgrade to the premium tier
// @Tags Entitlements
// @Accept json
// @Produce json
// @Param payload body models.InviteActivationRequest true "Invite code"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /entitlements/invite [post]
func (h *EntitlementHandler) ActivateInvite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.InviteActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	learner, err := h.service.ActivateWithInviteCode(c.Request.Context(), claims.UserID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, learner, nil)
}

// ActivatePayment godoc
// @Summary Record payment outcome
// @Description Record a payment-gateway outcome; a confirmed payment upgrades the tier
// @Tags Entitlements
// @Accept json
// @Produce json
// @Param payload body models.PaymentActivationRequest true "Payment outcome"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Router /entitlements/payment [post]
func (h *EntitlementHandler) ActivatePayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.PaymentActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	learner, err := h.service.ActivateWithPayment(c.Request.Context(), claims.UserID, req.Reference, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, learner, nil)
}

// IssueInvite godoc
// @Summary Issue invite code
// @Description Mint a fresh one-shot invite code, optionally earmarked for an email
// @Tags Entitlements
// @Accept json
// @Produce json
// @Param payload body models.InviteIssueRequest false "Optional recipient"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /invite-codes [post]
func (h *EntitlementHandler) IssueInvite(c *gin.Context) {
	var req models.InviteIssueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
			return
		}
	}

	code, err := h.service.IssueInviteCode(c.Request.Context(), req.IssuedTo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, code)
}

// View godoc
// @Summary Pillar view verdict
// @Description Returns whether the current subscription tier may view a pillar
// @Tags Entitlements
// @Produce json
// @Param index path int true "Pillar index"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pillars/{index}/view [get]
func (h *EntitlementHandler) View(c *gin.Context) {
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

	learner, err := h.learners.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "account not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account"))
		return
	}

	response.JSON(c, http.StatusOK, h.service.Decide(learner.SubscriptionTier, index), nil)
}
