package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type accessRequestRepository interface {
	Create(ctx context.Context, request *models.AccessRequest) error
	List(ctx context.Context, learnerID string, limit int) ([]models.AccessRequest, error)
}

// AccessRequestService is the legacy manual-approval path. Requests are
// recorded and listed for admins but never consulted by the gating logic.
type AccessRequestService struct {
	repo   accessRequestRepository
	logger *zap.Logger
}

// NewAccessRequestService constructs an AccessRequestService instance.
func NewAccessRequestService(repo accessRequestRepository, logger *zap.Logger) *AccessRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessRequestService{repo: repo, logger: logger}
}

// Create records a request from an older client.
func (s *AccessRequestService) Create(ctx context.Context, learnerID string, currentPillar, requestedPillar int) (*models.AccessRequest, error) {
	if _, ok := catalog.PillarByIndex(requestedPillar); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown requested pillar")
	}

	request := &models.AccessRequest{
		LearnerID:       learnerID,
		CurrentPillar:   currentPillar,
		RequestedPillar: requestedPillar,
		Status:          models.AccessRequestPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store access request")
	}
	return request, nil
}

// List returns recorded requests, optionally scoped to one learner.
func (s *AccessRequestService) List(ctx context.Context, learnerID string, limit int) ([]models.AccessRequest, error) {
	requests, err := s.repo.List(ctx, learnerID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list access requests")
	}
	return requests, nil
}
