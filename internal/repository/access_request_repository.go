package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pillar-academy-api/internal/models"
)

// AccessRequestRepository persists the legacy manual-approval requests. The
// table is write-once from the learner side and read-only for admins; gating
// never consults it.
type AccessRequestRepository struct {
	db *sqlx.DB
}

// NewAccessRequestRepository constructs the repository.
func NewAccessRequestRepository(db *sqlx.DB) *AccessRequestRepository {
	return &AccessRequestRepository{db: db}
}

// Create inserts a pending access request.
func (r *AccessRequestRepository) Create(ctx context.Context, request *models.AccessRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.AccessRequestPending
	}
	const query = `INSERT INTO access_requests (id, learner_id, current_pillar, requested_pillar, status, created_at)
VALUES (:id, :learner_id, :current_pillar, :requested_pillar, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create access request: %w", err)
	}
	return nil
}

// List returns access requests, optionally filtered by learner, newest first.
func (r *AccessRequestRepository) List(ctx context.Context, learnerID string, limit int) ([]models.AccessRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var conditions []string
	var args []interface{}
	if learnerID != "" {
		conditions = append(conditions, fmt.Sprintf("learner_id = $%d", len(args)+1))
		args = append(args, learnerID)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	query := fmt.Sprintf(`SELECT id, learner_id, current_pillar, requested_pillar, status, created_at
FROM access_requests%s ORDER BY created_at DESC LIMIT %d`, clause, limit)
	var requests []models.AccessRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return requests, nil
}
