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

// LearnerRepository handles persistence of learner accounts, their completed
// modules, refresh tokens and the audit trail.
type LearnerRepository struct {
	db *sqlx.DB
}

// NewLearnerRepository constructs the repository.
func NewLearnerRepository(db *sqlx.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

const learnerColumns = `id, email, password_hash, full_name, role, active, subscription_tier, approved_pillar, chosen_specialization, last_login, created_at, updated_at`

// FindByID returns a learner by ID.
func (r *LearnerRepository) FindByID(ctx context.Context, id string) (*models.Learner, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, learnerColumns)
	var learner models.Learner
	if err := r.db.GetContext(ctx, &learner, query, id); err != nil {
		return nil, err
	}
	return &learner, nil
}

// FindByEmail returns a learner by normalised email.
func (r *LearnerRepository) FindByEmail(ctx context.Context, email string) (*models.Learner, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, learnerColumns)
	var learner models.Learner
	if err := r.db.GetContext(ctx, &learner, query, strings.ToLower(email)); err != nil {
		return nil, err
	}
	return &learner, nil
}

// Create persists a new learner account.
func (r *LearnerRepository) Create(ctx context.Context, learner *models.Learner) error {
	if learner.ID == "" {
		learner.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if learner.CreatedAt.IsZero() {
		learner.CreatedAt = now
	}
	learner.UpdatedAt = now
	if learner.ApprovedPillar < 1 {
		learner.ApprovedPillar = 1
	}
	if learner.SubscriptionTier == "" {
		learner.SubscriptionTier = models.TierFree
	}
	const query = `INSERT INTO users (id, email, password_hash, full_name, role, active, subscription_tier, approved_pillar, chosen_specialization, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :role, :active, :subscription_tier, :approved_pillar, :chosen_specialization, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, learner); err != nil {
		return fmt.Errorf("create learner: %w", err)
	}
	return nil
}

// List returns learners filtered by the provided criteria.
func (r *LearnerRepository) List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Tier != nil {
		conditions = append(conditions, fmt.Sprintf("subscription_tier = $%d", len(args)+1))
		args = append(args, *filter.Tier)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(email ILIKE $%d OR full_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":      "created_at",
		"email":           "email",
		"approved_pillar": "approved_pillar",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY %s %s LIMIT %d OFFSET %d`, learnerColumns, clause, orderBy, order, size, offset)
	var learners []models.Learner
	if err := r.db.SelectContext(ctx, &learners, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list learners: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM users" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count learners: %w", err)
	}
	return learners, total, nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *LearnerRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *LearnerRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetSpecialization records the learner's chosen elective track.
func (r *LearnerRepository) SetSpecialization(ctx context.Context, id, specializationID string) error {
	const query = `UPDATE users SET chosen_specialization = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, specializationID, time.Now().UTC()); err != nil {
		return fmt.Errorf("set specialization: %w", err)
	}
	return nil
}

// CompletedModules returns the module IDs the learner has finished.
func (r *LearnerRepository) CompletedModules(ctx context.Context, learnerID string) ([]string, error) {
	const query = `SELECT module_id FROM learner_modules WHERE learner_id = $1 ORDER BY completed_at ASC`
	var moduleIDs []string
	if err := r.db.SelectContext(ctx, &moduleIDs, query, learnerID); err != nil {
		return nil, fmt.Errorf("list completed modules: %w", err)
	}
	return moduleIDs, nil
}

// AddCompletedModules marks modules done, skipping ones already present.
func (r *LearnerRepository) AddCompletedModules(ctx context.Context, learnerID string, moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO learner_modules (learner_id, module_id, completed_at)
VALUES ($1, $2, $3) ON CONFLICT (learner_id, module_id) DO NOTHING`
	now := time.Now().UTC()
	for _, moduleID := range moduleIDs {
		if _, err := r.db.ExecContext(ctx, query, learnerID, moduleID, now); err != nil {
			return fmt.Errorf("complete module %s: %w", moduleID, err)
		}
	}
	return nil
}

// CreateRefreshToken persists a refresh token session.
func (r *LearnerRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	const query = `INSERT INTO refresh_tokens (id, learner_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent)
VALUES (:id, :learner_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token by its opaque value.
func (r *LearnerRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, learner_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
FROM refresh_tokens WHERE token = $1`
	var record models.RefreshToken
	if err := r.db.GetContext(ctx, &record, query, token); err != nil {
		return nil, err
	}
	return &record, nil
}

// RevokeRefreshToken marks one session revoked.
func (r *LearnerRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeLearnerRefreshTokens revokes all active sessions for a learner.
func (r *LearnerRepository) RevokeLearnerRefreshTokens(ctx context.Context, learnerID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE learner_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, learnerID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke learner refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog records an audit trail entry.
func (r *LearnerRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, learner_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
VALUES (:id, :learner_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
