package models

import "time"

// UserRole represents the available roles for access control.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleLearner UserRole = "LEARNER"
)

// SubscriptionTier represents the learner's entitlement level.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "FREE"
	TierPremium SubscriptionTier = "PREMIUM"
	TierExpired SubscriptionTier = "EXPIRED"
)

// Learner represents an account stored in the users table. ApprovedPillar is
// the pillar the learner is currently authorised to work on: registration
// sets it to 1 and approving the exam for pillar p raises it to at least p+1.
// It is the single source of truth for frontier progress.
type Learner struct {
	ID                   string           `db:"id" json:"id"`
	Email                string           `db:"email" json:"email"`
	PasswordHash         string           `db:"password_hash" json:"-"`
	FullName             string           `db:"full_name" json:"full_name"`
	Role                 UserRole         `db:"role" json:"role"`
	Active               bool             `db:"active" json:"active"`
	SubscriptionTier     SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`
	ApprovedPillar       int              `db:"approved_pillar" json:"approved_pillar"`
	ChosenSpecialization *string          `db:"chosen_specialization" json:"chosen_specialization,omitempty"`
	LastLogin            *time.Time       `db:"last_login" json:"last_login,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// CompletedModule links a learner to a finished per-pillar sub-unit.
type CompletedModule struct {
	LearnerID   string    `db:"learner_id" json:"learner_id"`
	ModuleID    string    `db:"module_id" json:"module_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// LearnerFilter captures filtering criteria for listing learners.
type LearnerFilter struct {
	Role      *UserRole
	Tier      *SubscriptionTier
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
