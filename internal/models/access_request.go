package models

import "time"

// AccessRequestStatus is the review state of a manual access request.
type AccessRequestStatus string

const (
	AccessRequestPending AccessRequestStatus = "PENDING"
)

// AccessRequest is the legacy manual-approval path kept for compatibility
// with older clients. It is not consulted by the gating logic.
type AccessRequest struct {
	ID              string              `db:"id" json:"id"`
	LearnerID       string              `db:"learner_id" json:"learner_id"`
	CurrentPillar   int                 `db:"current_pillar" json:"current_pillar"`
	RequestedPillar int                 `db:"requested_pillar" json:"requested_pillar"`
	Status          AccessRequestStatus `db:"status" json:"status"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
}

// CreateAccessRequestPayload asks an administrator to review access manually.
type CreateAccessRequestPayload struct {
	CurrentPillar   int `json:"current_pillar" validate:"min=1,max=9"`
	RequestedPillar int `json:"requested_pillar" validate:"required,min=1,max=9"`
}
