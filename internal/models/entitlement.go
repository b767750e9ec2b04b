package models

import "time"

// InviteCode is an issued premium-activation code. A code may be redeemed at
// most once.
type InviteCode struct {
	ID         string     `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	IssuedTo   *string    `db:"issued_to" json:"issued_to,omitempty"`
	RedeemedBy *string    `db:"redeemed_by" json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `db:"redeemed_at" json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// PaymentStatus mirrors the gateway outcome; only the outcome matters here.
type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentRecord stores the result of a payment-gateway callback.
type PaymentRecord struct {
	ID        string        `db:"id" json:"id"`
	LearnerID string        `db:"learner_id" json:"learner_id"`
	Reference string        `db:"reference" json:"reference"`
	Status    PaymentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// ViewDecision is the entitlement verdict for rendering a pillar. A blocked
// pillar is a routing decision to the paywall, not an error.
type ViewDecision struct {
	PillarIndex int    `json:"pillar_index"`
	Viewable    bool   `json:"viewable"`
	Reason      string `json:"reason,omitempty"`
}

// InviteActivationRequest redeems a one-shot code for premium access.
type InviteActivationRequest struct {
	Code string `json:"code" validate:"required"`
}

// InviteIssueRequest optionally earmarks a freshly minted code.
type InviteIssueRequest struct {
	IssuedTo *string `json:"issued_to,omitempty"`
}

// PaymentActivationRequest reports a payment-gateway outcome.
type PaymentActivationRequest struct {
	Reference string        `json:"reference" validate:"required"`
	Status    PaymentStatus `json:"status" validate:"required"`
}
