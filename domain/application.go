package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// GrantApplication is a funding request submitted by an applicant and
// reviewed by an admin. The review fields stay empty until an admin
// settles the application.
type GrantApplication struct {
	ID          uuid.UUID         `json:"id"`
	ApplicantID string            `json:"applicantId"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Amount      int64             `json:"amount"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	ReviewedBy  *string           `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty"`
}
