package submission

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeVideo  Type = "video"
	TypeSlogan Type = "slogan"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is a creative entry (video or slogan). Only approved
// submissions contribute their credit score to the aggregate.
type Submission struct {
	ID          uuid.UUID  `json:"id"`
	ProfileID   uuid.UUID  `json:"profileId"`
	Type        Type       `json:"type"`
	Content     string     `json:"content"`
	Status      Status     `json:"status"`
	CreditScore int        `json:"creditScore"`
	SubmittedAt time.Time  `json:"submittedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

type CreateSubmissionRequest struct {
	ProfileID string `json:"profileId"`
	Type      Type   `json:"type"`
	Content   string `json:"content"`
}

type ReviewRequest struct {
	Status      Status `json:"status"`
	CreditScore int    `json:"creditScore"`
}
