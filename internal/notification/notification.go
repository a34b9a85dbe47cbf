package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypePuzzleCompleted    NotificationType = "puzzle_completed"
	TypeSubmissionReviewed NotificationType = "submission_reviewed"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
	StatusRead    NotificationStatus = "read"
)

type Notification struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"userId"`
	Type      NotificationType   `json:"type"`
	Status    NotificationStatus `json:"status"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	Data      map[string]any     `json:"data,omitempty"`
	SentAt    *time.Time         `json:"sentAt,omitempty"`
	ReadAt    *time.Time         `json:"readAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
	TotalCount    int             `json:"totalCount"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
}
