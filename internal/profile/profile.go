package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a named participant owned by a user account. One user may
// hold several (e.g. one per child); scores and collected pieces hang
// off the profile, not the user.
type Profile struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	DisplayName   string    `json:"displayName"`
	ParticipantID string    `json:"participantId"`
	AvatarURL     *string   `json:"avatarUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateProfileRequest struct {
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}
