package quiz

import (
	"time"

	"github.com/google/uuid"
)

type Attempt struct {
	ID          uuid.UUID  `json:"id"`
	ProfileID   uuid.UUID  `json:"profileId"`
	QuizName    string     `json:"quizName"`
	Score       int        `json:"score"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type RecordAttemptRequest struct {
	ProfileID string `json:"profileId"`
	QuizName  string `json:"quizName"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}
