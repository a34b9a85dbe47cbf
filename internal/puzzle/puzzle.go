package puzzle

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTotalPieces     = 35
	DefaultCreditsPerPiece = 50

	// CompletionBonus is granted once, when a profile holds every piece.
	CompletionBonus = 100

	MinTotalPieces = 10
	MaxTotalPieces = 50
)

// Conflict reasons for a rejected collection attempt. The legacy API
// collapsed both into a single alreadyCollected flag; the reason keeps
// them distinguishable without breaking that contract.
const (
	ReasonDayLimitReached   = "DAY_LIMIT_REACHED"
	ReasonPieceAlreadyTaken = "PIECE_ALREADY_TAKEN"
)

type CollectedPiece struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	ProfileID     uuid.UUID `json:"profileId"`
	PieceNumber   int       `json:"pieceNumber"`
	CollectedDate string    `json:"collectedDate"` // YYYY-MM-DD, server-local
	CollectedAt   time.Time `json:"collectedAt"`
}

type Config struct {
	ID              uuid.UUID `json:"id"`
	TotalPieces     int       `json:"totalPieces"`
	CreditsPerPiece int       `json:"creditsPerPiece"`
	ImageData       *string   `json:"imageData,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type UpdateConfigRequest struct {
	TotalPieces     int     `json:"totalPieces"`
	CreditsPerPiece int     `json:"creditsPerPiece"`
	ImageData       *string `json:"imageData,omitempty"`
}

type CollectRequest struct {
	ProfileID   string `json:"profileId"`
	PieceNumber int    `json:"pieceNumber"`
}

// CollectResult is the structured outcome of a collection attempt.
// Conflicts are expected user-facing results, not errors.
type CollectResult struct {
	Success          bool   `json:"success"`
	PieceNumber      int    `json:"pieceNumber,omitempty"`
	CollectedDate    string `json:"collectedDate,omitempty"`
	AlreadyCollected bool   `json:"alreadyCollected,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Message          string `json:"message,omitempty"`
	Completed        bool   `json:"completed,omitempty"`
}

// Contribution computes the puzzle share of a profile's score: credits
// per collected piece, plus the completion bonus once the set is full.
func Contribution(collected, totalPieces, creditsPerPiece int) int {
	score := collected * creditsPerPiece
	if totalPieces > 0 && collected == totalPieces {
		score += CompletionBonus
	}
	return score
}

// Day renders t as the calendar-day string used for the one-per-day
// uniqueness check.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}
