package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/puzzle"
	"olympiadAPI/internal/score"
)

// ScoreService recomputes a profile's score from stored state on every
// call. Nothing is cached or incrementally maintained, so a read right
// after a write always reflects the write.
type ScoreService struct {
	db            *pgxpool.Pool
	puzzleService *PuzzleService
}

func NewScoreService(db *pgxpool.Pool, puzzleService *PuzzleService) *ScoreService {
	return &ScoreService{db: db, puzzleService: puzzleService}
}

// ComputeTotalScore sums the four lifetime contributions: completed
// quiz attempts, approved video credits, approved slogan credits, and
// puzzle credits with the completion bonus.
func (s *ScoreService) ComputeTotalScore(ctx context.Context, profileID uuid.UUID) (*score.Breakdown, error) {
	b := &score.Breakdown{}

	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM quiz_attempts WHERE profile_id = $1 AND completed = true`,
		profileID,
	).Scan(&b.QuizScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum quiz scores: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(credit_score), 0) FROM video_submissions WHERE profile_id = $1 AND status = 'approved'`,
		profileID,
	).Scan(&b.VideoScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum video credits: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(credit_score), 0) FROM slogan_submissions WHERE profile_id = $1 AND status = 'approved'`,
		profileID,
	).Scan(&b.SloganScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum slogan credits: %w", err)
	}

	var collected int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM collected_pieces WHERE profile_id = $1`,
		profileID,
	).Scan(&collected)
	if err != nil {
		return nil, fmt.Errorf("failed to count collected pieces: %w", err)
	}

	cfg, err := s.puzzleService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	b.PuzzleScore = puzzle.Contribution(collected, cfg.TotalPieces, cfg.CreditsPerPiece)
	b.TotalScore = b.QuizScore + b.VideoScore + b.SloganScore + b.PuzzleScore
	return b, nil
}

// ComputeWeeklyScore sums the same four contributions restricted to
// [windowStart, now]. The puzzle term filters pieces by their own
// collection date, not a share of the lifetime count; the completion
// bonus counts only when the final piece landed inside the window.
func (s *ScoreService) ComputeWeeklyScore(ctx context.Context, profileID uuid.UUID, windowStart time.Time) (*score.Breakdown, error) {
	b := &score.Breakdown{}

	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM quiz_attempts WHERE profile_id = $1 AND completed = true AND completed_at >= $2`,
		profileID, windowStart,
	).Scan(&b.QuizScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly quiz scores: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(credit_score), 0) FROM video_submissions WHERE profile_id = $1 AND status = 'approved' AND submitted_at >= $2`,
		profileID, windowStart,
	).Scan(&b.VideoScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly video credits: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(credit_score), 0) FROM slogan_submissions WHERE profile_id = $1 AND status = 'approved' AND submitted_at >= $2`,
		profileID, windowStart,
	).Scan(&b.SloganScore)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly slogan credits: %w", err)
	}

	var lifetime, windowed int
	var lastCollected *time.Time
	err = s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE collected_at >= $2),
			MAX(collected_at)
		FROM collected_pieces
		WHERE profile_id = $1
	`, profileID, windowStart).Scan(&lifetime, &windowed, &lastCollected)
	if err != nil {
		return nil, fmt.Errorf("failed to count weekly pieces: %w", err)
	}

	cfg, err := s.puzzleService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	b.PuzzleScore = windowed * cfg.CreditsPerPiece
	if lifetime == cfg.TotalPieces && lastCollected != nil && !lastCollected.Before(windowStart) {
		b.PuzzleScore += puzzle.CompletionBonus
	}

	b.TotalScore = b.QuizScore + b.VideoScore + b.SloganScore + b.PuzzleScore
	return b, nil
}

// WeekWindowStart is "now minus seven days", the conventional weekly
// leaderboard window.
func WeekWindowStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -7)
}
