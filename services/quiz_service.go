package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/quiz"
)

type QuizService struct {
	db *pgxpool.Pool
}

func NewQuizService(db *pgxpool.Pool) *QuizService {
	return &QuizService{db: db}
}

// RecordAttempt stores a finished quiz run for a profile. Only attempts
// marked completed count toward the aggregate score.
func (s *QuizService) RecordAttempt(ctx context.Context, clerkID string, req *quiz.RecordAttemptRequest) (*quiz.Attempt, error) {
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profileId is required")
	}
	if req.Score < 0 {
		return nil, fmt.Errorf("score must not be negative")
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	profileUUID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id")
	}

	var owned bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1 AND user_id = $2)`,
		profileUUID, userID,
	).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("profile not found")
	}

	attempt := &quiz.Attempt{
		ID:        uuid.New(),
		ProfileID: profileUUID,
		QuizName:  req.QuizName,
		Score:     req.Score,
		Completed: req.Completed,
	}
	// An abandoned attempt has no completion time.
	if req.Completed {
		now := time.Now()
		attempt.CompletedAt = &now
	}

	query := `
	INSERT INTO quiz_attempts (id, profile_id, quiz_name, score, completed, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.Exec(ctx, query,
		attempt.ID, attempt.ProfileID, attempt.QuizName, attempt.Score, attempt.Completed, attempt.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record quiz attempt: %w", err)
	}

	return attempt, nil
}

func (s *QuizService) GetAttempts(ctx context.Context, clerkID string, profileID string) ([]*quiz.Attempt, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	profileUUID, err := uuid.Parse(profileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id")
	}

	query := `
	SELECT qa.id, qa.profile_id, qa.quiz_name, qa.score, qa.completed, qa.completed_at
	FROM quiz_attempts qa
	INNER JOIN profiles p ON p.id = qa.profile_id
	WHERE qa.profile_id = $1 AND p.user_id = $2
	ORDER BY qa.completed_at DESC NULLS LAST
	`

	rows, err := s.db.Query(ctx, query, profileUUID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*quiz.Attempt
	for rows.Next() {
		a := &quiz.Attempt{}
		err := rows.Scan(&a.ID, &a.ProfileID, &a.QuizName, &a.Score, &a.Completed, &a.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if attempts == nil {
		attempts = []*quiz.Attempt{}
	}

	return attempts, nil
}
