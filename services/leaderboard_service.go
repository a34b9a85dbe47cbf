package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/leaderboard"
	"olympiadAPI/internal/puzzle"
)

// LeaderboardService builds ranked views over every profile. Scores are
// aggregated fresh from the underlying tables on each request; ordering
// and rank assignment are pure and live in internal/leaderboard.
type LeaderboardService struct {
	db            *pgxpool.Pool
	puzzleService *PuzzleService
}

func NewLeaderboardService(db *pgxpool.Pool, puzzleService *PuzzleService) *LeaderboardService {
	return &LeaderboardService{db: db, puzzleService: puzzleService}
}

func (s *LeaderboardService) BuildLeaderboard(ctx context.Context, view leaderboard.View) (*leaderboard.Leaderboard, error) {
	if view != leaderboard.ViewOverall && view != leaderboard.ViewWeekly {
		return nil, fmt.Errorf("unknown leaderboard view: %s", view)
	}

	cfg, err := s.puzzleService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	windowStart := WeekWindowStart(time.Now())

	query := `
	SELECT
		p.id,
		p.display_name,
		p.participant_id,
		COALESCE(q.total, 0), COALESCE(q.weekly, 0),
		COALESCE(v.total, 0), COALESCE(v.weekly, 0),
		COALESCE(sl.total, 0), COALESCE(sl.weekly, 0),
		COALESCE(cp.total, 0), COALESCE(cp.weekly, 0),
		cp.last_collected
	FROM profiles p
	LEFT JOIN (
		SELECT profile_id,
			   SUM(score) AS total,
			   COALESCE(SUM(score) FILTER (WHERE completed_at >= $1), 0) AS weekly
		FROM quiz_attempts
		WHERE completed = true
		GROUP BY profile_id
	) q ON q.profile_id = p.id
	LEFT JOIN (
		SELECT profile_id,
			   SUM(credit_score) AS total,
			   COALESCE(SUM(credit_score) FILTER (WHERE submitted_at >= $1), 0) AS weekly
		FROM video_submissions
		WHERE status = 'approved'
		GROUP BY profile_id
	) v ON v.profile_id = p.id
	LEFT JOIN (
		SELECT profile_id,
			   SUM(credit_score) AS total,
			   COALESCE(SUM(credit_score) FILTER (WHERE submitted_at >= $1), 0) AS weekly
		FROM slogan_submissions
		WHERE status = 'approved'
		GROUP BY profile_id
	) sl ON sl.profile_id = p.id
	LEFT JOIN (
		SELECT profile_id,
			   COUNT(*) AS total,
			   COUNT(*) FILTER (WHERE collected_at >= $1) AS weekly,
			   MAX(collected_at) AS last_collected
		FROM collected_pieces
		GROUP BY profile_id
	) cp ON cp.profile_id = p.id
	ORDER BY p.created_at ASC
	`

	rows, err := s.db.Query(ctx, query, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard rows: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.LeaderboardEntry

	for rows.Next() {
		var (
			profileID                  uuid.UUID
			displayName, participantID string
			quizTotal, quizWeekly      int
			videoTotal, videoWeekly    int
			sloganTotal, sloganWeekly  int
			piecesTotal, piecesWeekly  int
			lastCollected              *time.Time
		)

		err := rows.Scan(
			&profileID, &displayName, &participantID,
			&quizTotal, &quizWeekly,
			&videoTotal, &videoWeekly,
			&sloganTotal, &sloganWeekly,
			&piecesTotal, &piecesWeekly,
			&lastCollected,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		puzzleTotal := puzzle.Contribution(piecesTotal, cfg.TotalPieces, cfg.CreditsPerPiece)
		puzzleWeekly := piecesWeekly * cfg.CreditsPerPiece
		if piecesTotal == cfg.TotalPieces && lastCollected != nil && !lastCollected.Before(windowStart) {
			puzzleWeekly += puzzle.CompletionBonus
		}

		eventTotal := videoTotal + sloganTotal + puzzleTotal
		eventWeekly := videoWeekly + sloganWeekly + puzzleWeekly
		total := quizTotal + eventTotal
		weekly := quizWeekly + eventWeekly

		entry := &leaderboard.LeaderboardEntry{
			ProfileID:     profileID,
			DisplayName:   displayName,
			ParticipantID: participantID,
			TotalScore:    total,
			WeeklyScore:   weekly,
		}

		if view == leaderboard.ViewWeekly {
			entry.QuizScore = quizWeekly
			entry.EventScore = eventWeekly
			entry.SetViewScores(weekly, quizWeekly, eventWeekly)
		} else {
			entry.QuizScore = quizTotal
			entry.EventScore = eventTotal
			entry.SetViewScores(total, quizTotal, eventTotal)
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}

	ranked := leaderboard.Rank(entries)

	return &leaderboard.Leaderboard{
		View:    view,
		Entries: ranked,
		Total:   len(ranked),
	}, nil
}
