package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olympiadAPI/internal/leaderboard"
	"olympiadAPI/internal/quiz"
	"olympiadAPI/internal/submission"
	"olympiadAPI/services"
	"olympiadAPI/tests/helpers"
)

func findEntry(t *testing.T, lb *leaderboard.Leaderboard, profileID uuid.UUID) *leaderboard.LeaderboardEntry {
	t.Helper()
	for _, e := range lb.Entries {
		if e.ProfileID == profileID {
			return e
		}
	}
	return nil
}

// TestLeaderboardRanking seeds three profiles with different score
// sources and checks ordering, rank assignment and the zero-score
// exclusion on the overall view.
func TestLeaderboardRanking(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	puzzleService := services.NewPuzzleService(pool, notificationService)
	quizService := services.NewQuizService(pool)
	submissionService := services.NewSubmissionService(pool, notificationService)
	leaderboardService := services.NewLeaderboardService(pool, puzzleService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	clerkID := "user_lb_" + suffix
	helpers.CreateTestUser(t, pool, clerkID)

	quizzer := helpers.CreateTestProfile(t, pool, clerkID, "Quizzer")
	creative := helpers.CreateTestProfile(t, pool, clerkID, "Creative")
	idle := helpers.CreateTestProfile(t, pool, clerkID, "Idle")

	// Quizzer: 300 quiz points.
	_, err := quizService.RecordAttempt(ctx, clerkID, &quiz.RecordAttemptRequest{
		ProfileID: quizzer.ID.String(),
		QuizName:  "chapter-1",
		Score:     300,
		Completed: true,
	})
	require.NoError(t, err)

	// Creative: an approved video worth 250.
	sub, err := submissionService.CreateSubmission(ctx, clerkID, &submission.CreateSubmissionRequest{
		ProfileID: creative.ID.String(),
		Type:      submission.TypeVideo,
		Content:   "https://example.com/video.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, submission.StatusPending, sub.Status)
	assert.Equal(t, 0, sub.CreditScore)

	reviewed, err := submissionService.ReviewSubmission(ctx, submission.TypeVideo, sub.ID.String(), &submission.ReviewRequest{
		Status:      submission.StatusApproved,
		CreditScore: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, submission.StatusApproved, reviewed.Status)
	assert.Equal(t, 250, reviewed.CreditScore)
	assert.NotNil(t, reviewed.ReviewedAt)

	lb, err := leaderboardService.BuildLeaderboard(ctx, leaderboard.ViewOverall)
	require.NoError(t, err)

	quizzerEntry := findEntry(t, lb, quizzer.ID)
	creativeEntry := findEntry(t, lb, creative.ID)
	require.NotNil(t, quizzerEntry)
	require.NotNil(t, creativeEntry)

	assert.Equal(t, 300, quizzerEntry.TotalScore)
	assert.Equal(t, 300, quizzerEntry.QuizScore)
	assert.Equal(t, 250, creativeEntry.TotalScore)
	assert.Equal(t, 250, creativeEntry.EventScore)
	assert.Less(t, quizzerEntry.Rank, creativeEntry.Rank)

	// A profile with no activity never appears.
	assert.Nil(t, findEntry(t, lb, idle.ID))

	// Ranks are strictly sequential from 1.
	for i, e := range lb.Entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

// TestLeaderboardQuizTieBreak gives two profiles the same total but
// different quiz shares; the quiz-heavy profile must rank higher.
func TestLeaderboardQuizTieBreak(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	puzzleService := services.NewPuzzleService(pool, notificationService)
	quizService := services.NewQuizService(pool)
	submissionService := services.NewSubmissionService(pool, notificationService)
	leaderboardService := services.NewLeaderboardService(pool, puzzleService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	clerkID := "user_tie_" + suffix
	helpers.CreateTestUser(t, pool, clerkID)

	quizHeavy := helpers.CreateTestProfile(t, pool, clerkID, "QuizHeavy")
	eventHeavy := helpers.CreateTestProfile(t, pool, clerkID, "EventHeavy")

	// Both end at 200 total.
	_, err := quizService.RecordAttempt(ctx, clerkID, &quiz.RecordAttemptRequest{
		ProfileID: quizHeavy.ID.String(),
		QuizName:  "chapter-2",
		Score:     200,
		Completed: true,
	})
	require.NoError(t, err)

	sub, err := submissionService.CreateSubmission(ctx, clerkID, &submission.CreateSubmissionRequest{
		ProfileID: eventHeavy.ID.String(),
		Type:      submission.TypeSlogan,
		Content:   "Learn with joy",
	})
	require.NoError(t, err)
	_, err = submissionService.ReviewSubmission(ctx, submission.TypeSlogan, sub.ID.String(), &submission.ReviewRequest{
		Status:      submission.StatusApproved,
		CreditScore: 200,
	})
	require.NoError(t, err)

	lb, err := leaderboardService.BuildLeaderboard(ctx, leaderboard.ViewOverall)
	require.NoError(t, err)

	qh := findEntry(t, lb, quizHeavy.ID)
	eh := findEntry(t, lb, eventHeavy.ID)
	require.NotNil(t, qh)
	require.NotNil(t, eh)
	assert.Equal(t, qh.TotalScore, eh.TotalScore)
	assert.Less(t, qh.Rank, eh.Rank, "quiz share wins the tie")
}

// TestWeeklyLeaderboardWindow verifies the weekly view only counts
// activity from the trailing seven days.
func TestWeeklyLeaderboardWindow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	puzzleService := services.NewPuzzleService(pool, notificationService)
	quizService := services.NewQuizService(pool)
	leaderboardService := services.NewLeaderboardService(pool, puzzleService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	clerkID := "user_week_" + suffix
	helpers.CreateTestUser(t, pool, clerkID)

	stale := helpers.CreateTestProfile(t, pool, clerkID, "Stale")
	fresh := helpers.CreateTestProfile(t, pool, clerkID, "Fresh")

	// Stale profile: quiz attempt dated outside the window.
	tenDaysAgo := time.Now().AddDate(0, 0, -10)
	_, err := pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, profile_id, quiz_name, score, completed, completed_at)
		 VALUES ($1, $2, $3, $4, true, $5)`,
		uuid.New(), stale.ID, "old-quiz", 500, tenDaysAgo,
	)
	require.NoError(t, err)

	// Fresh profile: attempt recorded now.
	_, err = quizService.RecordAttempt(ctx, clerkID, &quiz.RecordAttemptRequest{
		ProfileID: fresh.ID.String(),
		QuizName:  "new-quiz",
		Score:     100,
		Completed: true,
	})
	require.NoError(t, err)

	weekly, err := leaderboardService.BuildLeaderboard(ctx, leaderboard.ViewWeekly)
	require.NoError(t, err)

	assert.Nil(t, findEntry(t, weekly, stale.ID), "stale activity is outside the window")

	freshEntry := findEntry(t, weekly, fresh.ID)
	require.NotNil(t, freshEntry)
	assert.Equal(t, 100, freshEntry.WeeklyScore)

	// The overall view still counts the stale profile's lifetime points.
	overall, err := leaderboardService.BuildLeaderboard(ctx, leaderboard.ViewOverall)
	require.NoError(t, err)

	staleEntry := findEntry(t, overall, stale.ID)
	require.NotNil(t, staleEntry)
	assert.Equal(t, 500, staleEntry.TotalScore)
}
