package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/notification"
	"olympiadAPI/internal/submission"
)

type SubmissionService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewSubmissionService(db *pgxpool.Pool, notificationService *NotificationService) *SubmissionService {
	return &SubmissionService{db: db, notificationService: notificationService}
}

// tableFor maps a submission type onto its table. Types are a closed
// set; anything else is rejected before touching SQL.
func tableFor(t submission.Type) (string, error) {
	switch t {
	case submission.TypeVideo:
		return "video_submissions", nil
	case submission.TypeSlogan:
		return "slogan_submissions", nil
	default:
		return "", fmt.Errorf("unknown submission type: %s", t)
	}
}

// CreateSubmission stores a creative entry as pending. It contributes
// no score until an admin approves it.
func (s *SubmissionService) CreateSubmission(ctx context.Context, clerkID string, req *submission.CreateSubmissionRequest) (*submission.Submission, error) {
	table, err := tableFor(req.Type)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}
	if req.ProfileID == "" {
		return nil, fmt.Errorf("profileId is required")
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

	sub := &submission.Submission{
		ID:          uuid.New(),
		ProfileID:   profileUUID,
		Type:        req.Type,
		Content:     req.Content,
		Status:      submission.StatusPending,
		SubmittedAt: time.Now(),
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (id, profile_id, content, status, credit_score, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`, table)

	_, err = s.db.Exec(ctx, query,
		sub.ID, sub.ProfileID, sub.Content, sub.Status, sub.CreditScore, sub.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return sub, nil
}

func (s *SubmissionService) GetSubmissions(ctx context.Context, clerkID string, profileID string) ([]*submission.Submission, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	profileUUID, err := uuid.Parse(profileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id")
	}

	query := `
	SELECT sub.id, sub.profile_id, sub.kind, sub.content, sub.status, sub.credit_score, sub.submitted_at, sub.reviewed_at
	FROM (
		SELECT id, profile_id, 'video' AS kind, content, status, credit_score, submitted_at, reviewed_at
		FROM video_submissions
		UNION ALL
		SELECT id, profile_id, 'slogan' AS kind, content, status, credit_score, submitted_at, reviewed_at
		FROM slogan_submissions
	) sub
	INNER JOIN profiles p ON p.id = sub.profile_id
	WHERE sub.profile_id = $1 AND p.user_id = $2
	ORDER BY sub.submitted_at DESC
	`

	rows, err := s.db.Query(ctx, query, profileUUID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	defer rows.Close()

	var subs []*submission.Submission
	for rows.Next() {
		sub := &submission.Submission{}
		err := rows.Scan(
			&sub.ID, &sub.ProfileID, &sub.Type, &sub.Content,
			&sub.Status, &sub.CreditScore, &sub.SubmittedAt, &sub.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if subs == nil {
		subs = []*submission.Submission{}
	}

	return subs, nil
}

// ReviewSubmission is the administrative approval step. Approval sets
// the credit score that the aggregator later sums; rejection zeroes it.
func (s *SubmissionService) ReviewSubmission(ctx context.Context, subType submission.Type, submissionID string, req *submission.ReviewRequest) (*submission.Submission, error) {
	table, err := tableFor(subType)
	if err != nil {
		return nil, err
	}

	if req.Status != submission.StatusApproved && req.Status != submission.StatusRejected {
		return nil, fmt.Errorf("status must be approved or rejected")
	}
	if req.CreditScore < 0 {
		return nil, fmt.Errorf("creditScore must not be negative")
	}

	subUUID, err := uuid.Parse(submissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id")
	}

	creditScore := req.CreditScore
	if req.Status == submission.StatusRejected {
		creditScore = 0
	}

	query := fmt.Sprintf(`
	UPDATE %s
	SET status = $2, credit_score = $3, reviewed_at = NOW()
	WHERE id = $1
	RETURNING id, profile_id, content, status, credit_score, submitted_at, reviewed_at
	`, table)

	sub := &submission.Submission{Type: subType}
	err = s.db.QueryRow(ctx, query, subUUID, req.Status, creditScore).Scan(
		&sub.ID, &sub.ProfileID, &sub.Content, &sub.Status, &sub.CreditScore, &sub.SubmittedAt, &sub.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submission not found")
		}
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}

	s.notifyReview(sub)

	return sub, nil
}

func (s *SubmissionService) notifyReview(sub *submission.Submission) {
	if s.notificationService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM profiles WHERE id = $1`, sub.ProfileID).Scan(&ownerID)
	if err != nil {
		log.Printf("Failed to resolve owner for submission %s: %v", sub.ID, err)
		return
	}

	title := "Submission approved!"
	body := fmt.Sprintf("Your %s submission was approved and earned %d credits.", sub.Type, sub.CreditScore)
	if sub.Status == submission.StatusRejected {
		title = "Submission reviewed"
		body = fmt.Sprintf("Your %s submission was not approved this time.", sub.Type)
	}

	_, err = s.notificationService.CreateNotification(ctx, ownerID,
		notification.TypeSubmissionReviewed, title, body,
		map[string]any{"submissionId": sub.ID.String(), "status": string(sub.Status)},
	)
	if err != nil {
		log.Printf("Failed to create review notification for submission %s: %v", sub.ID, err)
	}
}
