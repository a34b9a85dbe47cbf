package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/profile"
)

type ProfileService struct {
	db *pgxpool.Pool
}

func NewProfileService(db *pgxpool.Pool) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) CreateProfile(ctx context.Context, clerkID string, req *profile.CreateProfileRequest) (*profile.Profile, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, fmt.Errorf("displayName is required")
	}

	p := &profile.Profile{
		ID:            uuid.New(),
		UserID:        userID,
		DisplayName:   displayName,
		ParticipantID: newParticipantID(),
		AvatarURL:     req.AvatarURL,
		CreatedAt:     time.Now(),
	}

	query := `
	INSERT INTO profiles (id, user_id, display_name, participant_id, avatar_url, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.Exec(ctx, query, p.ID, p.UserID, p.DisplayName, p.ParticipantID, p.AvatarURL, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) GetProfiles(ctx context.Context, clerkID string) ([]*profile.Profile, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, display_name, participant_id, avatar_url, created_at
	FROM profiles
	WHERE user_id = $1
	ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p := &profile.Profile{}
		err := rows.Scan(&p.ID, &p.UserID, &p.DisplayName, &p.ParticipantID, &p.AvatarURL, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if profiles == nil {
		profiles = []*profile.Profile{}
	}

	return profiles, nil
}

// GetOwnedProfile loads a profile and verifies it belongs to the caller.
// Every profile-scoped operation goes through this check.
func (s *ProfileService) GetOwnedProfile(ctx context.Context, clerkID string, profileID string) (*profile.Profile, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	profileUUID, err := uuid.Parse(profileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id")
	}

	query := `
	SELECT id, user_id, display_name, participant_id, avatar_url, created_at
	FROM profiles
	WHERE id = $1 AND user_id = $2
	`

	p := &profile.Profile{}
	err = s.db.QueryRow(ctx, query, profileUUID, userID).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.ParticipantID, &p.AvatarURL, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

// newParticipantID mints the public identifier printed on certificates.
func newParticipantID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return "GO-" + suffix
}
