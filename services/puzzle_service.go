package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"olympiadAPI/internal/notification"
	"olympiadAPI/internal/puzzle"
)

// PuzzleService is the collectible ledger: it records one piece per
// profile per calendar day and each piece number at most once per
// profile. Both rules are backed by unique indexes on collected_pieces,
// so the insert itself is the authoritative uniqueness check; the
// pre-reads below only pick the right reason code for the response.
type PuzzleService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewPuzzleService(db *pgxpool.Pool, notificationService *NotificationService) *PuzzleService {
	return &PuzzleService{db: db, notificationService: notificationService}
}

// GetConfig returns the daily puzzle configuration, creating it with
// defaults on first read.
func (s *PuzzleService) GetConfig(ctx context.Context) (*puzzle.Config, error) {
	cfg, err := s.readConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get puzzle config: %w", err)
	}

	// A unique index over (TRUE) holds the table to one row, so two
	// concurrent first reads cannot both insert a default.
	insert := `
	INSERT INTO puzzle_configs (id, total_pieces, credits_per_piece, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT DO NOTHING
	`
	_, err = s.db.Exec(ctx, insert, uuid.New(), puzzle.DefaultTotalPieces, puzzle.DefaultCreditsPerPiece)
	if err != nil {
		return nil, fmt.Errorf("failed to create default puzzle config: %w", err)
	}

	cfg, err = s.readConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle config: %w", err)
	}
	return cfg, nil
}

func (s *PuzzleService) readConfig(ctx context.Context) (*puzzle.Config, error) {
	cfg := &puzzle.Config{}
	query := `
	SELECT id, total_pieces, credits_per_piece, image_data, updated_at
	FROM puzzle_configs
	LIMIT 1
	`
	err := s.db.QueryRow(ctx, query).Scan(
		&cfg.ID, &cfg.TotalPieces, &cfg.CreditsPerPiece, &cfg.ImageData, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateConfig applies an administrative configuration change. The
// total piece count is bounded; changing it does not reconcile pieces
// collected under the previous cycle.
func (s *PuzzleService) UpdateConfig(ctx context.Context, req *puzzle.UpdateConfigRequest) (*puzzle.Config, error) {
	if req.TotalPieces < puzzle.MinTotalPieces || req.TotalPieces > puzzle.MaxTotalPieces {
		return nil, fmt.Errorf("totalPieces must be between %d and %d", puzzle.MinTotalPieces, puzzle.MaxTotalPieces)
	}
	if req.CreditsPerPiece <= 0 {
		return nil, fmt.Errorf("creditsPerPiece must be positive")
	}

	// Lazy-create first so there is always a row to update.
	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE puzzle_configs
	SET total_pieces = $2, credits_per_piece = $3, image_data = COALESCE($4, image_data), updated_at = NOW()
	WHERE id = $1
	RETURNING id, total_pieces, credits_per_piece, image_data, updated_at
	`

	cfg := &puzzle.Config{}
	err = s.db.QueryRow(ctx, query, current.ID, req.TotalPieces, req.CreditsPerPiece, req.ImageData).Scan(
		&cfg.ID, &cfg.TotalPieces, &cfg.CreditsPerPiece, &cfg.ImageData, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update puzzle config: %w", err)
	}

	return cfg, nil
}

// CollectPiece records one piece for the profile, enforcing the
// one-per-day and one-per-piece-number rules. Conflicts come back as a
// structured result with Success=false, never as an error.
func (s *PuzzleService) CollectPiece(ctx context.Context, clerkID string, profileID string, pieceNumber int) (*puzzle.CollectResult, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profileId is required")
	}
	if pieceNumber < 1 {
		return nil, fmt.Errorf("pieceNumber must be a positive integer")
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	profileUUID, err := uuid.Parse(profileID)
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

	now := time.Now()
	today := puzzle.Day(now)

	if res, err := s.conflictFor(ctx, profileUUID, pieceNumber, today); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	insert := `
	INSERT INTO collected_pieces (id, user_id, profile_id, piece_number, collected_date, collected_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT DO NOTHING
	`

	result, err := s.db.Exec(ctx, insert, uuid.New(), userID, profileUUID, pieceNumber, today, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert collected piece: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Lost a race with a concurrent request; the unique index is the
		// source of truth, re-read to name the reason.
		res, err := s.conflictFor(ctx, profileUUID, pieceNumber, today)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		return nil, fmt.Errorf("piece insert conflicted but no existing record found")
	}

	var collected int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM collected_pieces WHERE profile_id = $1`, profileUUID,
	).Scan(&collected)
	if err != nil {
		return nil, fmt.Errorf("failed to count collected pieces: %w", err)
	}

	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	completed := collected == cfg.TotalPieces
	if completed {
		s.notifyCompletion(userID, profileUUID)
	}

	return &puzzle.CollectResult{
		Success:       true,
		PieceNumber:   pieceNumber,
		CollectedDate: today,
		Completed:     completed,
	}, nil
}

// conflictFor reports which uniqueness rule an attempt would violate,
// or nil when none does. The day rule is checked first; the piece rule
// is independently enforced and still reachable, e.g. a duplicate piece
// number retried across a day boundary.
func (s *PuzzleService) conflictFor(ctx context.Context, profileID uuid.UUID, pieceNumber int, today string) (*puzzle.CollectResult, error) {
	var dayTaken bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM collected_pieces WHERE profile_id = $1 AND collected_date = $2)`,
		profileID, today,
	).Scan(&dayTaken)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily collection: %w", err)
	}
	if dayTaken {
		return &puzzle.CollectResult{
			Success:          false,
			AlreadyCollected: true,
			Reason:           puzzle.ReasonDayLimitReached,
			Message:          "You have already collected a piece today. Come back tomorrow!",
		}, nil
	}

	var pieceTaken bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM collected_pieces WHERE profile_id = $1 AND piece_number = $2)`,
		profileID, pieceNumber,
	).Scan(&pieceTaken)
	if err != nil {
		return nil, fmt.Errorf("failed to check piece number: %w", err)
	}
	if pieceTaken {
		return &puzzle.CollectResult{
			Success:          false,
			AlreadyCollected: true,
			Reason:           puzzle.ReasonPieceAlreadyTaken,
			Message:          "This piece has already been collected.",
		}, nil
	}

	return nil, nil
}

// ListCollectedPieces returns the profile's pieces ordered by collection
// time. Pure read; empty slice when none.
func (s *PuzzleService) ListCollectedPieces(ctx context.Context, userID string, profileID string) ([]*puzzle.CollectedPiece, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id")
	}
	profileUUID, err := uuid.Parse(profileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile id")
	}

	query := `
	SELECT id, user_id, profile_id, piece_number, to_char(collected_date, 'YYYY-MM-DD'), collected_at
	FROM collected_pieces
	WHERE user_id = $1 AND profile_id = $2
	ORDER BY collected_at ASC
	`

	rows, err := s.db.Query(ctx, query, userUUID, profileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collected pieces: %w", err)
	}
	defer rows.Close()

	var pieces []*puzzle.CollectedPiece
	for rows.Next() {
		p := &puzzle.CollectedPiece{}
		err := rows.Scan(&p.ID, &p.UserID, &p.ProfileID, &p.PieceNumber, &p.CollectedDate, &p.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collected piece: %w", err)
		}
		pieces = append(pieces, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if pieces == nil {
		pieces = []*puzzle.CollectedPiece{}
	}

	return pieces, nil
}

func (s *PuzzleService) notifyCompletion(userID, profileID uuid.UUID) {
	if s.notificationService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.notificationService.CreateNotification(ctx, userID,
		notification.TypePuzzleCompleted,
		"Puzzle completed!",
		"You collected every piece and revealed the full picture. The completion bonus has been added to your score.",
		map[string]any{"profileId": profileID.String()},
	)
	if err != nil {
		log.Printf("Failed to create completion notification for profile %s: %v", profileID, err)
	}
}
