package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
)

// TrackRepository implements [models.Repository] for [models.Track]
// persistence, and the lifecycle service's track store port.
//
// The isrc column carries a UNIQUE constraint as a backstop behind the
// durable counter: a duplicate code, which only a broken counter store can
// produce, surfaces as [shared.ErrConflict] instead of silently landing.
type TrackRepository struct {
	db *sql.DB
}

var _ lifecycle.TrackStore = (*TrackRepository)(nil)

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.Track] into the database with generated ID and sequence
func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	track.SetID(id)

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, submission_id, title, artist_credit, isrc, file_ref, duration_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var isrcCode any = track.ISRC()
	if isrcCode == "" {
		isrcCode = nil
	}

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		track.SubmissionID(),
		track.Title(),
		track.ArtistCredit(),
		isrcCode,
		track.FileRef(),
		track.DurationSeconds(),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate ISRC %s", shared.ErrConflict, track.ISRC())
		}
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(ctx context.Context, id string) (*models.Track, error) {
	query := `
		SELECT id, sequence, submission_id, title, artist_credit, isrc, file_ref, duration_seconds, created_at, updated_at, deleted_at
		FROM tracks
		WHERE id = ? AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query track: %w", err)
		}
		return nil, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}

	return scanTrack(rows)
}

// Update modifies an existing track in the database
func (r *TrackRepository) Update(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	query := `
		UPDATE tracks
		SET title = ?, artist_credit = ?, isrc = ?, file_ref = ?, duration_seconds = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var isrcCode any = track.ISRC()
	if isrcCode == "" {
		isrcCode = nil
	}

	result, err := r.db.ExecContext(ctx, query,
		track.Title(),
		track.ArtistCredit(),
		isrcCode,
		track.FileRef(),
		track.DurationSeconds(),
		now,
		track.ID(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate ISRC %s", shared.ErrConflict, track.ISRC())
		}
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s", shared.ErrNotFound, track.ID())
	}

	return nil
}

// Delete soft-deletes a track by ID. The allocated ISRC stays with the row;
// codes are never reclaimed for reuse.
func (r *TrackRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()

	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted tracks
func (r *TrackRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Track, error) {
	query := `
		SELECT id, sequence, submission_id, title, artist_credit, isrc, file_ref, duration_seconds, created_at, updated_at, deleted_at
		FROM tracks
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if submissionID, ok := criteria["submission_id"].(string); ok && submissionID != "" {
		query += " AND submission_id = ?"
		args = append(args, submissionID)
	}
	if isrcCode, ok := criteria["isrc"].(string); ok && isrcCode != "" {
		query += " AND isrc = ?"
		args = append(args, isrcCode)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// ListBySubmission retrieves the tracks belonging to a submission
func (r *TrackRepository) ListBySubmission(ctx context.Context, submissionID string) ([]*models.Track, error) {
	return r.List(ctx, map[string]any{"submission_id": submissionID})
}

// scanTrack scans the current row of a query result into a track.
func scanTrack(rows *sql.Rows) (*models.Track, error) {
	var (
		id           string
		sequence     int
		submissionID string
		title        string
		artistCredit string
		isrcCode     sql.NullString
		fileRef      string
		duration     int
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &submissionID, &title, &artistCredit, &isrcCode, &fileRef, &duration, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := models.NewTrack(sequence, submissionID, title, artistCredit, fileRef, duration)
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if isrcCode.Valid {
		if err := track.SetISRC(isrcCode.String); err != nil {
			return nil, err
		}
	}
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
