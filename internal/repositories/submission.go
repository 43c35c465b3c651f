package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
)

// SubmissionRepository implements [models.Repository] for [models.Submission]
// persistence, and with it the lifecycle service's submission store port.
//
// Updates are compare-and-swap on the version column: two concurrent writers
// starting from the same version cannot both succeed, the loser gets
// [shared.ErrConflict].
type SubmissionRepository struct {
	db *sql.DB
}

var _ lifecycle.SubmissionStore = (*SubmissionRepository)(nil)

// NewSubmissionRepository creates a new [SubmissionRepository] with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `
	id, sequence, owner_id, title, artist_name, genre, status, submitted_at,
	requested_release_date, rejection_reason, upc, cover_art_ref, audio_refs,
	version, created_at, updated_at, deleted_at
`

// Create inserts a new submission with generated ID, sequence, and version 1
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	sequence, err := NextSequence(ctx, r.db, "submissions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	sub.SetID(id)
	sub.SetVersion(1)

	if err := sub.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	audioRefs, err := json.Marshal(sub.AudioRefs())
	if err != nil {
		return fmt.Errorf("failed to encode audio refs: %w", err)
	}

	query := `
		INSERT INTO submissions (
			id, sequence, owner_id, title, artist_name, genre, status,
			submitted_at, requested_release_date, rejection_reason, upc,
			cover_art_ref, audio_refs, version, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		sub.OwnerID(),
		sub.Title(),
		sub.ArtistName(),
		sub.Genre(),
		string(sub.Status()),
		sub.SubmittedAt(),
		nullableTime(sub.RequestedReleaseDate()),
		nullableReason(sub),
		nullableString(sub.UPC()),
		sub.CoverArtRef(),
		string(audioRefs),
		sub.Version(),
		sub.CreatedAt(),
		sub.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Get retrieves a submission by ID, excluding soft-deleted submissions
func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions WHERE id = ? AND deleted_at IS NULL"

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query submission: %w", err)
		}
		return nil, fmt.Errorf("%w: submission %s", shared.ErrNotFound, id)
	}

	return scanSubmission(rows)
}

// Update persists a modified submission under optimistic concurrency.
//
// The UPDATE only matches the version the caller loaded; zero affected rows
// on an existing record means a concurrent writer won and the caller gets
// [shared.ErrConflict]. On success the in-memory version is bumped to match
// the stored one.
func (r *SubmissionRepository) Update(ctx context.Context, sub *models.Submission) error {
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	audioRefs, err := json.Marshal(sub.AudioRefs())
	if err != nil {
		return fmt.Errorf("failed to encode audio refs: %w", err)
	}

	now := time.Now()

	query := `
		UPDATE submissions
		SET title = ?, artist_name = ?, genre = ?, status = ?, submitted_at = ?,
		    requested_release_date = ?, rejection_reason = ?, upc = ?,
		    cover_art_ref = ?, audio_refs = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.Title(),
		sub.ArtistName(),
		sub.Genre(),
		string(sub.Status()),
		sub.SubmittedAt(),
		nullableTime(sub.RequestedReleaseDate()),
		nullableReason(sub),
		nullableString(sub.UPC()),
		sub.CoverArtRef(),
		string(audioRefs),
		now,
		sub.ID(),
		sub.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM submissions WHERE id = ? AND deleted_at IS NULL)", sub.ID(),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check submission: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: submission %s", shared.ErrNotFound, sub.ID())
		}
		return fmt.Errorf("%w: submission %s at version %d", shared.ErrConflict, sub.ID(), sub.Version())
	}

	sub.SetVersion(sub.Version() + 1)
	sub.SetUpdatedAt(now)

	return nil
}

// Delete soft-deletes a submission by ID
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()

	query := `
		UPDATE submissions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: submission %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all submissions matching the given criteria, excluding soft-deleted submissions
func (r *SubmissionRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions WHERE deleted_at IS NULL"

	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return subs, nil
}

// ListByOwner retrieves the submissions owned by ownerID
func (r *SubmissionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error) {
	return r.List(ctx, map[string]any{"owner_id": ownerID})
}

// ListAll retrieves every live submission
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]*models.Submission, error) {
	return r.List(ctx, map[string]any{})
}

// AppendStatusChange records one applied status transition in the audit table
func (r *SubmissionRepository) AppendStatusChange(ctx context.Context, change *models.StatusChange) error {
	id := shared.GenerateID()
	change.SetID(id)

	query := `
		INSERT INTO submission_status_history (id, submission_id, from_status, to_status, actor_id, reason, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		change.SubmissionID(),
		string(change.From()),
		string(change.To()),
		change.ActorID(),
		nullableString(change.Reason()),
		change.ChangedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert status change: %w", err)
	}

	return nil
}

// ListStatusChanges retrieves the audit trail of a submission, oldest first
func (r *SubmissionRepository) ListStatusChanges(ctx context.Context, submissionID string) ([]*models.StatusChange, error) {
	query := `
		SELECT id, submission_id, from_status, to_status, actor_id, reason, changed_at
		FROM submission_status_history
		WHERE submission_id = ?
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status changes: %w", err)
	}
	defer rows.Close()

	var changes []*models.StatusChange
	for rows.Next() {
		var (
			id        string
			subID     string
			from      string
			to        string
			actorID   string
			reason    sql.NullString
			changedAt time.Time
		)

		if err := rows.Scan(&id, &subID, &from, &to, &actorID, &reason, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}

		change := models.NewStatusChange(subID, models.Status(from), models.Status(to), actorID, reason.String, changedAt)
		change.SetID(id)
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return changes, nil
}

// scanSubmission scans the current row of a query result into a submission.
func scanSubmission(rows *sql.Rows) (*models.Submission, error) {
	var (
		id              string
		sequence        int
		ownerID         string
		title           string
		artistName      string
		genre           string
		status          string
		submittedAt     time.Time
		releaseDate     sql.NullTime
		rejectionReason sql.NullString
		upc             sql.NullString
		coverArtRef     string
		audioRefsRaw    string
		version         int
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &ownerID, &title, &artistName, &genre, &status,
		&submittedAt, &releaseDate, &rejectionReason, &upc, &coverArtRef, &audioRefsRaw,
		&version, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	var audioRefs []string
	if audioRefsRaw != "" {
		if err := json.Unmarshal([]byte(audioRefsRaw), &audioRefs); err != nil {
			return nil, fmt.Errorf("failed to decode audio refs: %w", err)
		}
	}

	sub := models.NewSubmission(sequence, ownerID, title, artistName)
	sub.SetID(id)
	sub.SetGenre(genre)
	sub.SetStatus(models.Status(status))
	sub.SetSubmittedAt(submittedAt)
	sub.SetCoverArtRef(coverArtRef)
	sub.SetAudioRefs(audioRefs)
	sub.SetVersion(version)
	sub.SetCreatedAt(createdAt)
	sub.SetUpdatedAt(updatedAt)
	if releaseDate.Valid {
		sub.SetRequestedReleaseDate(releaseDate.Time)
	}
	if rejectionReason.Valid {
		sub.SetRejectionReason(rejectionReason.String)
	}
	if upc.Valid {
		sub.SetUPC(upc.String)
	}
	if deletedAt.Valid {
		sub.SetDeletedAt(&deletedAt.Time)
	}

	return sub, nil
}

// nullableTime converts a zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// nullableString converts an empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableReason stores NULL when no rejection reason was supplied; reasons
// are never invented on the way to the database.
func nullableReason(sub *models.Submission) any {
	reason, ok := sub.RejectionReason()
	if !ok {
		return nil
	}
	return reason
}
