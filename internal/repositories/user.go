package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	user.SetID(id)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, sequence, email, display_name, role, api_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var token any = user.APIToken()
	if token == "" {
		token = nil
	}

	_, err = r.db.ExecContext(ctx, query, id, sequence, user.Email(), user.DisplayName(), string(user.Role()), token, user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, role, api_token, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetByEmail retrieves a user by email, excluding soft-deleted users
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, role, api_token, created_at, updated_at, deleted_at
		FROM users
		WHERE email = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), email)
}

// GetByToken resolves an API token to its user, excluding soft-deleted users.
// This is the identity lookup behind the CLI and HTTP surfaces.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, role, api_token, created_at, updated_at, deleted_at
		FROM users
		WHERE api_token = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token), "token")
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET display_name = ?, api_token = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var token any = user.APIToken()
	if token == "" {
		token = nil
	}

	result, err := r.db.ExecContext(ctx, query, user.DisplayName(), token, now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, user.ID())
	}

	return nil
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()

	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all users matching the given criteria, excluding soft-deleted users
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, role, api_token, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}
	if role, ok := criteria["role"].(string); ok && role != "" {
		query += " AND role = ?"
		args = append(args, role)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// scanOne scans a single-row query result into a user.
func (r *UserRepository) scanOne(row *sql.Row, ref string) (*models.User, error) {
	var (
		userID      string
		sequence    int
		email       string
		displayName string
		role        string
		apiToken    sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&userID, &sequence, &email, &displayName, &role, &apiToken, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return buildUser(userID, sequence, email, displayName, role, apiToken, createdAt, updatedAt, deletedAt), nil
}

// scanUser scans the current row of a multi-row query result into a user.
func scanUser(rows *sql.Rows) (*models.User, error) {
	var (
		userID      string
		sequence    int
		email       string
		displayName string
		role        string
		apiToken    sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	if err := rows.Scan(&userID, &sequence, &email, &displayName, &role, &apiToken, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return buildUser(userID, sequence, email, displayName, role, apiToken, createdAt, updatedAt, deletedAt), nil
}

func buildUser(id string, sequence int, email, displayName, role string, apiToken sql.NullString, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.User {
	user := models.NewUser(sequence, email, displayName, models.Role(role))
	user.SetID(id)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	if apiToken.Valid {
		user.SetAPIToken(apiToken.String)
	}
	if deletedAt.Valid {
		user.SetDeletedAt(&deletedAt.Time)
	}
	return user
}
