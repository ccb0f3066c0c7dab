package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed user repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new user. Returns ErrEmailTaken on a unique violation.
func (r *PostgresRepository) Insert(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = NormalizeEmail(u.Email)

	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Update modifies an existing user.
func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	u.Email = NormalizeEmail(u.Email)

	query := `
		UPDATE users
		SET email = $2, name = $3, password_hash = $4, role = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by normalized email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// SaveProgram bookmarks a program for the user. Saving twice is a no-op.
func (r *PostgresRepository) SaveProgram(ctx context.Context, userID, programID string) error {
	query := `
		INSERT INTO saved_programs (user_id, program_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, programID); err != nil {
		return fmt.Errorf("failed to save program: %w", err)
	}
	return nil
}

// RemoveProgram drops a program bookmark for the user.
func (r *PostgresRepository) RemoveProgram(ctx context.Context, userID, programID string) error {
	query := `DELETE FROM saved_programs WHERE user_id = $1 AND program_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, programID); err != nil {
		return fmt.Errorf("failed to remove saved program: %w", err)
	}
	return nil
}

// ListSavedPrograms returns the user's bookmarked program IDs in save order.
func (r *PostgresRepository) ListSavedPrograms(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT program_id FROM saved_programs WHERE user_id = $1 ORDER BY created_at`
	return r.listSavedIDs(ctx, query, userID)
}

// SaveUniversity bookmarks a university for the user. Saving twice is a no-op.
func (r *PostgresRepository) SaveUniversity(ctx context.Context, userID, universityID string) error {
	query := `
		INSERT INTO saved_universities (user_id, university_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, universityID); err != nil {
		return fmt.Errorf("failed to save university: %w", err)
	}
	return nil
}

// RemoveUniversity drops a university bookmark for the user.
func (r *PostgresRepository) RemoveUniversity(ctx context.Context, userID, universityID string) error {
	query := `DELETE FROM saved_universities WHERE user_id = $1 AND university_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, universityID); err != nil {
		return fmt.Errorf("failed to remove saved university: %w", err)
	}
	return nil
}

// ListSavedUniversities returns the user's bookmarked university IDs in save
// order.
func (r *PostgresRepository) ListSavedUniversities(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT university_id FROM saved_universities WHERE user_id = $1 ORDER BY created_at`
	return r.listSavedIDs(ctx, query, userID)
}

func (r *PostgresRepository) listSavedIDs(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved items: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved items: %w", err)
	}
	return ids, nil
}
