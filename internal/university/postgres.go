package university

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed university repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new university.
func (r *PostgresRepository) Insert(ctx context.Context, u *University) error {
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

	query := `
		INSERT INTO universities (id, name, description, location, type, rating, website, specialties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Description, u.Location, u.Type, u.Rating,
		u.Website, pq.Array(u.Specialties), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert university: %w", err)
	}
	return nil
}

// Update modifies an existing university.
func (r *PostgresRepository) Update(ctx context.Context, u *University) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE universities
		SET name = $2, description = $3, location = $4, type = $5, rating = $6,
		    website = $7, specialties = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Description, u.Location, u.Type, u.Rating,
		u.Website, pq.Array(u.Specialties), u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update university: %w", err)
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

// Delete removes a university by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete university: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a university by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*University, error) {
	query := `
		SELECT id, name, description, location, type, rating, website, specialties, created_at, updated_at
		FROM universities WHERE id = $1
	`
	var u University
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Description, &u.Location, &u.Type, &u.Rating,
		&u.Website, pq.Array(&u.Specialties), &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan university: %w", err)
	}
	return &u, nil
}

// Search returns universities matching the filter, ordered per f.Ordering.
// Keywords are ORed together; type, location and min rating are ANDed.
func (r *PostgresRepository) Search(ctx context.Context, f Filter) ([]University, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var keywordClauses []string
	for _, kw := range f.Keywords {
		if kw == "" {
			continue
		}
		p := arg("%" + kw + "%")
		keywordClauses = append(keywordClauses, fmt.Sprintf(
			"(name ILIKE %[1]s OR description ILIKE %[1]s OR location ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(specialties) s WHERE s ILIKE %[1]s))", p))
	}
	if len(keywordClauses) > 0 {
		conditions = append(conditions, "("+strings.Join(keywordClauses, " OR ")+")")
	}

	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = %s", arg(f.Type)))
	}
	if f.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE %s", arg("%"+f.Location+"%")))
	}
	if f.MinRating > 0 {
		conditions = append(conditions, fmt.Sprintf("rating >= %s", arg(f.MinRating)))
	}

	query := `
		SELECT id, name, description, location, type, rating, website, specialties, created_at, updated_at
		FROM universities
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// sortField whitelists the column name, so it is safe to splice in.
	field, desc := f.sortField()
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	if field == "name" {
		query += " ORDER BY name " + direction
	} else {
		query += fmt.Sprintf(" ORDER BY %s %s, name ASC", field, direction)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search universities: %w", err)
	}
	defer rows.Close()

	var result []University
	for rows.Next() {
		var u University
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Description, &u.Location, &u.Type, &u.Rating,
			&u.Website, pq.Array(&u.Specialties), &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan university: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate universities: %w", err)
	}
	return result, nil
}
