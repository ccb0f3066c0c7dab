package program

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

// NewPostgresRepository creates a new Postgres-backed program repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new program.
func (r *PostgresRepository) Insert(ctx context.Context, p *Program) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO programs (id, university_id, name, description, degree_level, duration_years, language, tuition, career_prospects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UniversityID, p.Name, p.Description, p.DegreeLevel,
		p.DurationYears, p.Language, p.Tuition, p.CareerProspects, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert program: %w", err)
	}
	return nil
}

// Update modifies an existing program.
func (r *PostgresRepository) Update(ctx context.Context, p *Program) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE programs
		SET university_id = $2, name = $3, description = $4, degree_level = $5,
		    duration_years = $6, language = $7, tuition = $8, career_prospects = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.UniversityID, p.Name, p.Description, p.DegreeLevel,
		p.DurationYears, p.Language, p.Tuition, p.CareerProspects, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update program: %w", err)
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

// Delete removes a program by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
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

// GetByID retrieves a program by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Program, error) {
	query := `
		SELECT id, university_id, name, description, degree_level, duration_years, language, tuition, career_prospects, created_at, updated_at
		FROM programs WHERE id = $1
	`
	var p Program
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UniversityID, &p.Name, &p.Description, &p.DegreeLevel,
		&p.DurationYears, &p.Language, &p.Tuition, &p.CareerProspects, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan program: %w", err)
	}
	return &p, nil
}

// Search returns programs matching the filter, ordered per f.Sort.
// Keywords are ORed together; the remaining filters are ANDed.
func (r *PostgresRepository) Search(ctx context.Context, f Filter) ([]Program, error) {
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
			"(name ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if len(keywordClauses) > 0 {
		conditions = append(conditions, "("+strings.Join(keywordClauses, " OR ")+")")
	}

	if f.DegreeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("degree_level = %s", arg(f.DegreeLevel)))
	}
	if f.Language != "" {
		conditions = append(conditions, fmt.Sprintf("language = %s", arg(f.Language)))
	}
	if f.UniversityID != "" {
		conditions = append(conditions, fmt.Sprintf("university_id = %s", arg(f.UniversityID)))
	}
	if f.UniversityIDs != nil {
		conditions = append(conditions, fmt.Sprintf("university_id = ANY(%s)", arg(pq.Array(f.UniversityIDs))))
	}
	if f.MinTuition != nil {
		conditions = append(conditions, fmt.Sprintf("tuition IS NOT NULL AND tuition >= %s", arg(*f.MinTuition)))
	}
	if f.MaxTuition != nil {
		conditions = append(conditions, fmt.Sprintf("tuition IS NOT NULL AND tuition <= %s", arg(*f.MaxTuition)))
	}

	query := `
		SELECT id, university_id, name, description, degree_level, duration_years, language, tuition, career_prospects, created_at, updated_at
		FROM programs
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	switch f.Sort {
	case SortNameDesc:
		query += " ORDER BY name DESC"
	case SortTuition:
		query += " ORDER BY tuition ASC NULLS LAST, name ASC"
	default:
		query += " ORDER BY name ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search programs: %w", err)
	}
	defer rows.Close()

	var result []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(
			&p.ID, &p.UniversityID, &p.Name, &p.Description, &p.DegreeLevel,
			&p.DurationYears, &p.Language, &p.Tuition, &p.CareerProspects, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate programs: %w", err)
	}
	return result, nil
}
