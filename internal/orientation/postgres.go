package orientation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresQuestionRepository implements QuestionRepository using PostgreSQL.
type PostgresQuestionRepository struct {
	db *sql.DB
}

// NewPostgresQuestionRepository creates a new Postgres-backed question repository.
func NewPostgresQuestionRepository(db *sql.DB) *PostgresQuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

// InsertQuestion stores a question and its options in one transaction.
func (r *PostgresQuestionRepository) InsertQuestion(ctx context.Context, q *Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO questions (id, text, display_order) VALUES ($1, $2, $3)`,
		q.ID, q.Text, q.Order)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	for i := range q.Options {
		opt := &q.Options[i]
		if opt.ID == "" {
			opt.ID = uuid.NewString()
		}
		opt.QuestionID = q.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO options (id, question_id, text, engineering_weight, science_weight, business_weight, arts_weight, social_weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, opt.ID, opt.QuestionID, opt.Text,
			opt.EngineeringWeight, opt.ScienceWeight, opt.BusinessWeight, opt.ArtsWeight, opt.SocialWeight)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question: %w", err)
	}
	return nil
}

// ListQuestions returns all questions with options, ordered by display order.
func (r *PostgresQuestionRepository) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, display_order FROM questions ORDER BY display_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	index := make(map[string]int)
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Order); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	optRows, err := r.db.QueryContext(ctx, `
		SELECT id, question_id, text, engineering_weight, science_weight, business_weight, arts_weight, social_weight
		FROM options ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt Option
		if err := optRows.Scan(&opt.ID, &opt.QuestionID, &opt.Text,
			&opt.EngineeringWeight, &opt.ScienceWeight, &opt.BusinessWeight,
			&opt.ArtsWeight, &opt.SocialWeight); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		if i, ok := index[opt.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}
	return questions, nil
}

// GetOption retrieves a single option by ID.
func (r *PostgresQuestionRepository) GetOption(ctx context.Context, id string) (*Option, error) {
	var opt Option
	err := r.db.QueryRowContext(ctx, `
		SELECT id, question_id, text, engineering_weight, science_weight, business_weight, arts_weight, social_weight
		FROM options WHERE id = $1
	`, id).Scan(&opt.ID, &opt.QuestionID, &opt.Text,
		&opt.EngineeringWeight, &opt.ScienceWeight, &opt.BusinessWeight,
		&opt.ArtsWeight, &opt.SocialWeight)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan option: %w", err)
	}
	return &opt, nil
}

// PostgresResultRepository implements ResultRepository using PostgreSQL.
type PostgresResultRepository struct {
	db *sql.DB
}

// NewPostgresResultRepository creates a new Postgres-backed result repository.
func NewPostgresResultRepository(db *sql.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// InsertResult stores a result and its recommendations in one transaction.
func (r *PostgresResultRepository) InsertResult(ctx context.Context, res *TestResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.DateTaken.IsZero() {
		res.DateTaken = time.Now().UTC()
	}

	answersJSON, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO test_results (id, user_id, date_taken, answers) VALUES ($1, $2, $3, $4)`,
		res.ID, res.UserID, res.DateTaken, answersJSON)
	if err != nil {
		return fmt.Errorf("failed to insert test result: %w", err)
	}

	for _, rec := range res.Recommendations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO field_recommendations (test_result_id, field, compatibility) VALUES ($1, $2, $3)`,
			res.ID, string(rec.Field), rec.Compatibility)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit test result: %w", err)
	}
	return nil
}

// GetResult retrieves a result with its recommendations.
func (r *PostgresResultRepository) GetResult(ctx context.Context, id string) (*TestResult, error) {
	var res TestResult
	var answersJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date_taken, answers FROM test_results WHERE id = $1`,
		id).Scan(&res.ID, &res.UserID, &res.DateTaken, &answersJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan test result: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &res.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	recs, err := r.loadRecommendations(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	res.Recommendations = recs
	return &res, nil
}

// ListResultsByUser returns a user's results ordered by date taken, newest first.
func (r *PostgresResultRepository) ListResultsByUser(ctx context.Context, userID string) ([]TestResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date_taken, answers FROM test_results WHERE user_id = $1 ORDER BY date_taken DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	defer rows.Close()

	var results []TestResult
	for rows.Next() {
		var res TestResult
		var answersJSON []byte
		if err := rows.Scan(&res.ID, &res.UserID, &res.DateTaken, &answersJSON); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		if err := json.Unmarshal(answersJSON, &res.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate test results: %w", err)
	}

	for i := range results {
		recs, err := r.loadRecommendations(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Recommendations = recs
	}
	return results, nil
}

func (r *PostgresResultRepository) loadRecommendations(ctx context.Context, resultID string) ([]FieldRecommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT field, compatibility FROM field_recommendations WHERE test_result_id = $1 ORDER BY compatibility DESC, field ASC`,
		resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []FieldRecommendation
	for rows.Next() {
		var rec FieldRecommendation
		var field string
		if err := rows.Scan(&field, &rec.Compatibility); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.Field = Field(field)
		rec.FieldDisplay = rec.Field.Label()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}
