package orientation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QuestionRepository defines the interface for question data operations.
type QuestionRepository interface {
	// InsertQuestion stores a question with its options.
	InsertQuestion(ctx context.Context, q *Question) error

	// ListQuestions returns all questions with options, ordered by Order ascending.
	ListQuestions(ctx context.Context) ([]Question, error)

	// GetOption retrieves a single option by ID. Returns ErrNotFound when absent.
	GetOption(ctx context.Context, id string) (*Option, error)
}

// ResultRepository defines the interface for test result data operations.
type ResultRepository interface {
	// InsertResult stores a test result with its recommendations.
	InsertResult(ctx context.Context, r *TestResult) error

	// GetResult retrieves a result by ID. Returns ErrNotFound when absent.
	GetResult(ctx context.Context, id string) (*TestResult, error)

	// ListResultsByUser returns a user's results, most recent first.
	ListResultsByUser(ctx context.Context, userID string) ([]TestResult, error)
}

// InMemoryQuestionRepository is an in-memory implementation of QuestionRepository.
// Used for testing and development.
type InMemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions map[string]*Question
	options   map[string]*Option
}

// NewInMemoryQuestionRepository creates a new in-memory question repository.
func NewInMemoryQuestionRepository() *InMemoryQuestionRepository {
	return &InMemoryQuestionRepository{
		questions: make(map[string]*Question),
		options:   make(map[string]*Option),
	}
}

// InsertQuestion stores a question and indexes its options.
func (r *InMemoryQuestionRepository) InsertQuestion(ctx context.Context, q *Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
		q.Options[i].QuestionID = q.ID
	}

	qCopy := copyQuestion(q)
	r.questions[q.ID] = qCopy
	for i := range qCopy.Options {
		r.options[qCopy.Options[i].ID] = &qCopy.Options[i]
	}
	return nil
}

// ListQuestions returns all questions ordered by Order ascending.
func (r *InMemoryQuestionRepository) ListQuestions(ctx context.Context) ([]Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Question, 0, len(r.questions))
	for _, q := range r.questions {
		result = append(result, *copyQuestion(q))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result, nil
}

// GetOption retrieves an option by ID.
func (r *InMemoryQuestionRepository) GetOption(ctx context.Context, id string) (*Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opt, ok := r.options[id]
	if !ok {
		return nil, ErrNotFound
	}
	optCopy := *opt
	return &optCopy, nil
}

// InMemoryResultRepository is an in-memory implementation of ResultRepository.
// Used for testing and development.
type InMemoryResultRepository struct {
	mu      sync.RWMutex
	results map[string]*TestResult
}

// NewInMemoryResultRepository creates a new in-memory result repository.
func NewInMemoryResultRepository() *InMemoryResultRepository {
	return &InMemoryResultRepository{
		results: make(map[string]*TestResult),
	}
}

// InsertResult stores a test result, assigning an ID and timestamp when missing.
func (r *InMemoryResultRepository) InsertResult(ctx context.Context, res *TestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.DateTaken.IsZero() {
		res.DateTaken = time.Now().UTC()
	}
	r.results[res.ID] = copyResult(res)
	return nil
}

// GetResult retrieves a result by ID.
func (r *InMemoryResultRepository) GetResult(ctx context.Context, id string) (*TestResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyResult(res), nil
}

// ListResultsByUser returns a user's results ordered by date taken, newest first.
func (r *InMemoryResultRepository) ListResultsByUser(ctx context.Context, userID string) ([]TestResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []TestResult
	for _, res := range r.results {
		if res.UserID == userID {
			result = append(result, *copyResult(res))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DateTaken.After(result[j].DateTaken)
	})
	return result, nil
}

func copyQuestion(q *Question) *Question {
	qCopy := *q
	qCopy.Options = make([]Option, len(q.Options))
	copy(qCopy.Options, q.Options)
	return &qCopy
}

func copyResult(res *TestResult) *TestResult {
	resCopy := *res
	resCopy.Answers = make(map[string]string, len(res.Answers))
	for k, v := range res.Answers {
		resCopy.Answers[k] = v
	}
	resCopy.Recommendations = make([]FieldRecommendation, len(res.Recommendations))
	copy(resCopy.Recommendations, res.Recommendations)
	return &resCopy
}
