package orientation

import (
	"context"
	"log/slog"
)

// Service coordinates test submission: scoring answers and persisting the
// result with its recommendations.
type Service struct {
	questions QuestionRepository
	results   ResultRepository
	logger    *slog.Logger
}

// NewService creates a new orientation service.
func NewService(questions QuestionRepository, results ResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		questions: questions,
		results:   results,
		logger:    logger,
	}
}

// Questions returns the test questions in presentation order.
func (s *Service) Questions(ctx context.Context) ([]Question, error) {
	return s.questions.ListQuestions(ctx)
}

// Submit scores a set of answers for a user and persists the result.
// Answers map question ID to the selected option ID. Submission never fails
// on unscoreable input: unresolvable option IDs are skipped and an empty
// answer set persists a result with no recommendations.
func (s *Service) Submit(ctx context.Context, userID string, answers map[string]string) (*TestResult, error) {
	if answers == nil {
		answers = map[string]string{}
	}

	recs := ScoreAnswers(answers, func(optionID string) (*Option, bool) {
		opt, err := s.questions.GetOption(ctx, optionID)
		if err != nil {
			if err != ErrNotFound {
				s.logger.Warn("option lookup failed",
					slog.String("option_id", optionID),
					slog.String("error", err.Error()))
			}
			return nil, false
		}
		return opt, true
	})

	result := &TestResult{
		UserID:          userID,
		Answers:         answers,
		Recommendations: recs,
	}
	if err := s.results.InsertResult(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("test submitted",
		slog.String("result_id", result.ID),
		slog.Int("answers", len(answers)),
		slog.Int("recommendations", len(recs)))
	return result, nil
}

// Result retrieves a single test result.
func (s *Service) Result(ctx context.Context, id string) (*TestResult, error) {
	return s.results.GetResult(ctx, id)
}

// ResultsForUser retrieves a user's test history, newest first.
func (s *Service) ResultsForUser(ctx context.Context, userID string) ([]TestResult, error) {
	return s.results.ListResultsByUser(ctx, userID)
}
