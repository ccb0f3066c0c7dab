package orientation

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, *InMemoryQuestionRepository) {
	t.Helper()
	questions := NewInMemoryQuestionRepository()
	results := NewInMemoryResultRepository()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(questions, results, logger)

	q := &Question{
		Text:  "Quelle activité préférez-vous ?",
		Order: 1,
		Options: []Option{
			{ID: "opt-build", Text: "Construire des machines", EngineeringWeight: 3},
			{ID: "opt-sell", Text: "Vendre un produit", BusinessWeight: 3},
		},
	}
	if err := questions.InsertQuestion(context.Background(), q); err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}
	return svc, questions
}

func TestSubmitPersistsResultWithRecommendations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, "user-1", map[string]string{"q1": "opt-build"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.ID == "" {
		t.Error("expected generated result ID")
	}
	if result.DateTaken.IsZero() {
		t.Error("expected date taken to be set")
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Field != FieldEngineering {
		t.Errorf("expected engineering recommendation, got %v", result.Recommendations)
	}

	stored, err := svc.Result(ctx, result.ID)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if stored.UserID != "user-1" {
		t.Errorf("expected owner user-1, got %q", stored.UserID)
	}
}

func TestSubmitEmptyAnswers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// An empty submission persists exactly like one whose options cannot be
	// resolved: a stored result with no recommendations.
	for _, answers := range []map[string]string{nil, {}} {
		result, err := svc.Submit(ctx, "user-1", answers)
		if err != nil {
			t.Fatalf("Submit(%v) failed: %v", answers, err)
		}
		if len(result.Recommendations) != 0 {
			t.Errorf("expected no recommendations, got %v", result.Recommendations)
		}
		if result.Answers == nil {
			t.Error("expected answers to be stored as an empty map")
		}
		if _, err := svc.Result(ctx, result.ID); err != nil {
			t.Errorf("expected persisted result, got %v", err)
		}
	}
}

func TestSubmitAllUnknownOptions(t *testing.T) {
	svc, _ := newTestService(t)

	// Unknown options are skipped; the result persists with no recommendations.
	result, err := svc.Submit(context.Background(), "user-1", map[string]string{"q1": "ghost"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", result.Recommendations)
	}
}

func TestResultsForUserNewestFirst(t *testing.T) {
	questions := NewInMemoryQuestionRepository()
	results := NewInMemoryResultRepository()
	svc := NewService(questions, results, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	old := &TestResult{UserID: "user-1", DateTaken: time.Now().Add(-time.Hour), Answers: map[string]string{}}
	recent := &TestResult{UserID: "user-1", DateTaken: time.Now(), Answers: map[string]string{}}
	other := &TestResult{UserID: "user-2", DateTaken: time.Now(), Answers: map[string]string{}}
	for _, r := range []*TestResult{old, recent, other} {
		if err := results.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult failed: %v", err)
		}
	}

	got, err := svc.ResultsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ResultsForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != recent.ID {
		t.Errorf("expected newest result first")
	}
}

func TestListQuestionsOrdered(t *testing.T) {
	repo := NewInMemoryQuestionRepository()
	ctx := context.Background()

	for _, q := range []*Question{
		{Text: "second", Order: 2},
		{Text: "first", Order: 1},
		{Text: "third", Order: 3},
	} {
		if err := repo.InsertQuestion(ctx, q); err != nil {
			t.Fatalf("InsertQuestion failed: %v", err)
		}
	}

	got, err := repo.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, text := range want {
		if got[i].Text != text {
			t.Errorf("question[%d] = %q, want %q", i, got[i].Text, text)
		}
	}
}
