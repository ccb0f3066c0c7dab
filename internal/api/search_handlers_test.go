package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/search"
	"github.com/orientis/orientis/internal/university"
)

func newSearchHandlers(t *testing.T) *SearchHandlers {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	universities := university.NewInMemoryRepository()
	programs := program.NewInMemoryRepository()

	uni := &university.University{
		Name:        "Université de Technologie",
		Description: "Spécialisée en informatique",
		Location:    "Paris",
		Type:        university.TypePublic,
		Specialties: []string{"informatique"},
	}
	if err := universities.Insert(context.Background(), uni); err != nil {
		t.Fatalf("failed to seed university: %v", err)
	}
	tuition := 1500.0
	if err := programs.Insert(context.Background(), &program.Program{
		UniversityID: uni.ID,
		Name:         "Licence Informatique",
		Description:  "Programmation et bases de données",
		DegreeLevel:  program.DegreeLicence,
		Tuition:      &tuition,
	}); err != nil {
		t.Fatalf("failed to seed program: %v", err)
	}

	service := search.NewService(universities, programs, fallbackRanker{}, nil, time.Minute, logger)
	return NewSearchHandlers(service, logger)
}

// TestSearch_ReturnsResultsAndMetadata tests the happy path with facets.
func TestSearch_ReturnsResultsAndMetadata(t *testing.T) {
	handlers := newSearchHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/search?q=informatique", nil)
	w := httptest.NewRecorder()
	handlers.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp search.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Universities) != 1 {
		t.Errorf("expected 1 university, got %d", len(resp.Universities))
	}
	if len(resp.Programs) != 1 {
		t.Errorf("expected 1 program, got %d", len(resp.Programs))
	}
	if resp.Metadata.Analysis == "" {
		t.Error("expected a non-empty analysis")
	}
	if len(resp.Metadata.FiltersAvailable.Locations) != 1 {
		t.Errorf("expected 1 location facet, got %v", resp.Metadata.FiltersAvailable.Locations)
	}
}

// TestSearch_ExpansionFindsRelatedResults tests that a career query with no
// direct match still returns results via keyword expansion.
func TestSearch_ExpansionFindsRelatedResults(t *testing.T) {
	handlers := newSearchHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/search?q=développeur", nil)
	w := httptest.NewRecorder()
	handlers.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp search.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Programs) == 0 {
		t.Error("expected expansion to surface the computer science program")
	}
}

// TestSearch_IgnoresInvalidTuitionBounds tests the lenient parameter handling.
func TestSearch_IgnoresInvalidTuitionBounds(t *testing.T) {
	handlers := newSearchHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/search?q=informatique&min_tuition=abc&max_tuition=", nil)
	w := httptest.NewRecorder()
	handlers.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 despite bad bounds, got %d", w.Code)
	}
	var resp search.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Programs) != 1 {
		t.Errorf("expected the bad bound to be ignored, got %d programs", len(resp.Programs))
	}
}

// TestSearch_EmptyQueryListsEverything tests the browse mode.
func TestSearch_EmptyQueryListsEverything(t *testing.T) {
	handlers := newSearchHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	handlers.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp search.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Universities) != 1 || len(resp.Programs) != 1 {
		t.Errorf("expected full catalog, got %d universities and %d programs",
			len(resp.Universities), len(resp.Programs))
	}
}
