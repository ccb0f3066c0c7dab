package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orientis/orientis/internal/university"
)

func seedUniversityHandlers(t *testing.T) (*UniversityHandlers, *university.InMemoryRepository) {
	t.Helper()
	repo := university.NewInMemoryRepository()
	seed := []university.University{
		{
			Name:        "Université Paris-Saclay",
			Description: "Recherche en informatique et mathématiques",
			Location:    "Paris",
			Type:        university.TypePublic,
			Rating:      4.5,
			Specialties: []string{"informatique", "mathématiques"},
		},
		{
			Name:        "École de Commerce de Lyon",
			Description: "Formation en management",
			Location:    "Lyon",
			Type:        university.TypePrivate,
			Rating:      3.8,
			Specialties: []string{"commerce", "marketing"},
		},
	}
	for i := range seed {
		if err := repo.Insert(context.Background(), &seed[i]); err != nil {
			t.Fatalf("failed to seed university: %v", err)
		}
	}
	return NewUniversityHandlers(repo, slog.New(slog.DiscardHandler)), repo
}

// TestUniversityList_Filters tests the query parameter handling of the list
// endpoint.
func TestUniversityList_Filters(t *testing.T) {
	handlers, _ := seedUniversityHandlers(t)

	tests := []struct {
		name      string
		url       string
		wantCount int
	}{
		{"no filter", "/universities", 2},
		{"keyword", "/universities?q=informatique", 1},
		{"type", "/universities?type=private", 1},
		{"location", "/universities?location=lyon", 1},
		{"min rating", "/universities?min_rating=4.0", 1},
		{"no match", "/universities?q=astronomie", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			handlers.List(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var got []university.University
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("expected %d universities, got %d", tt.wantCount, len(got))
			}
		})
	}
}

// TestUniversityList_InvalidMinRating tests rejection of a non-numeric rating.
func TestUniversityList_InvalidMinRating(t *testing.T) {
	handlers, _ := seedUniversityHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/universities?min_rating=high", nil)
	w := httptest.NewRecorder()
	handlers.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestUniversityGet_NotFound tests the 404 on unknown IDs.
func TestUniversityGet_NotFound(t *testing.T) {
	handlers, _ := seedUniversityHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/universities/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	handlers.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

// TestUniversityCreate_IgnoresClientID tests that creation assigns a server-side ID.
func TestUniversityCreate_IgnoresClientID(t *testing.T) {
	handlers, _ := seedUniversityHandlers(t)

	body, _ := json.Marshal(university.University{
		ID:       "client-chosen",
		Name:     "Université de Bordeaux",
		Location: "Bordeaux",
		Type:     university.TypePublic,
	})
	req := httptest.NewRequest(http.MethodPost, "/universities", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handlers.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created university.University
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" || created.ID == "client-chosen" {
		t.Errorf("expected a server-assigned ID, got %q", created.ID)
	}
}

// TestUniversityCreate_Invalid tests validation errors surfacing as 400.
func TestUniversityCreate_Invalid(t *testing.T) {
	handlers, _ := seedUniversityHandlers(t)

	body, _ := json.Marshal(university.University{Name: "Sans Lieu", Type: university.TypePublic})
	req := httptest.NewRequest(http.MethodPost, "/universities", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handlers.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestUniversityUpdateDelete_Lifecycle tests update and delete through the
// path value binding.
func TestUniversityUpdateDelete_Lifecycle(t *testing.T) {
	handlers, repo := seedUniversityHandlers(t)

	u := &university.University{Name: "Université de Lille", Location: "Lille", Type: university.TypePublic}
	if err := repo.Insert(context.Background(), u); err != nil {
		t.Fatalf("failed to insert university: %v", err)
	}

	body, _ := json.Marshal(university.University{
		Name:     "Université de Lille",
		Location: "Lille",
		Type:     university.TypePublic,
		Rating:   4.2,
	})
	req := httptest.NewRequest(http.MethodPut, "/universities/"+u.ID, bytes.NewReader(body))
	req.SetPathValue("id", u.ID)
	w := httptest.NewRecorder()
	handlers.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	stored, err := repo.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("failed to reload university: %v", err)
	}
	if stored.Rating != 4.2 {
		t.Errorf("expected rating 4.2, got %f", stored.Rating)
	}

	req = httptest.NewRequest(http.MethodDelete, "/universities/"+u.ID, nil)
	req.SetPathValue("id", u.ID)
	w = httptest.NewRecorder()
	handlers.Delete(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected status 204, got %d", w.Code)
	}

	if _, err := repo.GetByID(context.Background(), u.ID); err == nil {
		t.Error("expected university to be gone after delete")
	}
}
