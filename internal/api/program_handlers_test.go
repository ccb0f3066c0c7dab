package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orientis/orientis/internal/program"
)

func seedProgramHandlers(t *testing.T) (*ProgramHandlers, *program.InMemoryRepository) {
	t.Helper()
	repo := program.NewInMemoryRepository()
	cheap, pricey := 1000.0, 5000.0
	seed := []program.Program{
		{
			UniversityID:    "uni-1",
			Name:            "Licence Informatique",
			Description:     "Programmation et algorithmique",
			DegreeLevel:     program.DegreeLicence,
			DurationYears:   3,
			Language:        "Français",
			Tuition:         &cheap,
			CareerProspects: "Développeur, administrateur systèmes",
		},
		{
			UniversityID:  "uni-2",
			Name:          "Master Marketing",
			Description:   "Stratégie de marque",
			DegreeLevel:   program.DegreeMaster,
			DurationYears: 2,
			Tuition:       &pricey,
		},
	}
	for i := range seed {
		if err := repo.Insert(context.Background(), &seed[i]); err != nil {
			t.Fatalf("failed to seed program: %v", err)
		}
	}
	return NewProgramHandlers(repo, slog.New(slog.DiscardHandler)), repo
}

// TestProgramList_Filters tests the query parameter handling of the list
// endpoint.
func TestProgramList_Filters(t *testing.T) {
	handlers, _ := seedProgramHandlers(t)

	tests := []struct {
		name      string
		url       string
		wantCount int
	}{
		{"no filter", "/programs", 2},
		{"keyword", "/programs?q=programmation", 1},
		{"degree level", "/programs?degree_level=master", 1},
		{"language", "/programs?language=Français", 1},
		{"university", "/programs?university_id=uni-1", 1},
		{"max tuition", "/programs?max_tuition=2000", 1},
		{"min tuition", "/programs?min_tuition=2000", 1},
		{"tuition range excludes all", "/programs?min_tuition=6000", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			handlers.List(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var got []program.Program
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("expected %d programs, got %d", tt.wantCount, len(got))
			}
		})
	}
}

// TestProgramList_InvalidTuition tests rejection of non-numeric tuition bounds.
func TestProgramList_InvalidTuition(t *testing.T) {
	handlers, _ := seedProgramHandlers(t)

	for _, url := range []string{"/programs?min_tuition=free", "/programs?max_tuition=lots"} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		handlers.List(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", url, w.Code)
		}
	}
}

// TestProgramGet_NotFound tests the 404 on unknown IDs.
func TestProgramGet_NotFound(t *testing.T) {
	handlers, _ := seedProgramHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/programs/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	handlers.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

// TestProgramCreate_UnknownDegreeLevel tests validation on creation.
func TestProgramCreate_UnknownDegreeLevel(t *testing.T) {
	handlers, _ := seedProgramHandlers(t)

	body, _ := json.Marshal(program.Program{
		UniversityID: "uni-1",
		Name:         "Certificat Maison",
		DegreeLevel:  "certificat",
	})
	req := httptest.NewRequest(http.MethodPost, "/programs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handlers.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestProgramUpdateDelete_Lifecycle tests update and delete through the path
// value binding.
func TestProgramUpdateDelete_Lifecycle(t *testing.T) {
	handlers, repo := seedProgramHandlers(t)

	p := &program.Program{
		UniversityID: "uni-1",
		Name:         "Licence Droit",
		DegreeLevel:  program.DegreeLicence,
	}
	if err := repo.Insert(context.Background(), p); err != nil {
		t.Fatalf("failed to insert program: %v", err)
	}

	body, _ := json.Marshal(program.Program{
		UniversityID:  "uni-1",
		Name:          "Licence Droit",
		DegreeLevel:   program.DegreeLicence,
		DurationYears: 3,
	})
	req := httptest.NewRequest(http.MethodPut, "/programs/"+p.ID, bytes.NewReader(body))
	req.SetPathValue("id", p.ID)
	w := httptest.NewRecorder()
	handlers.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	stored, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("failed to reload program: %v", err)
	}
	if stored.DurationYears != 3 {
		t.Errorf("expected duration 3, got %d", stored.DurationYears)
	}

	req = httptest.NewRequest(http.MethodDelete, "/programs/"+p.ID, nil)
	req.SetPathValue("id", p.ID)
	w = httptest.NewRecorder()
	handlers.Delete(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected status 204, got %d", w.Code)
	}

	if _, err := repo.GetByID(context.Background(), p.ID); err == nil {
		t.Error("expected program to be gone after delete")
	}
}
