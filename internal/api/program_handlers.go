package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orientis/orientis/internal/program"
)

// ProgramHandlers holds dependencies for program HTTP handlers.
type ProgramHandlers struct {
	repo   program.Repository
	logger *slog.Logger
}

// NewProgramHandlers creates a new ProgramHandlers instance.
func NewProgramHandlers(repo program.Repository, logger *slog.Logger) *ProgramHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgramHandlers{repo: repo, logger: logger}
}

// List handles GET /programs with optional q, degree_level, language,
// university_id, min_tuition, max_tuition and sort_by query parameters.
func (h *ProgramHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := program.Filter{
		DegreeLevel:  query.Get("degree_level"),
		Language:     query.Get("language"),
		UniversityID: query.Get("university_id"),
		Sort:         query.Get("sort_by"),
	}
	if q := query.Get("q"); q != "" {
		filter.Keywords = []string{q}
	}

	var err error
	if filter.MinTuition, err = parseTuition(query.Get("min_tuition")); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "min_tuition must be a number")
		return
	}
	if filter.MaxTuition, err = parseTuition(query.Get("max_tuition")); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "max_tuition must be a number")
		return
	}

	results, err := h.repo.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("program search failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Search failed")
		return
	}
	WriteJSON(w, http.StatusOK, results)
}

// Get handles GET /programs/{id}.
func (h *ProgramHandlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, program.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Program not found")
			return
		}
		h.logger.Error("program lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Lookup failed")
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Create handles POST /programs. Admin only.
func (h *ProgramHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var p program.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	p.ID = ""

	if err := h.repo.Insert(r.Context(), &p); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	h.logger.Info("program created", slog.String("program_id", p.ID))
	WriteJSON(w, http.StatusCreated, p)
}

// Update handles PUT /programs/{id}. Admin only.
func (h *ProgramHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var p program.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	p.ID = r.PathValue("id")

	if err := h.repo.Update(r.Context(), &p); err != nil {
		if errors.Is(err, program.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Program not found")
			return
		}
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /programs/{id}. Admin only.
func (h *ProgramHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, program.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Program not found")
			return
		}
		h.logger.Error("program delete failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTuition(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
