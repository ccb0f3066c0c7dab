package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orientis/orientis/internal/university"
)

// UniversityHandlers holds dependencies for university HTTP handlers.
type UniversityHandlers struct {
	repo   university.Repository
	logger *slog.Logger
}

// NewUniversityHandlers creates a new UniversityHandlers instance.
func NewUniversityHandlers(repo university.Repository, logger *slog.Logger) *UniversityHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &UniversityHandlers{repo: repo, logger: logger}
}

// List handles GET /universities with optional q, type, location, min_rating
// and ordering query parameters.
func (h *UniversityHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := university.Filter{
		Type:     query.Get("type"),
		Location: query.Get("location"),
		Ordering: query.Get("ordering"),
	}
	if q := query.Get("q"); q != "" {
		filter.Keywords = []string{q}
	}
	if raw := query.Get("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "min_rating must be a number")
			return
		}
		filter.MinRating = rating
	}

	results, err := h.repo.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("university search failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Search failed")
		return
	}
	WriteJSON(w, http.StatusOK, results)
}

// Get handles GET /universities/{id}.
func (h *UniversityHandlers) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, university.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "University not found")
			return
		}
		h.logger.Error("university lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Lookup failed")
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

// Create handles POST /universities. Admin only.
func (h *UniversityHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var u university.University
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	u.ID = ""

	if err := h.repo.Insert(r.Context(), &u); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	h.logger.Info("university created", slog.String("university_id", u.ID))
	WriteJSON(w, http.StatusCreated, u)
}

// Update handles PUT /universities/{id}. Admin only.
func (h *UniversityHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var u university.University
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	u.ID = r.PathValue("id")

	if err := h.repo.Update(r.Context(), &u); err != nil {
		if errors.Is(err, university.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "University not found")
			return
		}
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /universities/{id}. Admin only.
func (h *UniversityHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, university.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "University not found")
			return
		}
		h.logger.Error("university delete failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
