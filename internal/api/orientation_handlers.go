package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orientis/orientis/internal/orientation"
)

// OrientationHandlers holds dependencies for orientation test HTTP handlers.
type OrientationHandlers struct {
	service *orientation.Service
	logger  *slog.Logger
}

// NewOrientationHandlers creates a new OrientationHandlers instance.
func NewOrientationHandlers(service *orientation.Service, logger *slog.Logger) *OrientationHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrientationHandlers{service: service, logger: logger}
}

// Questions handles GET /tests/questions. Requires authentication.
func (h *OrientationHandlers) Questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context())
	if err != nil {
		h.logger.Error("failed to list questions", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Failed to load questions")
		return
	}
	WriteJSON(w, http.StatusOK, questions)
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

// Submit handles POST /tests/submit. Requires authentication.
func (h *OrientationHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.service.Submit(r.Context(), claims.Subject, req.Answers)
	if err != nil {
		h.logger.Error("test submission failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Submission failed")
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// Result handles GET /tests/results/{id}. The result owner and admins only.
func (h *OrientationHandlers) Result(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	result, err := h.service.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, orientation.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Result not found")
			return
		}
		h.logger.Error("result lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Lookup failed")
		return
	}

	if !claims.OwnerOrAdmin(result.UserID) {
		WriteError(w, r.Context(), http.StatusForbidden, ErrCodeForbidden, "Not your test result")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// MyResults handles GET /tests/my-results. Requires authentication.
func (h *OrientationHandlers) MyResults(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	results, err := h.service.ResultsForUser(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("result listing failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Listing failed")
		return
	}
	WriteJSON(w, http.StatusOK, results)
}
