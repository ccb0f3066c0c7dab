package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/university"
	"github.com/orientis/orientis/internal/user"
)

// ProfileHandlers serves the authenticated user's profile and their saved
// catalog entries.
type ProfileHandlers struct {
	users        user.Repository
	saved        user.SavedItemsRepository
	programs     program.Repository
	universities university.Repository
	logger       *slog.Logger
}

// NewProfileHandlers creates a new ProfileHandlers instance.
func NewProfileHandlers(users user.Repository, saved user.SavedItemsRepository, programs program.Repository, universities university.Repository, logger *slog.Logger) *ProfileHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandlers{
		users:        users,
		saved:        saved,
		programs:     programs,
		universities: universities,
		logger:       logger,
	}
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateMe handles PUT /me. Requires authentication. Only the display name
// can be changed here; email and password stay as registered.
func (h *ProfileHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "User not found")
		return
	}

	u.Name = req.Name
	if err := h.users.Update(r.Context(), u); err != nil {
		h.logger.Error("profile update failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Update failed")
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

type savedItemsResponse struct {
	SavedPrograms     []program.Program       `json:"saved_programs"`
	SavedUniversities []university.University `json:"saved_universities"`
}

// SavedItems handles GET /me/saved-items. Requires authentication.
func (h *ProfileHandlers) SavedItems(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	programs, err := h.savedProgramList(r, claims.Subject)
	if err != nil {
		h.logger.Error("saved programs lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Listing failed")
		return
	}
	universities, err := h.savedUniversityList(r, claims.Subject)
	if err != nil {
		h.logger.Error("saved universities lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Listing failed")
		return
	}
	WriteJSON(w, http.StatusOK, savedItemsResponse{
		SavedPrograms:     programs,
		SavedUniversities: universities,
	})
}

// SavedPrograms handles GET /me/saved-programs. Requires authentication.
func (h *ProfileHandlers) SavedPrograms(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	programs, err := h.savedProgramList(r, claims.Subject)
	if err != nil {
		h.logger.Error("saved programs lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Listing failed")
		return
	}
	WriteJSON(w, http.StatusOK, programs)
}

type saveProgramRequest struct {
	ProgramID string `json:"program_id"`
}

// SaveProgram handles POST /me/saved-programs. Requires authentication.
func (h *ProfileHandlers) SaveProgram(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req saveProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if req.ProgramID == "" {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "program_id is required")
		return
	}

	p, err := h.programs.GetByID(r.Context(), req.ProgramID)
	if err != nil {
		if errors.Is(err, program.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "Program not found")
			return
		}
		h.logger.Error("program lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Lookup failed")
		return
	}

	if err := h.saved.SaveProgram(r.Context(), claims.Subject, p.ID); err != nil {
		h.logger.Error("saving program failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Save failed")
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

// RemoveSavedProgram handles DELETE /me/saved-programs/{id}.
// Requires authentication.
func (h *ProfileHandlers) RemoveSavedProgram(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	if err := h.saved.RemoveProgram(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		h.logger.Error("removing saved program failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Remove failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SavedUniversities handles GET /me/saved-universities. Requires
// authentication.
func (h *ProfileHandlers) SavedUniversities(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	universities, err := h.savedUniversityList(r, claims.Subject)
	if err != nil {
		h.logger.Error("saved universities lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Listing failed")
		return
	}
	WriteJSON(w, http.StatusOK, universities)
}

type saveUniversityRequest struct {
	UniversityID string `json:"university_id"`
}

// SaveUniversity handles POST /me/saved-universities. Requires
// authentication.
func (h *ProfileHandlers) SaveUniversity(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req saveUniversityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if req.UniversityID == "" {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "university_id is required")
		return
	}

	u, err := h.universities.GetByID(r.Context(), req.UniversityID)
	if err != nil {
		if errors.Is(err, university.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "University not found")
			return
		}
		h.logger.Error("university lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Lookup failed")
		return
	}

	if err := h.saved.SaveUniversity(r.Context(), claims.Subject, u.ID); err != nil {
		h.logger.Error("saving university failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Save failed")
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

// RemoveSavedUniversity handles DELETE /me/saved-universities/{id}.
// Requires authentication.
func (h *ProfileHandlers) RemoveSavedUniversity(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	if err := h.saved.RemoveUniversity(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		h.logger.Error("removing saved university failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Remove failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// savedProgramList hydrates the user's saved program IDs. Entries that have
// left the catalog are skipped.
func (h *ProfileHandlers) savedProgramList(r *http.Request, userID string) ([]program.Program, error) {
	ids, err := h.saved.ListSavedPrograms(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	programs := make([]program.Program, 0, len(ids))
	for _, id := range ids {
		p, err := h.programs.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, program.ErrNotFound) {
				continue
			}
			return nil, err
		}
		programs = append(programs, *p)
	}
	return programs, nil
}

// savedUniversityList hydrates the user's saved university IDs. Entries that
// have left the catalog are skipped.
func (h *ProfileHandlers) savedUniversityList(r *http.Request, userID string) ([]university.University, error) {
	ids, err := h.saved.ListSavedUniversities(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	universities := make([]university.University, 0, len(ids))
	for _, id := range ids {
		u, err := h.universities.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, university.ErrNotFound) {
				continue
			}
			return nil, err
		}
		universities = append(universities, *u)
	}
	return universities, nil
}
