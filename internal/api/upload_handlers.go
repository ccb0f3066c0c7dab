package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orientis/orientis/internal/upload"
)

// UploadHandlers holds dependencies for transcript upload HTTP handlers.
type UploadHandlers struct {
	service *upload.Service
	logger  *slog.Logger
}

// NewUploadHandlers creates a new UploadHandlers instance.
// service may be nil when object storage is not configured.
func NewUploadHandlers(service *upload.Service, logger *slog.Logger) *UploadHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandlers{service: service, logger: logger}
}

type signedURLRequest struct {
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// SignedURL handles POST /uploads/transcript. Requires authentication.
// Returns a pre-signed PUT URL the client uploads the transcript to directly.
func (h *UploadHandlers) SignedURL(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		WriteError(w, r.Context(), http.StatusServiceUnavailable, ErrCodeInternal, "Uploads are not configured")
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req signedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	resp, err := h.service.GenerateSignedURL(r.Context(), upload.SignedURLRequest{
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UserID:      claims.Subject,
	})
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType):
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeUnsupportedType, "Only PDF and scanned image transcripts are accepted")
		case errors.Is(err, upload.ErrFileTooLarge):
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeFileTooLarge, "File exceeds the maximum allowed size")
		default:
			h.logger.Error("failed to presign upload", slog.String("error", err.Error()))
			WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		}
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

type deleteTranscriptRequest struct {
	Key string `json:"key"`
}

// Delete handles DELETE /uploads/transcript. Requires authentication. The key
// must have been issued to the same user by SignedURL.
func (h *UploadHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		WriteError(w, r.Context(), http.StatusServiceUnavailable, ErrCodeInternal, "Uploads are not configured")
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req deleteTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if req.Key == "" {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "Object key is required")
		return
	}

	if err := h.service.DeleteTranscript(r.Context(), claims.Subject, req.Key); err != nil {
		if errors.Is(err, upload.ErrKeyNotOwned) || errors.Is(err, upload.ErrInvalidUserID) {
			WriteError(w, r.Context(), http.StatusForbidden, ErrCodeForbidden, "Not your transcript")
			return
		}
		h.logger.Error("failed to delete transcript", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
