package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orientis/orientis/internal/search"
)

// SearchHandlers holds dependencies for the global search endpoint.
type SearchHandlers struct {
	service *search.Service
	logger  *slog.Logger
}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers(service *search.Service, logger *slog.Logger) *SearchHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandlers{service: service, logger: logger}
}

// Search handles GET /search. Query parameters: q, location, degree_level,
// min_tuition, max_tuition. Unparseable tuition bounds are ignored with a
// warning rather than rejected, so a sloppy client still gets results.
func (h *SearchHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := search.Request{
		Query:       query.Get("q"),
		Location:    query.Get("location"),
		DegreeLevel: query.Get("degree_level"),
	}
	req.MinTuition = h.lenientTuition(query.Get("min_tuition"), "min_tuition")
	req.MaxTuition = h.lenientTuition(query.Get("max_tuition"), "max_tuition")

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.logger.Error("search failed",
			slog.String("query", req.Query),
			slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Une erreur est survenue lors de la recherche.")
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *SearchHandlers) lenientTuition(raw, name string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.logger.Warn("ignoring invalid tuition bound",
			slog.String("param", name),
			slog.String("value", raw))
		return nil
	}
	return &v
}
