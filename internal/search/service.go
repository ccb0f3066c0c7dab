package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/ranker"
	"github.com/orientis/orientis/internal/university"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores encoded search responses. Implementations may fail freely;
// the service treats every cache error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Request carries the search query and its optional filters.
type Request struct {
	Query       string
	Location    string
	DegreeLevel string
	MinTuition  *float64
	MaxTuition  *float64
}

// FiltersAvailable combines observed facets with model-suggested filters.
type FiltersAvailable struct {
	Facets
	SuggestedFilters ranker.SuggestedFilters `json:"suggested_filters"`
}

// Metadata accompanies the ranked results.
type Metadata struct {
	FiltersAvailable FiltersAvailable `json:"filters_available"`
	Analysis         string           `json:"analysis"`
}

// Response is a complete search result bundle.
type Response struct {
	Universities []university.University `json:"universities"`
	Programs     []program.Program       `json:"programs"`
	Metadata     Metadata                `json:"metadata"`
}

// Service orchestrates the search pipeline over the catalog repositories.
type Service struct {
	universities university.Repository
	programs     program.Repository
	ranker       ranker.Client
	cache        Cache
	cacheTTL     time.Duration
	logger       *slog.Logger
}

// NewService creates a new search service. cache may be nil to disable
// response caching.
func NewService(universities university.Repository, programs program.Repository, rk ranker.Client, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		universities: universities,
		programs:     programs,
		ranker:       rk,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Search runs the full pipeline: direct match, expansion when the direct pass
// finds nothing, generative ranking, merge and facet aggregation.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	key := cacheKey(req)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	universities, programs, err := s.directSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(universities) == 0 && len(programs) == 0 && req.Query != "" {
		s.logger.Info("no direct results, expanding search", slog.String("query", req.Query))
		universities, programs, err = s.expandedSearch(ctx, req.Query)
		if err != nil {
			return nil, err
		}
	}

	uniCtx := make([]ranker.UniversityContext, len(universities))
	for i, u := range universities {
		uniCtx[i] = ranker.UniversityContext{ID: u.ID, Name: u.Name, Location: u.Location, Description: u.Description}
	}
	progCtx := make([]ranker.ProgramContext, len(programs))
	for i, p := range programs {
		progCtx[i] = ranker.ProgramContext{ID: p.ID, Name: p.Name, DegreeLevel: p.DegreeLevel, Tuition: p.Tuition, Description: p.Description}
	}

	ranked := s.ranker.Rank(ctx, req.Query, uniCtx, progCtx)

	universities = orderByRank(universities, func(u university.University) string { return u.ID }, ranked.RankedUniversities)
	programs = orderByRank(programs, func(p program.Program) string { return p.ID }, ranked.RankedPrograms)

	resp := &Response{
		Universities: universities,
		Programs:     programs,
		Metadata: Metadata{
			FiltersAvailable: FiltersAvailable{
				Facets:           computeFacets(universities, programs),
				SuggestedFilters: ranked.SuggestedFilters,
			},
			Analysis: ranked.Analysis,
		},
	}

	s.toCache(ctx, key, resp)
	return resp, nil
}

// directSearch applies the query and filters as-is. The location facet
// constrains programs through their university.
func (s *Service) directSearch(ctx context.Context, req Request) ([]university.University, []program.Program, error) {
	var terms []string
	if req.Query != "" {
		terms = []string{req.Query}
	}

	universities, err := s.universities.Search(ctx, university.Filter{
		Keywords: terms,
		Location: req.Location,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("university search failed: %w", err)
	}

	progFilter := program.Filter{
		Keywords:    terms,
		DegreeLevel: req.DegreeLevel,
		MinTuition:  req.MinTuition,
		MaxTuition:  req.MaxTuition,
	}
	if req.Location != "" {
		located, err := s.universities.Search(ctx, university.Filter{Location: req.Location})
		if err != nil {
			return nil, nil, fmt.Errorf("university location lookup failed: %w", err)
		}
		ids := make([]string, 0, len(located))
		for _, u := range located {
			ids = append(ids, u.ID)
		}
		progFilter.UniversityIDs = ids
	}

	programs, err := s.programs.Search(ctx, progFilter)
	if err != nil {
		return nil, nil, fmt.Errorf("program search failed: %w", err)
	}
	return universities, programs, nil
}

// expandedSearch widens the query with domain and career keywords. Secondary
// filters are dropped so the widened pass can surface adjacent results.
func (s *Service) expandedSearch(ctx context.Context, query string) ([]university.University, []program.Program, error) {
	universities, err := s.universities.Search(ctx, university.Filter{
		Keywords: ExpandUniversityKeywords(query),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("expanded university search failed: %w", err)
	}

	programs, err := s.programs.Search(ctx, program.Filter{
		Keywords: ExpandProgramKeywords(query),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("expanded program search failed: %w", err)
	}
	return universities, programs, nil
}

func (s *Service) fromCache(ctx context.Context, key string) *Response {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache read failed", slog.String("error", err.Error()))
		}
		return nil
	}
	var resp Response
	if err := cbor.Unmarshal(data, &resp); err != nil {
		s.logger.Warn("cache entry corrupt", slog.String("error", err.Error()))
		return nil
	}
	return &resp
}

func (s *Service) toCache(ctx context.Context, key string, resp *Response) {
	if s.cache == nil {
		return
	}
	data, err := cbor.Marshal(resp)
	if err != nil {
		s.logger.Warn("cache encode failed", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", slog.String("error", err.Error()))
	}
}

func cacheKey(req Request) string {
	min, max := "", ""
	if req.MinTuition != nil {
		min = fmt.Sprintf("%g", *req.MinTuition)
	}
	if req.MaxTuition != nil {
		max = fmt.Sprintf("%g", *req.MaxTuition)
	}
	return fmt.Sprintf("search:q=%s&location=%s&degree=%s&min=%s&max=%s",
		req.Query, req.Location, req.DegreeLevel, min, max)
}
