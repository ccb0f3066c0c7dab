// Package ranker provides generative re-ranking of search results through the
// Gemini REST API, with a deterministic fallback when the service is
// unavailable or returns an unusable response.
package ranker

// UniversityContext is the slice of a university shown to the ranking model.
type UniversityContext struct {
	ID          string
	Name        string
	Location    string
	Description string
}

// ProgramContext is the slice of a program shown to the ranking model.
type ProgramContext struct {
	ID          string
	Name        string
	DegreeLevel string
	Tuition     *float64
	Description string
}

// TuitionRange is a suggested tuition window. Bounds are nil when unknown.
type TuitionRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// SuggestedFilters are filter values the model proposes for narrowing results.
type SuggestedFilters struct {
	DegreeLevels []string     `json:"degree_levels"`
	Locations    []string     `json:"locations"`
	TuitionRange TuitionRange `json:"tuition_range"`
}

// Result is a ranking outcome: a natural-language analysis, the candidate IDs
// in relevance order, and suggested filters.
type Result struct {
	Analysis           string           `json:"analysis"`
	RankedUniversities []string         `json:"ranked_universities"`
	RankedPrograms     []string         `json:"ranked_programs"`
	SuggestedFilters   SuggestedFilters `json:"suggested_filters"`
}

// DefaultAnalysis is the analysis text used when ranking falls back.
const DefaultAnalysis = "Voici les résultats correspondant à votre recherche. Utilisez les filtres pour affiner les résultats."

// DefaultResult builds the fallback result: candidates keep their input order
// and no filters are suggested.
func DefaultResult(universities []UniversityContext, programs []ProgramContext) *Result {
	uniIDs := make([]string, len(universities))
	for i, u := range universities {
		uniIDs[i] = u.ID
	}
	progIDs := make([]string, len(programs))
	for i, p := range programs {
		progIDs[i] = p.ID
	}
	return &Result{
		Analysis:           DefaultAnalysis,
		RankedUniversities: uniIDs,
		RankedPrograms:     progIDs,
		SuggestedFilters: SuggestedFilters{
			DegreeLevels: []string{},
			Locations:    []string{},
		},
	}
}

// sanitize drops ranked IDs that are not among the candidates and appends
// candidates the model omitted, preserving their input order.
func (r *Result) sanitize(universities []UniversityContext, programs []ProgramContext) {
	uniIDs := make([]string, len(universities))
	for i, u := range universities {
		uniIDs[i] = u.ID
	}
	progIDs := make([]string, len(programs))
	for i, p := range programs {
		progIDs[i] = p.ID
	}
	r.RankedUniversities = sanitizeIDs(r.RankedUniversities, uniIDs)
	r.RankedPrograms = sanitizeIDs(r.RankedPrograms, progIDs)
	if r.SuggestedFilters.DegreeLevels == nil {
		r.SuggestedFilters.DegreeLevels = []string{}
	}
	if r.SuggestedFilters.Locations == nil {
		r.SuggestedFilters.Locations = []string{}
	}
}

func sanitizeIDs(ranked, candidates []string) []string {
	known := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		known[id] = true
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, id := range ranked {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range candidates {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
