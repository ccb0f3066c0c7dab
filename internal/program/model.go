// Package program provides models and repositories for study programs
// offered by universities.
package program

import (
	"errors"
	"strings"
	"time"
)

// Degree level codes.
const (
	DegreeLicence   = "licence"
	DegreeMaster    = "master"
	DegreeDoctorat  = "doctorat"
	DegreeBTS       = "bts"
	DegreeDUT       = "dut"
	DegreeIngenieur = "ingenieur"
	DegreeOther     = "other"
)

// DegreeLevelLabels maps degree codes to their display labels.
var DegreeLevelLabels = map[string]string{
	DegreeLicence:   "Licence",
	DegreeMaster:    "Master",
	DegreeDoctorat:  "Doctorat",
	DegreeBTS:       "BTS",
	DegreeDUT:       "DUT",
	DegreeIngenieur: "Diplôme d'Ingénieur",
	DegreeOther:     "Autre",
}

// ErrNotFound is returned when no program matches the lookup.
var ErrNotFound = errors.New("program not found")

// Program represents a study program offered by a university.
// Tuition is nil when the fee is unknown.
type Program struct {
	ID              string    `json:"id"`
	UniversityID    string    `json:"university_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DegreeLevel     string    `json:"degree_level"`
	DurationYears   int       `json:"duration_years"`
	Language        string    `json:"language,omitempty"`
	Tuition         *float64  `json:"tuition,omitempty"`
	CareerProspects string    `json:"career_prospects,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DegreeLevelLabel returns the display label for the program's degree level.
func (p *Program) DegreeLevelLabel() string {
	if label, ok := DegreeLevelLabels[p.DegreeLevel]; ok {
		return label
	}
	return DegreeLevelLabels[DegreeOther]
}

// Validate checks the fields required for persistence.
func (p *Program) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.UniversityID) == "" {
		return errors.New("university_id is required")
	}
	if _, ok := DegreeLevelLabels[p.DegreeLevel]; !ok {
		return errors.New("unknown degree level")
	}
	if p.DurationYears < 0 {
		return errors.New("duration must not be negative")
	}
	if p.Tuition != nil && *p.Tuition < 0 {
		return errors.New("tuition must not be negative")
	}
	return nil
}

// Sort orders accepted by Search. Anything else falls back to name ascending.
const (
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
	SortTuition  = "tuition_fees"
)

// Filter narrows a program search. Keywords are matched as case-insensitive
// substrings against name and description; a record matches when any keyword
// matches. Degree level and language are exact matches. The remaining fields
// are conjunctive.
//
// UniversityIDs, when non-nil, restricts results to programs of those
// universities; a non-nil empty slice matches nothing.
type Filter struct {
	Keywords      []string
	DegreeLevel   string
	Language      string
	UniversityID  string
	UniversityIDs []string
	MinTuition    *float64
	MaxTuition    *float64
	Sort          string
}

// Matches reports whether the program satisfies the filter.
func (f *Filter) Matches(p *Program) bool {
	if f.DegreeLevel != "" && p.DegreeLevel != f.DegreeLevel {
		return false
	}
	if f.Language != "" && p.Language != f.Language {
		return false
	}
	if f.UniversityID != "" && p.UniversityID != f.UniversityID {
		return false
	}
	if f.UniversityIDs != nil {
		allowed := false
		for _, id := range f.UniversityIDs {
			if id == p.UniversityID {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if f.MinTuition != nil {
		if p.Tuition == nil || *p.Tuition < *f.MinTuition {
			return false
		}
	}
	if f.MaxTuition != nil {
		if p.Tuition == nil || *p.Tuition > *f.MaxTuition {
			return false
		}
	}
	if len(f.Keywords) == 0 {
		return true
	}
	for _, kw := range f.Keywords {
		if kw == "" {
			continue
		}
		if containsFold(p.Name, kw) || containsFold(p.Description, kw) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
