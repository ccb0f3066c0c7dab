package search

import (
	"sort"

	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/ranker"
	"github.com/orientis/orientis/internal/university"
)

// Facets summarizes the filter values present in a result set.
type Facets struct {
	Locations    []string            `json:"locations"`
	DegreeLevels map[string]string   `json:"degree_levels"`
	TuitionRange ranker.TuitionRange `json:"tuition_range"`
}

// computeFacets aggregates the distinct locations, degree levels (code to
// display label) and the tuition bounds observed across the results.
func computeFacets(universities []university.University, programs []program.Program) Facets {
	locationSet := make(map[string]bool)
	for _, u := range universities {
		if u.Location != "" {
			locationSet[u.Location] = true
		}
	}
	locations := make([]string, 0, len(locationSet))
	for loc := range locationSet {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	degreeLevels := make(map[string]string)
	var tuitionRange ranker.TuitionRange
	for i := range programs {
		p := &programs[i]
		if p.DegreeLevel != "" {
			degreeLevels[p.DegreeLevel] = p.DegreeLevelLabel()
		}
		if p.Tuition != nil && *p.Tuition > 0 {
			t := *p.Tuition
			if tuitionRange.Min == nil || t < *tuitionRange.Min {
				v := t
				tuitionRange.Min = &v
			}
			if tuitionRange.Max == nil || t > *tuitionRange.Max {
				v := t
				tuitionRange.Max = &v
			}
		}
	}

	return Facets{
		Locations:    locations,
		DegreeLevels: degreeLevels,
		TuitionRange: tuitionRange,
	}
}
