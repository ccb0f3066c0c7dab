package search

import (
	"reflect"
	"testing"

	"github.com/orientis/orientis/internal/program"
	"github.com/orientis/orientis/internal/university"
)

func f64(v float64) *float64 { return &v }

func TestComputeFacets(t *testing.T) {
	universities := []university.University{
		{ID: "u1", Location: "Paris"},
		{ID: "u2", Location: "Lyon"},
		{ID: "u3", Location: "Paris"},
		{ID: "u4"},
	}
	programs := []program.Program{
		{ID: "p1", DegreeLevel: program.DegreeLicence, Tuition: f64(1000)},
		{ID: "p2", DegreeLevel: program.DegreeMaster, Tuition: f64(3000)},
		{ID: "p3", DegreeLevel: program.DegreeMaster},
	}

	facets := computeFacets(universities, programs)

	if !reflect.DeepEqual(facets.Locations, []string{"Lyon", "Paris"}) {
		t.Errorf("expected sorted distinct locations, got %v", facets.Locations)
	}

	wantLevels := map[string]string{
		program.DegreeLicence: "Licence",
		program.DegreeMaster:  "Master",
	}
	if !reflect.DeepEqual(facets.DegreeLevels, wantLevels) {
		t.Errorf("expected degree level labels %v, got %v", wantLevels, facets.DegreeLevels)
	}

	if facets.TuitionRange.Min == nil || *facets.TuitionRange.Min != 1000 {
		t.Errorf("expected tuition min 1000, got %v", facets.TuitionRange.Min)
	}
	if facets.TuitionRange.Max == nil || *facets.TuitionRange.Max != 3000 {
		t.Errorf("expected tuition max 3000, got %v", facets.TuitionRange.Max)
	}
}

func TestComputeFacetsEmpty(t *testing.T) {
	facets := computeFacets(nil, nil)

	if len(facets.Locations) != 0 {
		t.Errorf("expected no locations, got %v", facets.Locations)
	}
	if len(facets.DegreeLevels) != 0 {
		t.Errorf("expected no degree levels, got %v", facets.DegreeLevels)
	}
	if facets.TuitionRange.Min != nil || facets.TuitionRange.Max != nil {
		t.Errorf("expected open tuition range, got %v", facets.TuitionRange)
	}
}
