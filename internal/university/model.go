// Package university provides models and repositories for university records
// and their keyword-based search.
package university

import (
	"errors"
	"strings"
	"time"
)

// Institution type values.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// ErrNotFound is returned when no university matches the lookup.
var ErrNotFound = errors.New("university not found")

// University represents a higher-education institution in the catalog.
type University struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Rating      float64   `json:"rating"`
	Website     string    `json:"website,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields required for persistence.
func (u *University) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(u.Location) == "" {
		return errors.New("location is required")
	}
	if u.Type != TypePublic && u.Type != TypePrivate {
		return errors.New("type must be public or private")
	}
	if u.Rating < 0 || u.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	return nil
}

// Filter narrows a university search. Keywords are matched as
// case-insensitive substrings against name, description, location and
// specialties; a record matches when any keyword matches. The remaining
// fields are conjunctive.
//
// Ordering names the sort field (name, rating or location), with a leading
// "-" for descending. Unknown values fall back to name ascending.
type Filter struct {
	Keywords  []string
	Type      string
	Location  string
	MinRating float64
	Ordering  string
}

// sortField splits the ordering into a whitelisted field and direction.
func (f *Filter) sortField() (field string, desc bool) {
	o := f.Ordering
	if strings.HasPrefix(o, "-") {
		desc = true
		o = o[1:]
	}
	switch o {
	case "rating", "location":
		return o, desc
	default:
		return "name", desc
	}
}

// Matches reports whether the university satisfies the filter.
func (f *Filter) Matches(u *University) bool {
	if f.Type != "" && u.Type != f.Type {
		return false
	}
	if f.Location != "" && !containsFold(u.Location, f.Location) {
		return false
	}
	if f.MinRating > 0 && u.Rating < f.MinRating {
		return false
	}
	if len(f.Keywords) == 0 {
		return true
	}
	for _, kw := range f.Keywords {
		if kw == "" {
			continue
		}
		if containsFold(u.Name, kw) || containsFold(u.Description, kw) || containsFold(u.Location, kw) {
			return true
		}
		for _, s := range u.Specialties {
			if containsFold(s, kw) {
				return true
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
