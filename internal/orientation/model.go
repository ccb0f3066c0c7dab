// Package orientation provides the orientation test: questions, weighted
// options, scoring and field recommendations.
package orientation

import (
	"errors"
	"time"
)

// Field identifies a study field a test can recommend.
type Field string

// Fields eligible for recommendations. Law, medicine and education exist in
// the taxonomy and can be displayed, but no option weight feeds them, so they
// only appear with explicit future weights.
const (
	FieldEngineering Field = "engineering"
	FieldScience     Field = "science"
	FieldBusiness    Field = "business"
	FieldArts        Field = "arts"
	FieldSocial      Field = "social"
	FieldLaw         Field = "law"
	FieldMedicine    Field = "medicine"
	FieldEducation   Field = "education"
)

// FieldLabels maps fields to their display labels.
var FieldLabels = map[Field]string{
	FieldEngineering: "Ingénierie",
	FieldScience:     "Sciences",
	FieldBusiness:    "Commerce",
	FieldArts:        "Arts et Lettres",
	FieldSocial:      "Sciences Sociales",
	FieldLaw:         "Droit",
	FieldMedicine:    "Médecine",
	FieldEducation:   "Éducation",
}

// Label returns the display label for the field.
func (f Field) Label() string {
	if label, ok := FieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("record not found")

// Question is a single orientation test question. Questions are presented
// ordered by Order ascending.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Order   int      `json:"order"`
	Options []Option `json:"options"`
}

// Option is an answer choice carrying the weight it contributes to each
// scored field when selected.
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"-"`
	Text       string `json:"text"`

	EngineeringWeight int `json:"-"`
	ScienceWeight     int `json:"-"`
	BusinessWeight    int `json:"-"`
	ArtsWeight        int `json:"-"`
	SocialWeight      int `json:"-"`
}

// TestResult is a persisted test submission with its recommendations.
// Answers maps question ID to the selected option ID.
type TestResult struct {
	ID              string                `json:"id"`
	UserID          string                `json:"-"`
	DateTaken       time.Time             `json:"date_taken"`
	Answers         map[string]string     `json:"answers"`
	Recommendations []FieldRecommendation `json:"recommendations"`
}

// FieldRecommendation is a scored field on a test result.
// Compatibility is a percentage from 1 to 100.
type FieldRecommendation struct {
	Field         Field  `json:"field"`
	FieldDisplay  string `json:"field_display"`
	Compatibility int    `json:"compatibility"`
}
