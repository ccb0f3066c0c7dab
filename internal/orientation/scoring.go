package orientation

import "sort"

// scoredFields lists every field in the taxonomy. Only the first five can
// receive weight from options today; the rest score zero and are filtered out.
var scoredFields = []Field{
	FieldEngineering,
	FieldScience,
	FieldBusiness,
	FieldArts,
	FieldSocial,
	FieldLaw,
	FieldMedicine,
	FieldEducation,
}

// ScoreAnswers computes field recommendations from a set of answers.
// Each selected option adds its weight vector to the field totals. Totals are
// normalized against the highest total and expressed as a truncated
// percentage. Fields that received no weight are omitted. Options that cannot
// be resolved are skipped.
//
// Results are ordered by compatibility descending; ties break on field name
// ascending so the output is deterministic.
func ScoreAnswers(answers map[string]string, lookup func(optionID string) (*Option, bool)) []FieldRecommendation {
	scores := make(map[Field]int, len(scoredFields))
	for _, f := range scoredFields {
		scores[f] = 0
	}

	for _, optionID := range answers {
		opt, ok := lookup(optionID)
		if !ok {
			continue
		}
		scores[FieldEngineering] += opt.EngineeringWeight
		scores[FieldScience] += opt.ScienceWeight
		scores[FieldBusiness] += opt.BusinessWeight
		scores[FieldArts] += opt.ArtsWeight
		scores[FieldSocial] += opt.SocialWeight
	}

	maxScore := 0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	divisor := maxScore
	if divisor == 0 {
		divisor = 1
	}

	var recs []FieldRecommendation
	for _, f := range scoredFields {
		score := scores[f]
		if score <= 0 {
			continue
		}
		recs = append(recs, FieldRecommendation{
			Field:         f,
			FieldDisplay:  f.Label(),
			Compatibility: score * 100 / divisor,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Compatibility != recs[j].Compatibility {
			return recs[i].Compatibility > recs[j].Compatibility
		}
		return recs[i].Field < recs[j].Field
	})
	return recs
}
