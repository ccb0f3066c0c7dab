// Package search implements the multi-stage catalog search: direct substring
// matching, keyword expansion when the direct pass comes up empty, generative
// re-ranking and facet aggregation.
package search

import (
	"sort"
	"strings"
)

// domainKeywords maps a study domain to related query keywords. When a query
// token matches a keyword, the domain name itself becomes a search term for
// universities.
var domainKeywords = map[string][]string{
	"informatique": {"programmation", "développement", "logiciel", "web", "données", "cybersécurité", "jeu", "gaming", "intelligence artificielle", "ia", "ordinateur"},
	"business":     {"commerce", "gestion", "marketing", "finance", "économie", "entrepreneuriat", "business", "management", "vente", "startup"},
	"ingénierie":   {"mécanique", "électrique", "civil", "industriel", "robotique", "construction", "automobile", "aéronautique", "énergie"},
	"santé":        {"médecine", "pharmacie", "infirmier", "biologie", "psychologie", "sport", "nutrition", "santé", "médical"},
	"arts":         {"design", "musique", "théâtre", "cinéma", "communication", "art", "mode", "création", "audiovisuel", "média"},
	"sciences":     {"mathématiques", "physique", "chimie", "biologie", "environnement", "recherche", "laboratoire", "expérimentation"},
	"social":       {"droit", "sociologie", "psychologie", "éducation", "enseignement", "social", "humanitaire", "politique"},
	"langues":      {"anglais", "français", "espagnol", "allemand", "chinois", "japonais", "traduction", "interprétation"},
	"agriculture":  {"agriculture", "agronomie", "environnement", "écologie", "développement durable", "nature"},
}

// careerFields maps a career to the study fields that lead to it. When a
// query token matches a career, every field becomes a search term for
// programs.
var careerFields = map[string][]string{
	"développeur":    {"informatique", "programmation", "développement web", "logiciel", "application", "jeu vidéo"},
	"médecin":        {"médecine", "santé", "biologie", "anatomie", "clinique"},
	"avocat":         {"droit", "juridique", "justice", "légal", "criminologie"},
	"ingénieur":      {"ingénierie", "mécanique", "électrique", "civil", "robotique"},
	"artiste":        {"art", "design", "création", "musique", "théâtre", "cinéma"},
	"entrepreneur":   {"business", "gestion", "commerce", "startup", "innovation"},
	"chercheur":      {"sciences", "recherche", "laboratoire", "innovation", "développement"},
	"professeur":     {"éducation", "enseignement", "pédagogie", "formation"},
	"manager":        {"management", "gestion", "leadership", "administration"},
	"designer":       {"design", "création", "ux", "ui", "graphisme"},
	"data scientist": {"données", "statistiques", "analyse", "big data", "machine learning"},
	"architecte":     {"architecture", "construction", "design", "urbanisme"},
	"journaliste":    {"communication", "média", "journalisme", "rédaction"},
	"marketeur":      {"marketing", "communication", "digital", "e-commerce"},
	"psychologue":    {"psychologie", "santé", "thérapie", "comportement"},
}

// ExpandUniversityKeywords derives university search terms from a query.
// Each query token is compared against the domain keyword lists: an exact
// keyword match or a keyword contained in the token activates that domain.
// The original query is always kept as a term, so expansion can only widen
// the result set. Output is deduplicated and sorted for determinism, with
// the query last.
func ExpandUniversityKeywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	matched := make(map[string]bool)

	for _, word := range words {
		for domain, keywords := range domainKeywords {
			if tokenMatches(word, keywords) {
				matched[domain] = true
			}
		}
	}
	return appendQuery(matched, query)
}

// ExpandProgramKeywords derives program search terms from a query.
// A token activates a career when it appears inside the career name or when
// one of the career's fields is contained in the token; all of the career's
// fields then become terms. The original query is always kept as a term.
func ExpandProgramKeywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	matched := make(map[string]bool)

	for _, word := range words {
		for career, fields := range careerFields {
			if strings.Contains(career, word) || anyContainedIn(fields, word) {
				for _, field := range fields {
					matched[field] = true
				}
			}
		}
	}
	return appendQuery(matched, query)
}

// tokenMatches reports whether the token equals a keyword or contains one.
func tokenMatches(token string, keywords []string) bool {
	for _, kw := range keywords {
		if token == kw || strings.Contains(token, kw) {
			return true
		}
	}
	return false
}

func anyContainedIn(fields []string, token string) bool {
	for _, f := range fields {
		if strings.Contains(token, f) {
			return true
		}
	}
	return false
}

func appendQuery(matched map[string]bool, query string) []string {
	terms := make([]string, 0, len(matched)+1)
	for term := range matched {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return append(terms, query)
}
