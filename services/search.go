package services

import (
	"sort"
	"strings"

	"rentspace/models"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const (
	// minTokenSimilarity is the levenshtein ratio at which two words count as a match.
	minTokenSimilarity = 0.75
	suggestionCount    = 3
)

// normalizeInput transliterates to ASCII, lowercases and collapses spaces.
func normalizeInput(input string) string {
	input = strings.ToLower(unidecode.Unidecode(strings.TrimSpace(input)))
	return strings.Join(strings.Fields(input), " ")
}

// calculateSimilarity is 1 - distance/maxLen over runes.
func calculateSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)
	return 1.0 - float64(distance)/float64(maxLen)
}

// bestTokenSimilarity returns the best similarity between word and any token.
func bestTokenSimilarity(word string, tokens []string) float64 {
	best := 0.0
	for _, t := range tokens {
		if sim := calculateSimilarity(word, t); sim > best {
			best = sim
		}
	}
	return best
}

// ScoredApartment pairs a search hit with its relevance.
type ScoredApartment struct {
	Apartment models.Apartment
	Score     int
}

// scoreApartment rates how well query matches apt. Location words weigh more
// than title words, which weigh more than description words.
func scoreApartment(query string, apt *models.Apartment) int {
	words := strings.Fields(normalizeInput(query))
	if len(words) == 0 {
		return 0
	}
	location := strings.Fields(normalizeInput(apt.City + " " + apt.Governorate))
	title := strings.Fields(normalizeInput(apt.Title))
	description := normalizeInput(apt.Description)
	descTokens := strings.Fields(description)

	score := 0
	for _, w := range words {
		switch {
		case bestTokenSimilarity(w, location) >= minTokenSimilarity:
			score += 13
		case bestTokenSimilarity(w, title) >= minTokenSimilarity:
			score += 8
		case strings.Contains(description, w) || bestTokenSimilarity(w, descTokens) >= minTokenSimilarity:
			score += 3
		}
	}
	return score
}

// rankApartments keeps the apartments that match query, best first.
// Ties keep the input order.
func rankApartments(query string, apartments []models.Apartment) []ScoredApartment {
	scored := make([]ScoredApartment, 0, len(apartments))
	for i := range apartments {
		if score := scoreApartment(query, &apartments[i]); score > 0 {
			scored = append(scored, ScoredApartment{Apartment: apartments[i], Score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// suggestLocations proposes known city or governorate names close to query.
func suggestLocations(query string, locations []string) []string {
	byNormalized := make(map[string]string, len(locations))
	keywords := make([]string, 0, len(locations))
	for _, loc := range locations {
		n := normalizeInput(loc)
		if n == "" {
			continue
		}
		if _, seen := byNormalized[n]; !seen {
			byNormalized[n] = loc
			keywords = append(keywords, n)
		}
	}
	if len(keywords) == 0 {
		return nil
	}

	matcher := closestmatch.New(keywords, []int{2, 3})
	var out []string
	for _, m := range matcher.ClosestN(normalizeInput(query), suggestionCount) {
		if original, ok := byNormalized[m]; ok && m != "" {
			out = append(out, original)
		}
	}
	return out
}
