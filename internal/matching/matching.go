// Package matching reconciles free-text names returned by geocoding providers
// against a fixed, ordered list of allowed values.
package matching

import "unicode"

// Score returns the length, in runes, of the case-insensitive common prefix of a and b.
// Matching stops at the first differing rune, so characters after a gap never count.
func Score(a, b string) int {
	left, right := []rune(a), []rune(b)
	limit := min(len(left), len(right))

	score := 0
	for i := range limit {
		if unicode.ToLower(left[i]) != unicode.ToLower(right[i]) {
			break
		}
		score++
	}

	return score
}

// Select picks the candidate with the highest Score against target.
//
// The first candidate reaching a given score wins ties. When no candidate scores above
// zero the first one is returned. The boolean is false only when candidates is empty.
func Select(target string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	best, highest := candidates[0], 0
	for _, candidate := range candidates {
		if score := Score(target, candidate); score > highest {
			highest = score
			best = candidate
		}
	}

	return best, true
}

// Ranked is a candidate paired with its score against a target.
type Ranked struct {
	Candidate string `json:"candidate"`
	Score     int    `json:"score"`
}

// Rank scores every candidate against target, keeping the input order.
func Rank(target string, candidates []string) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, Ranked{Candidate: candidate, Score: Score(target, candidate)})
	}

	return ranked
}
