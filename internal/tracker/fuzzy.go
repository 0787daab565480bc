package tracker

import "strings"

// MatchGoal resolves a keyword to a goal in two phases: case-insensitive
// substring containment in either direction (first match wins, list order
// preserved), then best token-set Jaccard similarity accepted above 0.5.
func MatchGoal(goals []Goal, keyword string) *Goal {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}

	for i := range goals {
		title := strings.ToLower(strings.TrimSpace(goals[i].Title))
		if title == "" {
			continue
		}
		if strings.Contains(title, keyword) || strings.Contains(keyword, title) {
			return &goals[i]
		}
	}

	var best *Goal
	bestScore := 0.0
	for i := range goals {
		score := JaccardSimilarity(keyword, goals[i].Title)
		if score > bestScore {
			bestScore = score
			best = &goals[i]
		}
	}
	if bestScore > 0.5 {
		return best
	}
	return nil
}

// JaccardSimilarity is |intersection| / |union| over lowercased whitespace
// tokens. Symmetric by construction.
func JaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		out[tok] = struct{}{}
	}
	return out
}
