package domain

// ClampScore bounds an importance score to [1,10].
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// CategoryForScore derives the category from the clamped score. Classifier
// output and post-feedback updates both go through this so the two fields can
// never disagree.
func CategoryForScore(score int) string {
	score = ClampScore(score)
	switch {
	case score >= 8:
		return CategoryHigh
	case score >= 5:
		return CategoryMedium
	default:
		return CategoryLow
	}
}
