package assistant

import "math/rand"

// goalPalette is the fixed set of colors assigned to goals created without an
// explicit color. Cosmetic only.
var goalPalette = []string{
	"#F87171", "#FB923C", "#FBBF24", "#A3E635", "#34D399",
	"#22D3EE", "#60A5FA", "#A78BFA", "#F472B6", "#94A3B8",
}

func randomGoalColor() string {
	return goalPalette[rand.Intn(len(goalPalette))]
}

// GoalPalette exposes the palette for validation and tests.
func GoalPalette() []string {
	out := make([]string, len(goalPalette))
	copy(out, goalPalette)
	return out
}
