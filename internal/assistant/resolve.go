package assistant

import (
	"context"
	"strings"

	"github.com/ariabot/aria-backend/internal/tracker"
)

// resolveGoal implements the shared "which goal" algorithm. The returned
// ActionResult is non-nil when resolution could not complete and the caller
// should surface it as-is (needs-selection or a guidance message).
//
// fallbackFirst selects the reminder behavior: with several active goals and
// no keyword, reminders take the first active goal where logs ask the user.
func resolveGoal(ctx context.Context, tc tracker.Client, cred Credential, keyword string, fallbackFirst bool) (*tracker.Goal, *ActionResult, error) {
	goals, err := tc.ListGoals(ctx, cred.TrackerToken)
	if err != nil {
		return nil, nil, err
	}

	active := make([]tracker.Goal, 0, len(goals))
	for _, g := range goals {
		if g.IsActive {
			active = append(active, g)
		}
	}

	if strings.TrimSpace(keyword) != "" {
		if g := tracker.MatchGoal(goals, keyword); g != nil {
			return g, nil, nil
		}
		return nil, &ActionResult{
			Success:        false,
			NeedsSelection: true,
			Message:        "I couldn't find a goal matching \"" + keyword + "\". Which one did you mean?",
			Candidates:     choicesFrom(active),
		}, nil
	}

	switch len(active) {
	case 0:
		return nil, &ActionResult{
			Success: false,
			Message: "You don't have any active goals yet. Want to create one first?",
		}, nil
	case 1:
		return &active[0], nil, nil
	default:
		if fallbackFirst {
			return &active[0], nil, nil
		}
		return nil, &ActionResult{
			Success:        false,
			NeedsSelection: true,
			Message:        "You have several active goals. Which one is this for?",
			Candidates:     choicesFrom(active),
		}, nil
	}
}

func choicesFrom(goals []tracker.Goal) []GoalChoice {
	out := make([]GoalChoice, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalChoice{ID: g.ID, Title: g.Title, Progress: g.Progress})
	}
	return out
}
