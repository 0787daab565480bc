package assistant

// Credential carries the caller-supplied auth for the external tracker.
type Credential struct {
	TrackerToken string
}

// GoalChoice is one candidate offered back to the user when goal resolution
// is ambiguous.
type GoalChoice struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Progress float64 `json:"progress"`
}

// ActionResult is the structured, never-an-exception outcome of an executor.
// NeedsSelection distinguishes "pick a goal" from a plain failure so the
// caller can render candidates instead of an apology.
type ActionResult struct {
	Success           bool           `json:"success"`
	Message           string         `json:"message"`
	Data              map[string]any `json:"data,omitempty"`
	NeedsSelection    bool           `json:"needs_selection,omitempty"`
	Candidates        []GoalChoice   `json:"candidates,omitempty"`
	NeedsConfirmation bool           `json:"needs_confirmation,omitempty"`
}

type LogParams struct {
	GoalKeyword string
	Activity    string
	GoodThing   string
	Date        string
}

type GoalParams struct {
	Title        string
	Description  string
	DurationDays int
	StartDate    string
	Color        string
}

type ReminderParams struct {
	GoalKeyword string
	Reminder    string
	Date        string
}
