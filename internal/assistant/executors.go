package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/tracker"
)

const (
	minGoalDurationDays = 1
	maxGoalDurationDays = 3650
)

type CreateLogExecutor struct {
	tracker tracker.Client
	log     *logger.Logger
}

func NewCreateLogExecutor(tc tracker.Client, log *logger.Logger) *CreateLogExecutor {
	return &CreateLogExecutor{tracker: tc, log: log.With("executor", "CreateLog")}
}

func (e *CreateLogExecutor) Execute(ctx context.Context, params LogParams, cred Credential) (*ActionResult, error) {
	goal, halt, err := resolveGoal(ctx, e.tracker, cred, params.GoalKeyword, false)
	if err != nil {
		return nil, err
	}
	if halt != nil {
		return halt, nil
	}

	logDate := params.Date
	if logDate == "" {
		logDate = time.Now().Format("2006-01-02")
	}

	entry := tracker.DailyLog{
		GoalID:        goal.ID,
		LogDate:       logDate,
		CorrelationID: uuid.NewString(),
	}
	// One activity and one good thing per call at most.
	if params.Activity != "" {
		entry.Activities = []string{params.Activity}
	}
	if params.GoodThing != "" {
		entry.GoodThings = []string{params.GoodThing}
	}

	if _, err := e.tracker.CreateDailyLog(ctx, cred.TrackerToken, entry); err != nil {
		return &ActionResult{
			Success: false,
			Message: fmt.Sprintf("I couldn't log that against %q: %s", goal.Title, err.Error()),
		}, nil
	}

	return &ActionResult{
		Success: true,
		Message: fmt.Sprintf("Logged it against %q. Nice work!", goal.Title),
		Data:    map[string]any{"goal_id": goal.ID, "goal_title": goal.Title, "log_date": logDate},
	}, nil
}

type CreateGoalExecutor struct {
	tracker tracker.Client
	log     *logger.Logger
}

func NewCreateGoalExecutor(tc tracker.Client, log *logger.Logger) *CreateGoalExecutor {
	return &CreateGoalExecutor{tracker: tc, log: log.With("executor", "CreateGoal")}
}

func (e *CreateGoalExecutor) Execute(ctx context.Context, params GoalParams, cred Credential) (*ActionResult, error) {
	if params.Title == "" {
		return &ActionResult{
			Success: false,
			Message: "What should the goal be called?",
		}, nil
	}
	if params.DurationDays < minGoalDurationDays || params.DurationDays > maxGoalDurationDays {
		return &ActionResult{
			Success: false,
			Message: fmt.Sprintf("A goal needs a duration between %d and %d days; %d doesn't work.",
				minGoalDurationDays, maxGoalDurationDays, params.DurationDays),
		}, nil
	}

	startDate := params.StartDate
	if startDate == "" {
		startDate = time.Now().Format("2006-01-02")
	}
	color := params.Color
	if color == "" {
		color = randomGoalColor()
	}

	goal, err := e.tracker.CreateGoal(ctx, cred.TrackerToken, tracker.CreateGoalInput{
		Title:        params.Title,
		Description:  params.Description,
		StartDate:    startDate,
		DurationDays: params.DurationDays,
		Color:        color,
	})
	if err != nil {
		return &ActionResult{
			Success: false,
			Message: fmt.Sprintf("I couldn't create the goal %q: %s", params.Title, err.Error()),
		}, nil
	}

	return &ActionResult{
		Success: true,
		Message: fmt.Sprintf("Created %q: %d days starting %s. Let's go!", goal.Title, params.DurationDays, startDate),
		Data:    map[string]any{"goal_id": goal.ID, "goal_title": goal.Title, "color": color},
	}, nil
}

type CreateReminderExecutor struct {
	tracker tracker.Client
	log     *logger.Logger
}

func NewCreateReminderExecutor(tc tracker.Client, log *logger.Logger) *CreateReminderExecutor {
	return &CreateReminderExecutor{tracker: tc, log: log.With("executor", "CreateReminder")}
}

func (e *CreateReminderExecutor) Execute(ctx context.Context, params ReminderParams, cred Credential) (*ActionResult, error) {
	if params.Reminder == "" {
		return &ActionResult{
			Success: false,
			Message: "What should I remind you about?",
		}, nil
	}

	// Unlike logs, a reminder with no keyword and several active goals takes
	// the first active goal rather than asking: a reminder always needs *a*
	// goal, a log needs the *right* goal.
	goal, halt, err := resolveGoal(ctx, e.tracker, cred, params.GoalKeyword, true)
	if err != nil {
		return nil, err
	}
	if halt != nil {
		return halt, nil
	}

	entry := tracker.DailyLog{
		GoalID:        goal.ID,
		LogDate:       time.Now().Format("2006-01-02"),
		FuturePlans:   []string{params.Reminder},
		CorrelationID: uuid.NewString(),
	}
	if _, err := e.tracker.CreateDailyLog(ctx, cred.TrackerToken, entry); err != nil {
		return &ActionResult{
			Success: false,
			Message: fmt.Sprintf("I couldn't save that reminder on %q: %s", goal.Title, err.Error()),
		}, nil
	}

	return &ActionResult{
		Success: true,
		Message: fmt.Sprintf("I'll keep %q in your plans for %q.", params.Reminder, goal.Title),
		Data:    map[string]any{"goal_id": goal.ID, "goal_title": goal.Title},
	}, nil
}
