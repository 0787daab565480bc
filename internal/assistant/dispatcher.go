package assistant

import (
	"context"
	"strconv"
	"strings"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/tracker"
)

// Thresholds are the dispatch policy knobs. Dispatch gates routing at all;
// results between Dispatch and Confirmation are a soft zone a caller may
// treat as "needs confirmation"; at or above AutoExecute no confirmation is
// warranted.
type Thresholds struct {
	Dispatch     float64
	Confirmation float64
	AutoExecute  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Dispatch: 0.6, Confirmation: 0.7, AutoExecute: 0.9}
}

type Dispatcher struct {
	logs       *CreateLogExecutor
	goals      *CreateGoalExecutor
	reminders  *CreateReminderExecutor
	thresholds Thresholds
	log        *logger.Logger
}

func NewDispatcher(tc tracker.Client, thresholds Thresholds, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		logs:       NewCreateLogExecutor(tc, log),
		goals:      NewCreateGoalExecutor(tc, log),
		reminders:  NewCreateReminderExecutor(tc, log),
		thresholds: thresholds,
		log:        log.With("service", "ActionDispatcher"),
	}
}

// Dispatch routes an intent result to its executor. Returns nil when the
// message should be handled as plain chat (chat intent, low confidence, or a
// non-actionable intent). Executor failures never propagate as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, res IntentResult, cred Credential) (out *ActionResult) {
	if res.Intent == IntentChatOnly || res.Confidence <= d.thresholds.Dispatch {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Executor panic", "intent", string(res.Intent), "panic", r)
			out = &ActionResult{Success: false, Message: "Failed to execute action"}
		}
	}()

	var (
		result *ActionResult
		err    error
	)
	switch res.Intent {
	case IntentCreateLog:
		result, err = d.logs.Execute(ctx, logParamsFrom(res.Entities), cred)
	case IntentCreateGoal:
		result, err = d.goals.Execute(ctx, goalParamsFrom(res.Entities), cred)
	case IntentCreateReminder:
		result, err = d.reminders.Execute(ctx, reminderParamsFrom(res.Entities), cred)
	default:
		// update_goal / get_status / get_summary are answered conversationally
		// with a live goal snapshot; there is nothing to execute.
		return nil
	}
	if err != nil {
		d.log.Error("Executor failed", "intent", string(res.Intent), "error", err)
		return &ActionResult{Success: false, Message: "Failed to execute action"}
	}

	if result != nil && result.Success && res.Confidence < d.thresholds.AutoExecute {
		// Executed, but flag for callers that want an explicit confirm step in
		// the soft zone.
		if res.Confidence < d.thresholds.Confirmation {
			result.NeedsConfirmation = true
		}
	}
	return result
}

func logParamsFrom(entities map[string]any) LogParams {
	return LogParams{
		GoalKeyword: entityString(entities, "goal_keyword"),
		Activity:    entityString(entities, "activity"),
		GoodThing:   entityString(entities, "good_thing"),
		Date:        entityString(entities, "date"),
	}
}

func goalParamsFrom(entities map[string]any) GoalParams {
	return GoalParams{
		Title:        entityString(entities, "title"),
		Description:  entityString(entities, "description"),
		DurationDays: entityInt(entities, "duration_days"),
		StartDate:    entityString(entities, "start_date"),
		Color:        entityString(entities, "color"),
	}
}

func reminderParamsFrom(entities map[string]any) ReminderParams {
	return ReminderParams{
		GoalKeyword: entityString(entities, "goal_keyword"),
		Reminder:    entityString(entities, "reminder"),
		Date:        entityString(entities, "date"),
	}
}

func entityString(entities map[string]any, key string) string {
	if entities == nil {
		return ""
	}
	if v, ok := entities[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// entityInt tolerates the number representations JSON decoding produces.
func entityInt(entities map[string]any, key string) int {
	if entities == nil {
		return 0
	}
	switch v := entities[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
