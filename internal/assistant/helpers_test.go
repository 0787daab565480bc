package assistant

import (
	"context"
	"fmt"

	"github.com/ariabot/aria-backend/internal/platform/gemini"
	"github.com/ariabot/aria-backend/internal/tracker"
)

type fakeGemini struct {
	generateFn func(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error)
	chatFn     func(ctx context.Context, history []gemini.ChatMessage, opts gemini.GenerateOptions) (string, error)
}

func (f *fakeGemini) Generate(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error) {
	if f.generateFn == nil {
		return "", fmt.Errorf("generate not stubbed")
	}
	return f.generateFn(ctx, prompt, opts)
}

func (f *fakeGemini) Chat(ctx context.Context, history []gemini.ChatMessage, opts gemini.GenerateOptions) (string, error) {
	if f.chatFn == nil {
		return "", fmt.Errorf("chat not stubbed")
	}
	return f.chatFn(ctx, history, opts)
}

// fakeTracker stubs the external goal service. Unstubbed calls fail loudly so
// tests catch unexpected network-shaped activity.
type fakeTracker struct {
	listGoalsFn      func(ctx context.Context, token string) ([]tracker.Goal, error)
	createGoalFn     func(ctx context.Context, token string, in tracker.CreateGoalInput) (*tracker.Goal, error)
	createDailyLogFn func(ctx context.Context, token string, in tracker.DailyLog) (*tracker.DailyLog, error)
}

func (f *fakeTracker) ListGoals(ctx context.Context, token string) ([]tracker.Goal, error) {
	if f.listGoalsFn == nil {
		return nil, fmt.Errorf("ListGoals not stubbed")
	}
	return f.listGoalsFn(ctx, token)
}

func (f *fakeTracker) CreateGoal(ctx context.Context, token string, in tracker.CreateGoalInput) (*tracker.Goal, error) {
	if f.createGoalFn == nil {
		return nil, fmt.Errorf("CreateGoal not stubbed")
	}
	return f.createGoalFn(ctx, token, in)
}

func (f *fakeTracker) UpdateGoal(ctx context.Context, token, goalID string, in tracker.UpdateGoalInput) (*tracker.Goal, error) {
	return nil, fmt.Errorf("UpdateGoal not stubbed")
}

func (f *fakeTracker) ToggleGoal(ctx context.Context, token, goalID string) (*tracker.Goal, error) {
	return nil, fmt.Errorf("ToggleGoal not stubbed")
}

func (f *fakeTracker) CreateDailyLog(ctx context.Context, token string, in tracker.DailyLog) (*tracker.DailyLog, error) {
	if f.createDailyLogFn == nil {
		return nil, fmt.Errorf("CreateDailyLog not stubbed")
	}
	return f.createDailyLogFn(ctx, token, in)
}

func (f *fakeTracker) ListDailyLogs(ctx context.Context, token, goalID string) ([]tracker.DailyLog, error) {
	return nil, fmt.Errorf("ListDailyLogs not stubbed")
}

func (f *fakeTracker) FindGoalByKeyword(ctx context.Context, token, keyword string) (*tracker.Goal, error) {
	goals, err := f.ListGoals(ctx, token)
	if err != nil {
		return nil, err
	}
	return tracker.MatchGoal(goals, keyword), nil
}
