package services

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

type fakeTracker struct {
	goals      []tracker.Goal
	goalsErr   error
	loggedDays []tracker.DailyLog
}

func (f *fakeTracker) ListGoals(ctx context.Context, token string) ([]tracker.Goal, error) {
	if f.goalsErr != nil {
		return nil, f.goalsErr
	}
	return f.goals, nil
}

func (f *fakeTracker) CreateGoal(ctx context.Context, token string, in tracker.CreateGoalInput) (*tracker.Goal, error) {
	g := tracker.Goal{ID: fmt.Sprintf("g%d", len(f.goals)+1), Title: in.Title, IsActive: true}
	f.goals = append(f.goals, g)
	return &g, nil
}

func (f *fakeTracker) UpdateGoal(ctx context.Context, token, goalID string, in tracker.UpdateGoalInput) (*tracker.Goal, error) {
	return nil, fmt.Errorf("UpdateGoal not stubbed")
}

func (f *fakeTracker) ToggleGoal(ctx context.Context, token, goalID string) (*tracker.Goal, error) {
	return nil, fmt.Errorf("ToggleGoal not stubbed")
}

func (f *fakeTracker) CreateDailyLog(ctx context.Context, token string, in tracker.DailyLog) (*tracker.DailyLog, error) {
	f.loggedDays = append(f.loggedDays, in)
	return &in, nil
}

func (f *fakeTracker) ListDailyLogs(ctx context.Context, token, goalID string) ([]tracker.DailyLog, error) {
	return f.loggedDays, nil
}

func (f *fakeTracker) FindGoalByKeyword(ctx context.Context, token, keyword string) (*tracker.Goal, error) {
	goals, err := f.ListGoals(ctx, token)
	if err != nil {
		return nil, err
	}
	return tracker.MatchGoal(goals, keyword), nil
}
