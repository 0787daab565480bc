package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/tracker"
)

func testDispatcher(tc tracker.Client) *Dispatcher {
	return NewDispatcher(tc, DefaultThresholds(), logger.NewNop())
}

func TestDispatch_ChatIntentReturnsNil(t *testing.T) {
	d := testDispatcher(&fakeTracker{})
	res := d.Dispatch(context.Background(), IntentResult{Intent: IntentChatOnly, Confidence: 1.0}, Credential{})
	if res != nil {
		t.Fatalf("expected nil for chat intent, got %+v", res)
	}
}

func TestDispatch_LowConfidenceReturnsNil(t *testing.T) {
	// The fake would fail loudly if an executor ran.
	d := testDispatcher(&fakeTracker{})
	res := d.Dispatch(context.Background(), IntentResult{
		Intent:     IntentCreateLog,
		Entities:   map[string]any{"activity": "ran"},
		Confidence: 0.5,
	}, Credential{})
	if res != nil {
		t.Fatalf("expected nil below dispatch threshold, got %+v", res)
	}
}

func TestDispatch_BoundaryConfidenceDoesNotDispatch(t *testing.T) {
	d := testDispatcher(&fakeTracker{})
	res := d.Dispatch(context.Background(), IntentResult{
		Intent:     IntentCreateGoal,
		Confidence: 0.6,
	}, Credential{})
	if res != nil {
		t.Fatalf("confidence exactly at threshold must not dispatch, got %+v", res)
	}
}

func TestDispatch_NonActionableIntentsReturnNil(t *testing.T) {
	d := testDispatcher(&fakeTracker{})
	for _, intent := range []Intent{IntentUpdateGoal, IntentGetStatus, IntentGetSummary} {
		res := d.Dispatch(context.Background(), IntentResult{Intent: intent, Confidence: 0.95}, Credential{})
		if res != nil {
			t.Fatalf("%s should be conversational, got %+v", intent, res)
		}
	}
}

func TestDispatch_ExecutorErrorBecomesFailureResult(t *testing.T) {
	tc := &fakeTracker{
		listGoalsFn: func(_ context.Context, _ string) ([]tracker.Goal, error) {
			return nil, fmt.Errorf("tracker unreachable")
		},
	}
	d := testDispatcher(tc)
	res := d.Dispatch(context.Background(), IntentResult{
		Intent:     IntentCreateLog,
		Entities:   map[string]any{"goal_keyword": "guitar", "activity": "practiced"},
		Confidence: 0.95,
	}, Credential{})
	if res == nil {
		t.Fatal("expected a failure result, got nil")
	}
	if res.Success {
		t.Fatal("expected Success=false")
	}
	if res.Message != "Failed to execute action" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestDispatch_SoftZoneSetsNeedsConfirmation(t *testing.T) {
	goal := tracker.Goal{ID: "g1", Title: "Guitar Practice", IsActive: true}
	tc := &fakeTracker{
		listGoalsFn: func(_ context.Context, _ string) ([]tracker.Goal, error) {
			return []tracker.Goal{goal}, nil
		},
		createDailyLogFn: func(_ context.Context, _ string, in tracker.DailyLog) (*tracker.DailyLog, error) {
			return &in, nil
		},
	}
	d := testDispatcher(tc)

	// 0.6 < confidence < 0.7: executed but flagged for confirmation.
	res := d.Dispatch(context.Background(), IntentResult{
		Intent:     IntentCreateLog,
		Entities:   map[string]any{"goal_keyword": "guitar", "activity": "practiced"},
		Confidence: 0.65,
	}, Credential{TrackerToken: "tok"})
	if res == nil || !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !res.NeedsConfirmation {
		t.Fatal("expected NeedsConfirmation in the soft zone")
	}

	// >= 0.9: no confirmation needed.
	res = d.Dispatch(context.Background(), IntentResult{
		Intent:     IntentCreateLog,
		Entities:   map[string]any{"goal_keyword": "guitar", "activity": "practiced"},
		Confidence: 0.95,
	}, Credential{TrackerToken: "tok"})
	if res == nil || !res.Success || res.NeedsConfirmation {
		t.Fatalf("expected clean auto-execute, got %+v", res)
	}
}

func TestEntityInt_ToleratesJSONNumberShapes(t *testing.T) {
	cases := []struct {
		in   map[string]any
		want int
	}{
		{map[string]any{"duration_days": float64(90)}, 90},
		{map[string]any{"duration_days": 30}, 30},
		{map[string]any{"duration_days": "365"}, 365},
		{map[string]any{"duration_days": "soon"}, 0},
		{map[string]any{}, 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := entityInt(tc.in, "duration_days"); got != tc.want {
			t.Errorf("entityInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
