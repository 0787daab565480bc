package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/platform/gemini"
)

func testAnalyzer(generateFn func(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error)) *Analyzer {
	return NewAnalyzer(&fakeGemini{generateFn: generateFn}, logger.NewNop())
}

func TestAnalyze_ParsesFencedOutput(t *testing.T) {
	a := testAnalyzer(func(_ context.Context, _ string, _ gemini.GenerateOptions) (string, error) {
		return "```json\n{\"intent\": \"create_log\", \"entities\": {\"goal_keyword\": \"guitar\", \"activity\": \"practiced guitar\"}, \"confidence\": 0.95}\n```", nil
	})

	res := a.Analyze(context.Background(), "I practiced guitar today", time.Now())
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
	if res.Intent != IntentCreateLog {
		t.Fatalf("intent = %q, want create_log", res.Intent)
	}
	if res.Confidence != 0.95 {
		t.Fatalf("confidence = %v, want 0.95", res.Confidence)
	}
	if res.Entities["goal_keyword"] != "guitar" {
		t.Fatalf("entities = %+v", res.Entities)
	}
}

func TestAnalyze_ModelFailureDegradesToChat(t *testing.T) {
	a := testAnalyzer(func(_ context.Context, _ string, _ gemini.GenerateOptions) (string, error) {
		return "", fmt.Errorf("upstream 503")
	})

	res := a.Analyze(context.Background(), "hello there", time.Now())
	if res.Intent != IntentChatOnly {
		t.Fatalf("intent = %q, want chat", res.Intent)
	}
	if res.Confidence != 1.0 {
		t.Fatalf("degraded confidence = %v, want 1.0", res.Confidence)
	}
	if !res.Degraded {
		t.Fatal("expected Degraded to be set")
	}
	if res.RawText != "hello there" {
		t.Fatalf("raw text = %q", res.RawText)
	}
}

func TestAnalyze_MalformedOutputDegradesToChat(t *testing.T) {
	a := testAnalyzer(func(_ context.Context, _ string, _ gemini.GenerateOptions) (string, error) {
		return "I think the user wants to log something.", nil
	})

	res := a.Analyze(context.Background(), "did my run", time.Now())
	if res.Intent != IntentChatOnly || res.Confidence != 1.0 || !res.Degraded {
		t.Fatalf("expected chat/1.0/degraded, got %+v", res)
	}
}

func TestAnalyze_UnknownIntentDegradesToChat(t *testing.T) {
	a := testAnalyzer(func(_ context.Context, _ string, _ gemini.GenerateOptions) (string, error) {
		return `{"intent": "launch_rocket", "entities": {}, "confidence": 0.99}`, nil
	})

	res := a.Analyze(context.Background(), "do the thing", time.Now())
	if res.Intent != IntentChatOnly || !res.Degraded {
		t.Fatalf("expected degraded chat for unknown intent, got %+v", res)
	}
}

func TestAnalyze_ClampsConfidence(t *testing.T) {
	a := testAnalyzer(func(_ context.Context, _ string, _ gemini.GenerateOptions) (string, error) {
		return `{"intent": "get_status", "entities": {}, "confidence": 3.5}`, nil
	})

	res := a.Analyze(context.Background(), "how am I doing", time.Now())
	if res.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want clamp to 1.0", res.Confidence)
	}
	if res.Degraded {
		t.Fatal("clamping is not a degraded outcome")
	}
}

func TestBuildIntentPrompt_CarriesReferenceDate(t *testing.T) {
	ref := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	prompt := buildIntentPrompt("remind me tomorrow", ref)
	if !strings.Contains(prompt, "2026-03-14 (Saturday)") {
		t.Fatalf("prompt missing reference date line:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"remind me tomorrow"`) {
		t.Fatal("prompt missing user message")
	}
}
