package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/ariabot/aria-backend/internal/pkg/llmjson"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/platform/gemini"
)

type Intent string

const (
	IntentCreateLog      Intent = "create_log"
	IntentCreateGoal     Intent = "create_goal"
	IntentCreateReminder Intent = "create_reminder"
	IntentUpdateGoal     Intent = "update_goal"
	IntentGetStatus      Intent = "get_status"
	IntentGetSummary     Intent = "get_summary"
	IntentChatOnly       Intent = "chat"
)

var knownIntents = map[Intent]bool{
	IntentCreateLog:      true,
	IntentCreateGoal:     true,
	IntentCreateReminder: true,
	IntentUpdateGoal:     true,
	IntentGetStatus:      true,
	IntentGetSummary:     true,
	IntentChatOnly:       true,
}

// IntentResult is produced once per inbound message and never persisted
// directly. Degraded marks the safe default taken after a parse or call
// failure, so callers and tests can assert the fallback path explicitly.
type IntentResult struct {
	Intent         Intent
	Entities       map[string]any
	Confidence     float64
	RawText        string
	Degraded       bool
	DegradedReason string
}

type Analyzer struct {
	ai  gemini.Client
	log *logger.Logger
}

func NewAnalyzer(ai gemini.Client, log *logger.Logger) *Analyzer {
	return &Analyzer{ai: ai, log: log.With("service", "IntentAnalyzer")}
}

/// Analyze never fails: any model or parse error degrades to chat-only with
// confidence 1.0 so the enclosing turn always has a usable result.
func (a *Analyzer) Analyze(ctx context.Context, message string, referenceDate time.Time) IntentResult {
	fallback := func(reason string) IntentResult {
		a.log.Warn("Intent analysis degraded to chat", "reason", reason)
		return IntentResult{
			Intent:         IntentChatOnly,
			Entities:       map[string]any{},
			Confidence:     1.0,
			RawText:        message,
			Degraded:       true,
			DegradedReason: reason,
		}
	}

	prompt := buildIntentPrompt(message, referenceDate)

	temp := 0.1
	raw, err := a.ai.Generate(ctx, prompt, gemini.GenerateOptions{
		Temperature:     &temp,
		MaxOutputTokens: 512,
	})
	if err != nil {
		return fallback("model call failed: " + err.Error())
	}

	var decoded struct {
		Intent     string         `json:"intent"`
		Entities   map[string]any `json:"entities"`
		Confidence float64        `json:"confidence"`
	}
	if err := llmjson.Decode(raw, &decoded); err != nil {
		return fallback("unparseable model output")
	}

	intent := Intent(strings.TrimSpace(strings.ToLower(decoded.Intent)))
	if !knownIntents[intent] {
		return fallback("unrecognized intent " + decoded.Intent)
	}

	confidence := decoded.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	entities := decoded.Entities
	if entities == nil {
		entities = map[string]any{}
	}

	a.log.Info("Intent detected", "intent", string(intent), "confidence", confidence)
	return IntentResult{
		Intent:     intent,
		Entities:   entities,
		Confidence: confidence,
		RawText:    message,
	}
}

func buildIntentPrompt(message string, referenceDate time.Time) string {
	dateLine := referenceDate.Format("2006-01-02") + " (" + referenceDate.Weekday().String() + ")"

	return strings.TrimSpace(strings.Join([]string{
		"You classify a user's message for a personal goal assistant.",
		"Today is " + dateLine + ".",
		"",
		"Pick exactly one intent:",
		"- create_log: the user reports something they did or accomplished (\"I practiced\", \"I did\", \"finished\", \"logged\")",
		"- create_goal: the user wants to start a new goal or challenge (\"start a\", \"new goal\", \"challenge to\")",
		"- create_reminder: the user wants to be reminded of a plan (\"remind me\", \"don't let me forget\", \"tomorrow I should\")",
		"- update_goal: the user wants to change an existing goal (\"rename\", \"extend\", \"change my goal\")",
		"- get_status: the user asks how a goal is going (\"how am I doing\", \"progress on\")",
		"- get_summary: the user asks for an overview of everything (\"summary\", \"what are my goals\")",
		"- chat: anything else, including questions, smalltalk, and venting",
		"",
		"Extract entities relevant to the intent:",
		"- goal_keyword: words identifying which goal they mean",
		"- activity: what they did, as a short phrase",
		"- good_thing: a positive moment they mention",
		"- title: the new goal's title",
		"- duration_days: integer number of days",
		"- start_date: YYYY-MM-DD if they name one",
		"- color: a color if they name one",
		"- reminder: the thing to be reminded about",
		"- date: YYYY-MM-DD the message refers to, resolved against today",
		"",
		"Return ONLY JSON: {\"intent\": \"...\", \"entities\": {...}, \"confidence\": 0.0-1.0}",
		"",
		"Examples:",
		`Message: "I practiced guitar for 30 minutes today"`,
		`{"intent": "create_log", "entities": {"goal_keyword": "guitar", "activity": "practiced guitar for 30 minutes"}, "confidence": 0.95}`,
		`Message: "Start a 90-day challenge to learn Python"`,
		`{"intent": "create_goal", "entities": {"title": "Learn Python", "duration_days": 90}, "confidence": 0.95}`,
		`Message: "Remind me to stretch before my run tomorrow"`,
		`{"intent": "create_reminder", "entities": {"goal_keyword": "run", "reminder": "stretch before my run"}, "confidence": 0.9}`,
		`Message: "How is my reading goal going?"`,
		`{"intent": "get_status", "entities": {"goal_keyword": "reading"}, "confidence": 0.9}`,
		`Message: "What should I cook tonight?"`,
		`{"intent": "chat", "entities": {}, "confidence": 0.95}`,
		"",
		"Message: \"" + message + "\"",
	}, "\n"))
}
