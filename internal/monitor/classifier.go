package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/llmjson"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/platform/gemini"
	"github.com/ariabot/aria-backend/internal/repos"
)

// InboundMessage is the classifier's view of a fetched item.
type InboundMessage struct {
	Sender  string
	Subject string
	Content string
	Source  string
}

// Classification always satisfies: score in [1,10] and category derived from
// the score band, so the two can never disagree. Degraded marks the medium
// default taken after a call or parse failure.
type Classification struct {
	Score     int
	Category  string
	Reasoning string
	Degraded  bool
}

type Classifier struct {
	ai       gemini.Client
	feedback repos.FeedbackRepo
	log      *logger.Logger
}

func NewClassifier(ai gemini.Client, feedback repos.FeedbackRepo, log *logger.Logger) *Classifier {
	return &Classifier{ai: ai, feedback: feedback, log: log.With("service", "ImportanceClassifier")}
}

const feedbackPromptLimit = 3

// Classify never throws; any failure degrades to a medium default.
func (c *Classifier) Classify(ctx context.Context, userID uuid.UUID, msg InboundMessage) Classification {
	fallback := func(reason string) Classification {
		c.log.Warn("Classification degraded to medium default", "reason", reason)
		return Classification{
			Score:     5,
			Category:  domain.CategoryMedium,
			Reasoning: "Could not classify this message; defaulted to medium importance.",
			Degraded:  true,
		}
	}

	var corrections []repos.SenderFeedback
	if c.feedback != nil {
		rows, err := c.feedback.ListRecentBySender(dbctx.Context{Ctx: ctx}, userID, msg.Sender, feedbackPromptLimit)
		if err != nil {
			c.log.Warn("Feedback lookup failed; classifying without history", "error", err)
		} else {
			corrections = rows
		}
	}

	prompt := buildClassifierPrompt(msg, corrections)

	temp := 0.2
	raw, err := c.ai.Generate(ctx, prompt, gemini.GenerateOptions{
		Temperature:     &temp,
		MaxOutputTokens: 512,
	})
	if err != nil {
		return fallback("model call failed: " + err.Error())
	}

	var decoded struct {
		Score     float64 `json:"score"`
		Category  string  `json:"category"`
		Reasoning string  `json:"reasoning"`
	}
	if err := llmjson.Decode(raw, &decoded); err != nil {
		return fallback("unparseable model output")
	}

	score := domain.ClampScore(int(decoded.Score))
	category := strings.TrimSpace(strings.ToLower(decoded.Category))
	if category != domain.CategoryHigh && category != domain.CategoryMedium && category != domain.CategoryLow {
		category = domain.CategoryForScore(score)
	}
	// Category must agree with the clamped score even when the model supplied
	// one.
	if category != domain.CategoryForScore(score) {
		category = domain.CategoryForScore(score)
	}

	return Classification{
		Score:     score,
		Category:  category,
		Reasoning: strings.TrimSpace(decoded.Reasoning),
	}
}

func buildClassifierPrompt(msg InboundMessage, corrections []repos.SenderFeedback) string {
	lines := []string{
		"Score the importance of an incoming message for a busy user, 1-10.",
		"",
		"Bands:",
		"- 8-10 high: urgent, consequential, or from someone important to the user",
		"- 5-7 medium: relevant but can wait",
		"- 1-4 low: promotional, automated, or ignorable",
		"",
		"Signals to weigh:",
		"- urgency language (deadlines, \"asap\", \"action required\")",
		"- sender importance (boss, family, close contacts vs. bulk senders)",
		"- content type (personal note vs. newsletter vs. notification)",
		"- whether the user is addressed directly",
	}

	if len(corrections) > 0 {
		lines = append(lines, "", "Learning from past feedback on this sender:")
		for _, fb := range corrections {
			line := fmt.Sprintf("- messages from %s were %s from %d to %d",
				fb.Sender, direction(fb.OriginalScore, fb.CorrectedScore), fb.OriginalScore, fb.CorrectedScore)
			if fb.FeedbackText != "" {
				line += ": \"" + fb.FeedbackText + "\""
			}
			lines = append(lines, line)
		}
	}

	lines = append(lines,
		"",
		"SOURCE: "+msg.Source,
		"SENDER: "+msg.Sender,
	)
	if msg.Subject != "" {
		lines = append(lines, "SUBJECT: "+msg.Subject)
	}
	lines = append(lines,
		"CONTENT:",
		msg.Content,
		"",
		`Return ONLY JSON: {"score": 1-10, "category": "high"|"medium"|"low", "reasoning": "..."}`,
	)

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func direction(from, to int) string {
	if to >= from {
		return "increased"
	}
	return "decreased"
}
