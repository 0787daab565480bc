package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/platform/gemini"
	"github.com/ariabot/aria-backend/internal/tracker"
)

// ComposeInput is everything the composer folds into one conversational
// reply: the new message, session history, stored user context, the action
// outcome (if any), and a goal snapshot for status/summary questions.
type ComposeInput struct {
	Message      string
	History      []*domain.ConversationMessage
	UserContext  *domain.UserContext
	ActionResult *ActionResult
	Goals        []tracker.Goal
}

type Composer struct {
	ai  gemini.Client
	log *logger.Logger
}

func NewComposer(ai gemini.Client, log *logger.Logger) *Composer {
	return &Composer{ai: ai, log: log.With("service", "ChatComposer")}
}

const composerFallback = "Sorry, I'm having trouble putting a reply together right now. Mind trying again?"

// Compose returns the assistant's reply. It degrades to a canned apology on
// model failure; a chat turn never errors out of this layer.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) string {
	history := make([]gemini.ChatMessage, 0, len(in.History)+2)
	history = append(history, gemini.ChatMessage{Role: "user", Content: c.systemPreamble(in)})
	history = append(history, gemini.ChatMessage{Role: "model", Content: "Understood."})

	for _, m := range in.History {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		history = append(history, gemini.ChatMessage{Role: role, Content: m.Content})
	}
	history = append(history, gemini.ChatMessage{Role: "user", Content: in.Message})

	temp := 0.7
	reply, err := c.ai.Chat(ctx, history, gemini.GenerateOptions{
		Temperature:     &temp,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		c.log.Warn("Compose degraded to fallback", "error", err)
		return composerFallback
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return composerFallback
	}
	return reply
}

func (c *Composer) systemPreamble(in ComposeInput) string {
	lines := []string{
		"You are Aria, a warm, concise personal assistant who helps the user pursue their goals.",
		"Reply in at most a few sentences. Never mention internal systems or JSON.",
	}

	if in.UserContext != nil {
		if prefs := jsonBlock(in.UserContext.Preferences); prefs != "" {
			lines = append(lines, "", "USER_PREFERENCES:", prefs)
		}
		if patterns := jsonBlock(in.UserContext.LearnedPatterns); patterns != "" {
			lines = append(lines, "", "LEARNED_PATTERNS:", patterns)
		}
	}

	if len(in.Goals) > 0 {
		lines = append(lines, "", "CURRENT_GOALS:")
		for _, g := range in.Goals {
			state := "paused"
			if g.IsActive {
				state = "active"
			}
			lines = append(lines, fmt.Sprintf("- %s (%s, %.0f%% done, %d days left)",
				g.Title, state, g.Progress, g.DaysRemaining))
		}
	}

	if in.ActionResult != nil {
		lines = append(lines, "", "ACTION_TAKEN_THIS_TURN:")
		lines = append(lines, "- outcome: "+outcomeWord(in.ActionResult))
		lines = append(lines, "- detail: "+in.ActionResult.Message)
		if in.ActionResult.NeedsSelection && len(in.ActionResult.Candidates) > 0 {
			lines = append(lines, "- offer these goals to choose from:")
			for _, cand := range in.ActionResult.Candidates {
				lines = append(lines, fmt.Sprintf("  - %s (%.0f%% done)", cand.Title, cand.Progress))
			}
		}
		lines = append(lines, "Weave the outcome naturally into your reply; do not repeat it verbatim.")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func outcomeWord(r *ActionResult) string {
	switch {
	case r.Success:
		return "success"
	case r.NeedsSelection:
		return "needs goal selection"
	default:
		return "failed"
	}
}

func jsonBlock(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return ""
	}
	return string(raw)
}
