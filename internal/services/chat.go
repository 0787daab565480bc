package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ariabot/aria-backend/internal/assistant"
	redisclient "github.com/ariabot/aria-backend/internal/clients/redis"
	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/repos"
	"github.com/ariabot/aria-backend/internal/tracker"
)

// ChatTurn is what a completed turn hands back to the HTTP layer.
type ChatTurn struct {
	SessionID  uuid.UUID               `json:"session_id"`
	Reply      string                  `json:"reply"`
	Intent     string                  `json:"intent"`
	Confidence float64                 `json:"confidence"`
	Action     *assistant.ActionResult `json:"action,omitempty"`
}

type ChatService interface {
	NewSession() uuid.UUID
	HandleMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*ChatTurn, error)
	History(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error)
	GetUserContext(ctx context.Context, userID uuid.UUID) (*domain.UserContext, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences map[string]any) error
}

type chatService struct {
	analyzer     *assistant.Analyzer
	dispatcher   *assistant.Dispatcher
	composer     *assistant.Composer
	trackerAPI   tracker.Client
	conversation repos.ConversationRepo
	userContext  repos.UserContextRepo
	users        repos.UserRepo
	cache        *redisclient.Cache
	log          *logger.Logger
}

func NewChatService(
	analyzer *assistant.Analyzer,
	dispatcher *assistant.Dispatcher,
	composer *assistant.Composer,
	trackerAPI tracker.Client,
	conversation repos.ConversationRepo,
	userContext repos.UserContextRepo,
	users repos.UserRepo,
	cache *redisclient.Cache,
	log *logger.Logger,
) ChatService {
	return &chatService{
		analyzer:     analyzer,
		dispatcher:   dispatcher,
		composer:     composer,
		trackerAPI:   trackerAPI,
		conversation: conversation,
		userContext:  userContext,
		users:        users,
		cache:        cache,
		log:          log.With("service", "ChatService"),
	}
}

func (s *chatService) NewSession() uuid.UUID {
	return uuid.New()
}

const historyWindow = 20

// HandleMessage runs the full turn: analyze -> dispatch -> compose ->
// persist. Sub-step failures degrade inside their components; only store
// failures surface as errors here.
func (s *chatService) HandleMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*ChatTurn, error) {
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	dbc := dbctx.Context{Ctx: ctx}

	user, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	result := s.analyzer.Analyze(ctx, message, time.Now())

	cred := assistant.Credential{TrackerToken: user.TrackerToken}
	action := s.dispatcher.Dispatch(ctx, result, cred)

	var goals []tracker.Goal
	switch result.Intent {
	case assistant.IntentGetStatus, assistant.IntentGetSummary, assistant.IntentUpdateGoal:
		if snapshot, gErr := s.trackerAPI.ListGoals(ctx, cred.TrackerToken); gErr != nil {
			s.log.Warn("Goal snapshot unavailable for this turn", "error", gErr)
		} else {
			goals = snapshot
		}
	}

	history, err := s.conversation.ListRecent(dbc, sessionID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	uc, err := s.userContext.Get(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user context: %w", err)
	}

	reply := s.composer.Compose(ctx, assistant.ComposeInput{
		Message:      message,
		History:      history,
		UserContext:  uc,
		ActionResult: action,
		Goals:        goals,
	})

	userRow := &domain.ConversationMessage{
		UserID:    userID,
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   message,
	}
	if result.Intent != assistant.IntentChatOnly {
		userRow.Intent = string(result.Intent)
		if raw, mErr := json.Marshal(result.Entities); mErr == nil {
			userRow.Entities = datatypes.JSON(raw)
		}
	}
	assistantRow := &domain.ConversationMessage{
		UserID:    userID,
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
	}
	if _, err := s.conversation.CreateMessages(dbc, []*domain.ConversationMessage{userRow, assistantRow}); err != nil {
		return nil, fmt.Errorf("persist turn: %w", err)
	}

	// Keep a rendered copy of the latest exchange for cheap session warmup.
	s.cache.SetSessionContext(ctx, sessionID.String(), "User: "+message+"\nAssistant: "+reply)

	if err := s.touchUserContext(dbc, userID, uc, result); err != nil {
		// The turn already happened; losing a context update is log-worthy
		// but not fatal.
		s.log.Warn("User context update failed", "error", err)
	}

	return &ChatTurn{
		SessionID:  sessionID,
		Reply:      reply,
		Intent:     string(result.Intent),
		Confidence: result.Confidence,
		Action:     action,
	}, nil
}

// touchUserContext bumps last_interaction and folds the detected intent into
// learned_patterns intent counts.
func (s *chatService) touchUserContext(dbc dbctx.Context, userID uuid.UUID, existing *domain.UserContext, result assistant.IntentResult) error {
	uc := existing
	if uc == nil {
		uc = &domain.UserContext{UserID: userID}
	}

	patterns := map[string]any{}
	if len(uc.LearnedPatterns) > 0 {
		_ = json.Unmarshal(uc.LearnedPatterns, &patterns)
	}
	counts, _ := patterns["intent_counts"].(map[string]any)
	if counts == nil {
		counts = map[string]any{}
	}
	key := string(result.Intent)
	prev, _ := counts[key].(float64)
	counts[key] = prev + 1
	patterns["intent_counts"] = counts

	if raw, err := json.Marshal(patterns); err == nil {
		uc.LearnedPatterns = datatypes.JSON(raw)
	}
	uc.LastInteraction = time.Now().UTC()
	return s.userContext.Upsert(dbc, uc)
}

func (s *chatService) History(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error) {
	rows, err := s.conversation.ListBySession(dbctx.Context{Ctx: ctx}, sessionID, limit)
	if err != nil {
		return nil, err
	}
	// Sessions are private; a foreign session id yields nothing.
	out := rows[:0]
	for _, m := range rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *chatService) GetUserContext(ctx context.Context, userID uuid.UUID) (*domain.UserContext, error) {
	return s.userContext.Get(dbctx.Context{Ctx: ctx}, userID)
}

func (s *chatService) UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences map[string]any) error {
	dbc := dbctx.Context{Ctx: ctx}
	uc, err := s.userContext.Get(dbc, userID)
	if err != nil {
		return err
	}
	if uc == nil {
		uc = &domain.UserContext{UserID: userID, LastInteraction: time.Now().UTC()}
	}
	raw, err := json.Marshal(preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	uc.Preferences = datatypes.JSON(raw)
	return s.userContext.Upsert(dbc, uc)
}
