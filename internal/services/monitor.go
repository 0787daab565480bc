package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/monitor"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/repos"
)

type MonitorService interface {
	ListMessages(ctx context.Context, q repos.MonitoredMessageQuery) ([]*domain.MonitoredMessage, error)
	GetMessage(ctx context.Context, userID, messageID uuid.UUID) (*domain.MonitoredMessage, error)
	MarkRead(ctx context.Context, userID, messageID uuid.UUID) error
	// RecordFeedback stores a score correction and re-scores the message
	// immediately. Future classifications for the same sender pick the
	// correction up through the prompt feedback block.
	RecordFeedback(ctx context.Context, userID, messageID uuid.UUID, correctedScore int, feedbackText string) (*domain.ClassificationFeedback, error)
	TriggerSource(ctx context.Context, source string) error
	NextDue(source string) time.Time
}

type monitorService struct {
	messages  repos.MonitoredMessageRepo
	feedback  repos.FeedbackRepo
	scheduler *monitor.Scheduler
	log       *logger.Logger
}

func NewMonitorService(
	messages repos.MonitoredMessageRepo,
	feedback repos.FeedbackRepo,
	scheduler *monitor.Scheduler,
	log *logger.Logger,
) MonitorService {
	return &monitorService{
		messages:  messages,
		feedback:  feedback,
		scheduler: scheduler,
		log:       log.With("service", "MonitorService"),
	}
}

func (s *monitorService) ListMessages(ctx context.Context, q repos.MonitoredMessageQuery) ([]*domain.MonitoredMessage, error) {
	return s.messages.List(dbctx.Context{Ctx: ctx}, q)
}

func (s *monitorService) GetMessage(ctx context.Context, userID, messageID uuid.UUID) (*domain.MonitoredMessage, error) {
	msg, err := s.messages.GetByID(dbctx.Context{Ctx: ctx}, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, fmt.Errorf("message not found")
	}
	return msg, nil
}

func (s *monitorService) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	msg, err := s.messages.GetByID(dbc, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return fmt.Errorf("message not found")
	}
	return s.messages.MarkRead(dbc, messageID)
}

func (s *monitorService) RecordFeedback(ctx context.Context, userID, messageID uuid.UUID, correctedScore int, feedbackText string) (*domain.ClassificationFeedback, error) {
	dbc := dbctx.Context{Ctx: ctx}

	msg, err := s.messages.GetByID(dbc, messageID)
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	if msg.UserID != userID {
		return nil, fmt.Errorf("message not found")
	}

	corrected := domain.ClampScore(correctedScore)
	row, err := s.feedback.Create(dbc, &domain.ClassificationFeedback{
		UserID:         userID,
		MessageID:      messageID,
		OriginalScore:  msg.ImportanceScore,
		CorrectedScore: corrected,
		FeedbackText:   feedbackText,
	})
	if err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}

	// The message itself reflects the correction right away, category included.
	if err := s.messages.UpdateScore(dbc, messageID, corrected, domain.CategoryForScore(corrected)); err != nil {
		return nil, fmt.Errorf("apply correction: %w", err)
	}

	s.log.Info("Classification feedback recorded",
		"message_id", messageID.String(),
		"original", msg.ImportanceScore,
		"corrected", corrected)
	return row, nil
}

func (s *monitorService) TriggerSource(ctx context.Context, source string) error {
	if source != domain.SourceEmail && source != domain.SourceSocial {
		return fmt.Errorf("unknown source %q", source)
	}
	go s.scheduler.RunSourceNow(context.WithoutCancel(ctx), source)
	return nil
}

func (s *monitorService) NextDue(source string) time.Time {
	return s.scheduler.NextDue(source)
}
