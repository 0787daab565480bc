package app

import (
	"fmt"

	"github.com/ariabot/aria-backend/internal/assistant"
	"github.com/ariabot/aria-backend/internal/monitor"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Chat    services.ChatService
	Monitor services.MonitorService

	Scheduler *monitor.Scheduler
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(services.AuthConfig{
		JWTSecretKey:    cfg.JWTSecretKey,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, reposet.User, reposet.UserToken, log)

	analyzer := assistant.NewAnalyzer(clients.Gemini, log)
	dispatcher := assistant.NewDispatcher(clients.Tracker, assistant.DefaultThresholds(), log)
	composer := assistant.NewComposer(clients.Gemini, log)

	chatService := services.NewChatService(
		analyzer,
		dispatcher,
		composer,
		clients.Tracker,
		reposet.Conversation,
		reposet.UserContext,
		reposet.User,
		clients.Cache,
		log,
	)

	monitorCfg, err := monitor.LoadConfig(log)
	if err != nil {
		return Services{}, fmt.Errorf("load monitor config: %w", err)
	}
	classifier := monitor.NewClassifier(clients.Gemini, reposet.Feedback, log)

	var fetchers []monitor.SourceFetcher
	if cfg.EmailRelayURL != "" {
		f, err := monitor.NewHTTPFetcher("email", cfg.EmailRelayURL, log)
		if err != nil {
			return Services{}, err
		}
		fetchers = append(fetchers, f)
	}
	if cfg.SocialRelayURL != "" {
		f, err := monitor.NewHTTPFetcher("social", cfg.SocialRelayURL, log)
		if err != nil {
			return Services{}, err
		}
		fetchers = append(fetchers, f)
	}
	if len(fetchers) == 0 {
		log.Warn("No relay URLs configured, message monitoring has no sources")
	}

	scheduler := monitor.NewScheduler(
		monitorCfg,
		fetchers,
		classifier,
		reposet.User,
		reposet.MonitoredMessage,
		reposet.SyncState,
		clients.Cache,
		log,
	)

	monitorService := services.NewMonitorService(reposet.MonitoredMessage, reposet.Feedback, scheduler, log)

	return Services{
		Auth:      authService,
		Chat:      chatService,
		Monitor:   monitorService,
		Scheduler: scheduler,
	}, nil
}
