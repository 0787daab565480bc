package app

import (
	"fmt"

	redisclient "github.com/ariabot/aria-backend/internal/clients/redis"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/platform/gemini"
	"github.com/ariabot/aria-backend/internal/tracker"
)

type Clients struct {
	Gemini  gemini.Client
	Tracker tracker.Client
	Cache   *redisclient.Cache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring external clients...")

	ai, err := gemini.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init gemini client: %w", err)
	}
	tc, err := tracker.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init tracker client: %w", err)
	}
	// Cache is nil-safe; missing REDIS_ADDR just disables it.
	cache, err := redisclient.New(log)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache", "error", err)
		cache = nil
	}
	return Clients{Gemini: ai, Tracker: tc, Cache: cache}, nil
}
