package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	redisclient "github.com/ariabot/aria-backend/internal/clients/redis"
	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/repos"
)

// Scheduler runs the per-source monitoring cycle:
// Idle -> Fetching -> (per item) DedupCheck -> [Skip | Classify -> Persist]
// -> UpdateSyncTimestamp -> Idle.
//
// Each source has its own fixed-interval trigger and an "already running"
// flag; overlapping cycles for the same source are skipped while different
// sources may overlap freely.
type Scheduler struct {
	cfg        Config
	fetchers   map[string]SourceFetcher
	classifier *Classifier
	users      repos.UserRepo
	messages   repos.MonitoredMessageRepo
	syncState  repos.SyncStateRepo
	cache      *redisclient.Cache
	log        *logger.Logger

	cron    *cron.Cron
	entries map[string]cron.EntryID
	running map[string]*atomic.Bool

	// now is swappable so tests can pin the active-hours gate.
	now func() time.Time
}

func NewScheduler(
	cfg Config,
	fetchers []SourceFetcher,
	classifier *Classifier,
	users repos.UserRepo,
	messages repos.MonitoredMessageRepo,
	syncState repos.SyncStateRepo,
	cache *redisclient.Cache,
	log *logger.Logger,
) *Scheduler {
	byName := make(map[string]SourceFetcher, len(fetchers))
	running := make(map[string]*atomic.Bool, len(fetchers))
	for _, f := range fetchers {
		byName[f.Source()] = f
		running[f.Source()] = &atomic.Bool{}
	}
	return &Scheduler{
		cfg:        cfg,
		fetchers:   byName,
		classifier: classifier,
		users:      users,
		messages:   messages,
		syncState:  syncState,
		cache:      cache,
		log:        log.With("service", "MonitorScheduler"),
		cron:       cron.New(),
		entries:    map[string]cron.EntryID{},
		running:    running,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	for source := range s.fetchers {
		src := source
		spec := fmt.Sprintf("@every %s", s.cfg.intervalFor(src))
		id, err := s.cron.AddFunc(spec, func() {
			s.RunSourceNow(ctx, src)
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", src, err)
		}
		s.entries[src] = id
		s.log.Info("Monitoring source scheduled", "source", src, "interval", s.cfg.intervalFor(src).String())
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// NextDue reports when the source's next cycle will fire; zero when the
// source is not scheduled.
func (s *Scheduler) NextDue(source string) time.Time {
	id, ok := s.entries[source]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunSourceNow runs one full cycle for a source. Safe to call concurrently;
// a cycle already in flight for the same source makes this a no-op.
func (s *Scheduler) RunSourceNow(ctx context.Context, source string) {
	flag, ok := s.running[source]
	if !ok {
		s.log.Warn("Unknown monitoring source", "source", source)
		return
	}
	if !flag.CompareAndSwap(false, true) {
		s.log.Debug("Cycle still running, skipping trigger", "source", source)
		return
	}
	defer flag.Store(false)

	s.runCycle(ctx, source)
}

func (s *Scheduler) runCycle(ctx context.Context, source string) {
	started := s.clock()()
	log := s.log.With("source", source)

	userRows, err := s.users.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		log.Error("Cycle aborted: could not list users", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.UserParallel)
	for _, u := range userRows {
		user := u
		g.Go(func() error {
			// A failing user never aborts siblings.
			defer func() {
				if r := recover(); r != nil {
					log.Error("User cycle panic", "user_id", user.ID.String(), "panic", r)
				}
			}()
			s.runUserCycle(gctx, log, source, user, started)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Cycle complete", "users", len(userRows), "took", time.Since(started).String())
}

func (s *Scheduler) runUserCycle(ctx context.Context, log *logger.Logger, source string, user *domain.User, cycleStart time.Time) {
	if !withinActiveHours(user, s.clock()(), s.cfg.DefaultWake, s.cfg.DefaultSleep) {
		log.Debug("Outside active hours, skipping user", "user_id", user.ID.String())
		return
	}

	since := s.lastSync(ctx, user, source)

	fetcher := s.fetchers[source]
	items, err := fetcher.FetchRecent(ctx, user, since, s.cfg.FetchLimit)
	if err != nil {
		log.Warn("Fetch failed for user", "user_id", user.ID.String(), "error", err)
		// Sync timestamp only advances after a cycle that actually ran.
		return
	}

	stored := 0
	for _, item := range items {
		if s.processItem(ctx, log, source, user, item) {
			stored++
		}
	}

	now := s.clock()()
	if err := s.syncState.Upsert(dbctx.Context{Ctx: ctx}, user.ID, source, now); err != nil {
		log.Warn("Failed to update sync timestamp", "user_id", user.ID.String(), "error", err)
	}
	s.cache.SetLastSync(ctx, user.ID.String(), source, now)

	log.Debug("User cycle done", "user_id", user.ID.String(), "fetched", len(items), "stored", stored)
}

// processItem runs dedup -> classify -> persist for one fetched message and
// reports whether a new row was stored. Item failures are logged, never
// propagated.
func (s *Scheduler) processItem(ctx context.Context, log *logger.Logger, source string, user *domain.User, item FetchedMessage) (stored bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Item processing panic", "external_id", item.ExternalID, "panic", r)
			stored = false
		}
	}()

	if item.ExternalID == "" {
		log.Warn("Fetched item missing external id, skipping", "sender", item.Sender)
		return false
	}

	dbc := dbctx.Context{Ctx: ctx}
	seen, err := s.messages.Exists(dbc, user.ID, source, item.ExternalID)
	if err != nil {
		log.Warn("Dedup check failed, skipping item", "external_id", item.ExternalID, "error", err)
		return false
	}
	if seen {
		return false
	}

	cls := s.classifier.Classify(ctx, user.ID, InboundMessage{
		Sender:  item.Sender,
		Subject: item.Subject,
		Content: item.Content,
		Source:  source,
	})

	row := &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            source,
		ExternalMessageID: item.ExternalID,
		Sender:            item.Sender,
		Subject:           item.Subject,
		Content:           item.Content,
		ImportanceScore:   cls.Score,
		Category:          cls.Category,
		Reasoning:         cls.Reasoning,
	}
	if len(item.EngagementMetrics) > 0 {
		if raw, err := json.Marshal(item.EngagementMetrics); err == nil {
			row.Metadata = datatypes.JSON(raw)
		}
	}

	inserted, err := s.messages.Insert(dbc, row)
	if err != nil {
		log.Warn("Persist failed for item", "external_id", item.ExternalID, "error", err)
		return false
	}
	return inserted
}

func (s *Scheduler) lastSync(ctx context.Context, user *domain.User, source string) time.Time {
	if cached := s.cache.GetLastSync(ctx, user.ID.String(), source); !cached.IsZero() {
		return cached
	}
	state, err := s.syncState.Get(dbctx.Context{Ctx: ctx}, user.ID, source)
	if err != nil || state == nil {
		return time.Time{}
	}
	return state.LastSyncAt
}

func (s *Scheduler) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}

// SetClock pins the scheduler's notion of now. Test helper.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }
