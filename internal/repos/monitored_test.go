package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/repos"
	"github.com/ariabot/aria-backend/internal/repos/testutil"
)

func TestMonitoredMessageRepo_InsertDeduplicates(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	user := testutil.SeedUser(t, dbc, "dedup@example.com")
	repo := repos.NewMonitoredMessageRepo(tx, log)

	row := &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceEmail,
		ExternalMessageID: "gmail-123",
		Sender:            "boss@example.com",
		Content:           "Deck by Friday.",
		ImportanceScore:   8,
		Category:          domain.CategoryHigh,
	}
	inserted, err := repo.Insert(dbc, row)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first insert reported as duplicate")
	}

	dup := &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceEmail,
		ExternalMessageID: "gmail-123",
		Sender:            "boss@example.com",
		Content:           "Deck by Friday.",
		ImportanceScore:   5,
		Category:          domain.CategoryMedium,
	}
	inserted, err = repo.Insert(dbc, dup)
	if err != nil {
		t.Fatalf("duplicate insert must not error: %v", err)
	}
	if inserted {
		t.Fatal("duplicate insert reported as new row")
	}

	// Same external id under a different source is a distinct message.
	other := &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceSocial,
		ExternalMessageID: "gmail-123",
		Sender:            "someone",
		Content:           "mention",
		ImportanceScore:   3,
		Category:          domain.CategoryLow,
	}
	inserted, err = repo.Insert(dbc, other)
	if err != nil || !inserted {
		t.Fatalf("cross-source insert: inserted=%v err=%v", inserted, err)
	}

	exists, err := repo.Exists(dbc, user.ID, domain.SourceEmail, "gmail-123")
	if err != nil || !exists {
		t.Fatalf("Exists: %v %v", exists, err)
	}
	exists, err = repo.Exists(dbc, user.ID, domain.SourceEmail, "gmail-999")
	if err != nil || exists {
		t.Fatalf("Exists for unknown id: %v %v", exists, err)
	}
}

func TestMonitoredMessageRepo_ListFiltersAndMarkRead(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	user := testutil.SeedUser(t, dbc, "filters@example.com")
	repo := repos.NewMonitoredMessageRepo(tx, log)

	high := testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID: user.ID, Source: domain.SourceEmail, ExternalMessageID: "e1",
		Sender: "boss", Content: "urgent", ImportanceScore: 9,
	})
	testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID: user.ID, Source: domain.SourceSocial, ExternalMessageID: "s1",
		Sender: "friend", Content: "meme", ImportanceScore: 2,
	})

	rows, err := repo.List(dbc, repos.MonitoredMessageQuery{UserID: user.ID, Category: domain.CategoryHigh})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != high.ID {
		t.Fatalf("category filter: %+v", rows)
	}

	rows, err = repo.List(dbc, repos.MonitoredMessageQuery{UserID: user.ID, Unread: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("unread filter before MarkRead: %d rows", len(rows))
	}

	if err := repo.MarkRead(dbc, high.ID); err != nil {
		t.Fatal(err)
	}
	rows, err = repo.List(dbc, repos.MonitoredMessageQuery{UserID: user.ID, Unread: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Source != domain.SourceSocial {
		t.Fatalf("unread filter after MarkRead: %+v", rows)
	}
}

func TestSyncStateRepo_UpsertOverwrites(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	user := testutil.SeedUser(t, dbc, "sync@example.com")
	repo := repos.NewSyncStateRepo(tx, log)

	if state, err := repo.Get(dbc, user.ID, domain.SourceEmail); err != nil || state != nil {
		t.Fatalf("expected nil state before first sync, got %+v err=%v", state, err)
	}

	first := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)
	if err := repo.Upsert(dbc, user.ID, domain.SourceEmail, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(dbc, user.ID, domain.SourceEmail, second); err != nil {
		t.Fatal(err)
	}

	state, err := repo.Get(dbc, user.ID, domain.SourceEmail)
	if err != nil || state == nil {
		t.Fatalf("Get: %+v err=%v", state, err)
	}
	if !state.LastSyncAt.Equal(second) {
		t.Fatalf("last sync = %s, want %s", state.LastSyncAt, second)
	}
}
