package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/repos"
	"github.com/ariabot/aria-backend/internal/repos/testutil"
)

func newMonitorFixture(t *testing.T) (MonitorService, dbctx.Context, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	svc := NewMonitorService(
		repos.NewMonitoredMessageRepo(tx, log),
		repos.NewFeedbackRepo(tx, log),
		nil,
		log,
	)
	return svc, dbctx.Context{Ctx: context.Background(), Tx: tx}, tx
}

func TestRecordFeedback_AppliesCorrectionImmediately(t *testing.T) {
	svc, dbc, tx := newMonitorFixture(t)
	user := testutil.SeedUser(t, dbc, "mon1@example.com")

	msg := testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceEmail,
		ExternalMessageID: "e1",
		Sender:            "boss@example.com",
		Content:           "numbers",
		ImportanceScore:   4,
	})

	row, err := svc.RecordFeedback(dbc.Ctx, user.ID, msg.ID, 9, "this sender matters")
	if err != nil {
		t.Fatal(err)
	}
	if row.OriginalScore != 4 || row.CorrectedScore != 9 {
		t.Fatalf("feedback row: %+v", row)
	}

	var updated domain.MonitoredMessage
	if err := tx.First(&updated, "id = ?", msg.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.ImportanceScore != 9 {
		t.Fatalf("score not applied: %d", updated.ImportanceScore)
	}
	if updated.Category != domain.CategoryHigh {
		t.Fatalf("category not re-derived: %q", updated.Category)
	}
}

func TestRecordFeedback_ClampsCorrectedScore(t *testing.T) {
	svc, dbc, tx := newMonitorFixture(t)
	user := testutil.SeedUser(t, dbc, "mon2@example.com")

	msg := testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceEmail,
		ExternalMessageID: "e1",
		Sender:            "x",
		Content:           "y",
		ImportanceScore:   5,
	})

	row, err := svc.RecordFeedback(dbc.Ctx, user.ID, msg.ID, 99, "")
	if err != nil {
		t.Fatal(err)
	}
	if row.CorrectedScore != 10 {
		t.Fatalf("corrected score not clamped: %d", row.CorrectedScore)
	}

	var updated domain.MonitoredMessage
	if err := tx.First(&updated, "id = ?", msg.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.ImportanceScore != 10 || updated.Category != domain.CategoryHigh {
		t.Fatalf("updated message: score=%d category=%q", updated.ImportanceScore, updated.Category)
	}
}

func TestRecordFeedback_RejectsForeignMessage(t *testing.T) {
	svc, dbc, _ := newMonitorFixture(t)
	owner := testutil.SeedUser(t, dbc, "mon3@example.com")
	intruder := testutil.SeedUser(t, dbc, "mon3-intruder@example.com")

	msg := testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID:            owner.ID,
		Source:            domain.SourceEmail,
		ExternalMessageID: "e1",
		Sender:            "x",
		Content:           "y",
		ImportanceScore:   5,
	})

	if _, err := svc.RecordFeedback(dbc.Ctx, intruder.ID, msg.ID, 1, ""); err == nil {
		t.Fatal("foreign feedback accepted")
	}
	if err := svc.MarkRead(dbc.Ctx, intruder.ID, msg.ID); err == nil {
		t.Fatal("foreign mark-read accepted")
	}
}

func TestMarkRead(t *testing.T) {
	svc, dbc, tx := newMonitorFixture(t)
	user := testutil.SeedUser(t, dbc, "mon4@example.com")

	msg := testutil.SeedMonitoredMessage(t, dbc, &domain.MonitoredMessage{
		UserID:            user.ID,
		Source:            domain.SourceSocial,
		ExternalMessageID: "s1",
		Sender:            "friend",
		Content:           "hey",
		ImportanceScore:   3,
	})

	if err := svc.MarkRead(dbc.Ctx, user.ID, msg.ID); err != nil {
		t.Fatal(err)
	}
	var updated domain.MonitoredMessage
	if err := tx.First(&updated, "id = ?", msg.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !updated.IsRead {
		t.Fatal("message still unread")
	}
}

func TestTriggerSource_RejectsUnknownSource(t *testing.T) {
	svc, dbc, _ := newMonitorFixture(t)
	if err := svc.TriggerSource(dbc.Ctx, "fax"); err == nil {
		t.Fatal("unknown source accepted")
	}
}
