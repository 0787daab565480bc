package testutil

import (
	"testing"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
)

func SeedUser(tb testing.TB, dbc dbctx.Context, email string) *domain.User {
	tb.Helper()
	user := &domain.User{
		Email:    email,
		Password: "x",
	}
	if err := dbc.Tx.Create(user).Error; err != nil {
		tb.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func SeedMonitoredMessage(tb testing.TB, dbc dbctx.Context, msg *domain.MonitoredMessage) *domain.MonitoredMessage {
	tb.Helper()
	if msg.Source == "" {
		msg.Source = domain.SourceEmail
	}
	if msg.Category == "" {
		msg.Category = domain.CategoryForScore(msg.ImportanceScore)
	}
	if err := dbc.Tx.Create(msg).Error; err != nil {
		tb.Fatalf("seed monitored message: %v", err)
	}
	return msg
}
