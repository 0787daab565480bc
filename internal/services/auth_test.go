package services

import (
	"context"
	"testing"
	"time"

	"github.com/ariabot/aria-backend/internal/repos"
	"github.com/ariabot/aria-backend/internal/repos/testutil"
)

func testAuthService(t *testing.T) AuthService {
	t.Helper()
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	return NewAuthService(AuthConfig{
		JWTSecretKey:    "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repos.NewUserRepo(tx, log), repos.NewUserTokenRepo(tx, log), log)
}

func TestAuth_RegisterLoginVerify(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Alice@Example.com", "hunter22", "Alice", "Reed")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("missing token pair")
	}

	gotID, err := svc.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if gotID != user.ID {
		t.Fatalf("token subject = %s, want %s", gotID, user.ID)
	}

	if _, _, err := svc.Register(ctx, "alice@example.com", "other", "", ""); err == nil {
		t.Fatal("duplicate email accepted")
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	loggedIn, _, err := svc.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if loggedIn.ID != user.ID {
		t.Fatal("login returned a different user")
	}
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "bob@example.com", "pw", "", "")
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	// The consumed token is dead.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("spent refresh token accepted")
	}
	// The new one works.
	if _, err := svc.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotated token rejected: %v", err)
	}

	if gotID, err := svc.VerifyAccessToken(next.AccessToken); err != nil || gotID != user.ID {
		t.Fatalf("rotated access token: id=%s err=%v", gotID, err)
	}
}

func TestAuth_LogoutRevokesRefreshTokens(t *testing.T) {
	svc := testAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "carol@example.com", "pw", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("refresh token usable after logout")
	}
}

func TestAuth_VerifyRejectsGarbageAndForeignKeys(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	svc := NewAuthService(AuthConfig{
		JWTSecretKey:    "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	}, repos.NewUserRepo(tx, log), repos.NewUserTokenRepo(tx, log), log)

	if _, err := svc.VerifyAccessToken("not.a.jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}

	// A token minted under a different secret must not verify.
	other := NewAuthService(AuthConfig{
		JWTSecretKey:    "different-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	}, repos.NewUserRepo(tx, log), repos.NewUserTokenRepo(tx, log), log)
	_, pair, err := other.Register(context.Background(), "mallory@example.com", "pw", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyAccessToken(pair.AccessToken); err == nil {
		t.Fatal("foreign-keyed token accepted")
	}
}
