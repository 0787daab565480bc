package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

func testTrackerClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	t.Setenv("TRACKER_BASE_URL", srv.URL)
	c, err := NewClient(logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestListGoals_DecodesEnvelopeAndSendsBearer(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": [{"id": "g1", "title": "Guitar Practice", "isActive": true}]}`))
	}))
	defer srv.Close()

	c := testTrackerClient(t, srv)
	goals, err := c.ListGoals(context.Background(), "tok-123")
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPath != "/goals" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(goals) != 1 || goals[0].ID != "g1" || !goals[0].IsActive {
		t.Fatalf("goals = %+v", goals)
	}
}

func TestCreateGoal_PostsBodyAndDecodesBareResponse(t *testing.T) {
	var gotIn CreateGoalInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotIn); err != nil {
			t.Error(err)
		}
		// No data envelope on this endpoint.
		w.Write([]byte(`{"id": "g9", "title": "Learn French", "durationDays": 90}`))
	}))
	defer srv.Close()

	c := testTrackerClient(t, srv)
	goal, err := c.CreateGoal(context.Background(), "tok", CreateGoalInput{
		Title:        "Learn French",
		StartDate:    "2026-08-29",
		DurationDays: 90,
		Color:        "#3B82F6",
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotIn.Title != "Learn French" || gotIn.DurationDays != 90 {
		t.Fatalf("posted body: %+v", gotIn)
	}
	if goal.ID != "g9" {
		t.Fatalf("goal = %+v", goal)
	}
}

func TestClient_SurfacesUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testTrackerClient(t, srv)
	_, err := c.ListGoals(context.Background(), "stale")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error = %v", err)
	}
}

func TestFindGoalByKeyword_UsesFuzzyMatcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": "g1", "title": "Morning Run", "isActive": true},
			{"id": "g2", "title": "Guitar Practice", "isActive": true}
		]}`))
	}))
	defer srv.Close()

	c := testTrackerClient(t, srv)
	goal, err := c.FindGoalByKeyword(context.Background(), "tok", "guitar")
	if err != nil {
		t.Fatal(err)
	}
	if goal == nil || goal.ID != "g2" {
		t.Fatalf("matched goal = %+v", goal)
	}

	goal, err = c.FindGoalByKeyword(context.Background(), "tok", "pottery")
	if err != nil {
		t.Fatal(err)
	}
	if goal != nil {
		t.Fatalf("unexpected match: %+v", goal)
	}
}

func TestUpdateAndToggle_RequireGoalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	c := testTrackerClient(t, srv)
	if _, err := c.UpdateGoal(context.Background(), "tok", "", UpdateGoalInput{}); err == nil {
		t.Fatal("blank goal id accepted")
	}
	if _, err := c.ToggleGoal(context.Background(), "tok", ""); err == nil {
		t.Fatal("blank goal id accepted")
	}
}

func TestDecodeEnvelope(t *testing.T) {
	var g Goal
	if err := DecodeEnvelope([]byte(`{"data": {"id": "a"}}`), &g); err != nil || g.ID != "a" {
		t.Fatalf("enveloped: %+v err=%v", g, err)
	}
	g = Goal{}
	if err := DecodeEnvelope([]byte(`{"id": "b"}`), &g); err != nil || g.ID != "b" {
		t.Fatalf("bare: %+v err=%v", g, err)
	}
	if err := DecodeEnvelope([]byte(`not json`), &g); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	t.Setenv("TRACKER_BASE_URL", "")
	if _, err := NewClient(logger.NewNop()); err == nil {
		t.Fatal("missing base url accepted")
	}
}
