package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

// Goal is owned by the external tracker service; it is never cached beyond a
// single request's lifetime.
type Goal struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	StartDate     string  `json:"startDate"`
	DurationDays  int     `json:"durationDays"`
	Color         string  `json:"color"`
	IsActive      bool    `json:"isActive"`
	LoggedDays    int     `json:"loggedDays"`
	Progress      float64 `json:"progress"`
	DaysRemaining int     `json:"daysRemaining"`
}

type CreateGoalInput struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	StartDate    string `json:"startDate"`
	DurationDays int    `json:"durationDays"`
	Color        string `json:"color"`
}

type UpdateGoalInput struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	DurationDays *int    `json:"durationDays,omitempty"`
	Color        *string `json:"color,omitempty"`
}

// DailyLog is an append-style record keyed by goalId+logDate. A reminder is a
// daily log carrying a futurePlans entry.
type DailyLog struct {
	ID          string   `json:"id,omitempty"`
	GoalID      string   `json:"goalId"`
	LogDate     string   `json:"logDate"`
	Activities  []string `json:"activities,omitempty"`
	GoodThings  []string `json:"goodThings,omitempty"`
	FuturePlans []string `json:"futurePlans,omitempty"`
	// Client-generated correlation id; the tracker uses it for idempotency.
	CorrelationID string `json:"correlationId,omitempty"`
}

// Client is the REST client to the external goal/log/reminder service. Every
// call carries the caller-supplied bearer token; nothing is cached.
type Client interface {
	ListGoals(ctx context.Context, token string) ([]Goal, error)
	CreateGoal(ctx context.Context, token string, in CreateGoalInput) (*Goal, error)
	UpdateGoal(ctx context.Context, token, goalID string, in UpdateGoalInput) (*Goal, error)
	ToggleGoal(ctx context.Context, token, goalID string) (*Goal, error)
	CreateDailyLog(ctx context.Context, token string, in DailyLog) (*DailyLog, error)
	ListDailyLogs(ctx context.Context, token, goalID string) ([]DailyLog, error)
	// FindGoalByKeyword resolves a free-text keyword to a goal via the
	// two-phase fuzzy matcher. Returns nil when nothing matches.
	FindGoalByKeyword(ctx context.Context, token, keyword string) (*Goal, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("TRACKER_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing TRACKER_BASE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 30
	if v := os.Getenv("TRACKER_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "TrackerClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type trackerHTTPError struct {
	StatusCode int
	Body       string
}

func (e *trackerHTTPError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("tracker http %d: %s", e.StatusCode, body)
}

func (e *trackerHTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) ListGoals(ctx context.Context, token string) ([]Goal, error) {
	var out []Goal
	if err := c.do(ctx, token, http.MethodGet, "/goals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CreateGoal(ctx context.Context, token string, in CreateGoalInput) (*Goal, error) {
	var out Goal
	if err := c.do(ctx, token, http.MethodPost, "/goals", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) UpdateGoal(ctx context.Context, token, goalID string, in UpdateGoalInput) (*Goal, error) {
	if goalID == "" {
		return nil, fmt.Errorf("missing goal id")
	}
	var out Goal
	if err := c.do(ctx, token, http.MethodPut, "/goals/"+goalID, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ToggleGoal(ctx context.Context, token, goalID string) (*Goal, error) {
	if goalID == "" {
		return nil, fmt.Errorf("missing goal id")
	}
	var out Goal
	if err := c.do(ctx, token, http.MethodPatch, "/goals/"+goalID+"/toggle", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) CreateDailyLog(ctx context.Context, token string, in DailyLog) (*DailyLog, error) {
	var out DailyLog
	if err := c.do(ctx, token, http.MethodPost, "/daily-logs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ListDailyLogs(ctx context.Context, token, goalID string) ([]DailyLog, error) {
	if goalID == "" {
		return nil, fmt.Errorf("missing goal id")
	}
	var out []DailyLog
	if err := c.do(ctx, token, http.MethodGet, "/daily-logs/goal/"+goalID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) FindGoalByKeyword(ctx context.Context, token, keyword string) (*Goal, error) {
	goals, err := c.ListGoals(ctx, token)
	if err != nil {
		return nil, err
	}
	return MatchGoal(goals, keyword), nil
}

func (c *client) do(ctx context.Context, token, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &trackerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	return DecodeEnvelope(raw, out)
}

// DecodeEnvelope accepts both `{"data": T}` and raw `T` response bodies.
func DecodeEnvelope(raw []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(raw, out)
}
