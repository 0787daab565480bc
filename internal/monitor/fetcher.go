package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/tracker"
)

// FetchedMessage is one item pulled from an external source, before
// classification.
type FetchedMessage struct {
	ExternalID        string         `json:"externalId"`
	Sender            string         `json:"sender"`
	Subject           string         `json:"subject,omitempty"`
	Content           string         `json:"content"`
	CreatedAt         time.Time      `json:"createdAt"`
	EngagementMetrics map[string]any `json:"engagementMetrics,omitempty"`
}

// SourceFetcher pulls recent messages for one user from one external source.
type SourceFetcher interface {
	Source() string
	FetchRecent(ctx context.Context, user *domain.User, since time.Time, maxResults int) ([]FetchedMessage, error)
}

// httpFetcher talks to a relay service exposing
// GET {base}/{source}/messages?user=...&since=...&max=... with the usual
// {data: T} or raw T envelope.
type httpFetcher struct {
	source     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPFetcher(source, baseURL string, log *logger.Logger) (SourceFetcher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing relay base URL for source %q", source)
	}
	return &httpFetcher{
		source:     source,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With("fetcher", source),
	}, nil
}

func (f *httpFetcher) Source() string { return f.source }

func (f *httpFetcher) FetchRecent(ctx context.Context, user *domain.User, since time.Time, maxResults int) ([]FetchedMessage, error) {
	if user == nil {
		return nil, fmt.Errorf("missing user")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	q := url.Values{}
	q.Set("user", user.ID.String())
	q.Set("max", strconv.Itoa(maxResults))
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/%s/messages?%s", f.baseURL, f.source, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := string(raw)
		if len(body) > 300 {
			body = body[:300] + "..."
		}
		return nil, fmt.Errorf("%s relay http %d: %s", f.source, resp.StatusCode, body)
	}

	var out []FetchedMessage
	if err := tracker.DecodeEnvelope(raw, &out); err != nil {
		return nil, fmt.Errorf("%s relay decode: %w", f.source, err)
	}
	return out, nil
}
