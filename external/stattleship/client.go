// Package stattleship fetches NFL game schedules and scores from the
// Stattleship API. It is the only source of kickoff times and final scores
// for pick lockout and settlement.
package stattleship

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/thecommish/pickem/internal/domain/game"
	"github.com/thecommish/pickem/internal/domain/team"
	"github.com/thecommish/pickem/internal/platform/logging"
	"github.com/thecommish/pickem/internal/platform/resilience"
	"github.com/thecommish/pickem/internal/usecase"
)

const defaultBaseURL = "https://api.stattleship.com/football/nfl"

var authTokenHeaderRegex = regexp.MustCompile(`Token token=[^&\s"']+`)
var errStattleshipTransient = crerr.New("stattleship transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// GetWeek returns every game of the given season week. Team names are
// normalized to canonical nicknames so callers can match picks against them.
func (c *Client) GetWeek(ctx context.Context, seasonYear, week int) ([]game.Game, error) {
	if week < 1 {
		return nil, fmt.Errorf("%w: week must be >= 1", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"season_id": fmt.Sprintf("nfl-%d-%d", seasonYear, seasonYear+1),
		"week":      strconv.Itoa(week),
		"per_page":  "40",
	}

	var envelope gamesEnvelope
	if err := c.doJSON(ctx, "/games", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch games season=%d week=%d: %w", seasonYear, week, err)
	}

	teamNameByID := make(map[string]string, len(envelope.Teams))
	for _, item := range envelope.Teams {
		teamNameByID[item.ID] = canonicalTeamName(item)
	}

	out := make([]game.Game, 0, len(envelope.Games))
	for _, item := range envelope.Games {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		mapped := game.Game{
			ID:         item.ID,
			HomeTeam:   teamNameByID[item.HomeTeamID],
			AwayTeam:   teamNameByID[item.AwayTeamID],
			Status:     game.NormalizeStatus(item.Status),
			HomePoints: item.HomeTeamScore,
			AwayPoints: item.AwayTeamScore,
		}
		if mapped.HomeTeam == "" || mapped.AwayTeam == "" {
			c.logger.WarnContext(ctx, "skip game with unknown participant", "game_id", item.ID)
			continue
		}
		kickoff := parseProviderTime(item.ScheduledAt)
		if kickoff == nil {
			kickoff = parseProviderTime(item.StartedAt)
		}
		if kickoff == nil {
			c.logger.WarnContext(ctx, "skip game without kickoff time", "game_id", item.ID)
			continue
		}
		mapped.KickoffAt = *kickoff
		out = append(out, mapped)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

// canonicalTeamName maps a provider team row onto the canonical nickname used
// across the pick engine. Provider nicknames resolve cleanly; anything the
// resolver rejects falls back to the lowercased nickname as-is.
func canonicalTeamName(item teamItem) string {
	for _, candidate := range []string{item.Nickname, item.Slug, item.Name} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if resolved, err := team.Resolve(candidate); err == nil {
			return resolved
		}
	}
	return strings.ToLower(strings.TrimSpace(item.Nickname))
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stattleship circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: score provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errStattleshipTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.stattleship.com; version=1")
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Token token="+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errStattleshipTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errStattleshipTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errStattleshipTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "stattleship request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return authTokenHeaderRegex.ReplaceAllString(value, "Token token=REDACTED")
}

func parseProviderTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}
