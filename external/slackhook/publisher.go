// Package slackhook delivers messages to Slack incoming webhooks and
// response_url callbacks. Deferred command output (standings tables,
// reminders) goes through here instead of the synchronous command reply.
package slackhook

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/thecommish/pickem/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

var errSlackTransient = crerr.New("slack webhook transient failure")

// Message is the minimal Slack webhook payload. ResponseType "in_channel"
// posts publicly; "ephemeral" is visible to the invoking user only.
type Message struct {
	ResponseType string `json:"response_type,omitempty"`
	Text         string `json:"text"`
}

type PublisherConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Publisher struct {
	client         *fasthttp.Client
	timeout        time.Duration
	maxRetries     int
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		timeout:        timeout,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Post delivers msg to the given webhook or response_url. Transient delivery
// failures are retried; Slack treats redelivery of the same message as a
// duplicate post, so retries stop at the first 2xx.
func (p *Publisher) Post(ctx context.Context, webhookURL string, msg Message) error {
	target, err := validateWebhookURL(webhookURL)
	if err != nil {
		return crerr.Wrap(err, "invalid slack webhook url")
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "slack circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("slack webhook is temporarily unavailable: %w", err)
		}
	}

	body, err := sonic.Marshal(msg)
	if err != nil {
		return crerr.Wrap(err, "marshal slack message")
	}

	callErr := p.deliver(ctx, target, body)
	p.recordCircuitResult(callErr)
	if callErr != nil {
		return callErr
	}

	p.logger.InfoContext(ctx, "slack message delivered", "response_type", msg.ResponseType)
	return nil
}

func (p *Publisher) deliver(ctx context.Context, target string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(target)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.SetBody(body)

		err := p.client.DoTimeout(req, resp, p.timeout)
		status := resp.StatusCode()
		respBody := strings.TrimSpace(string(resp.Body()))
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send webhook request: %v", errSlackTransient, err)
		case status/100 == 2:
			return nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: webhook status=%d body=%s", errSlackTransient, status, respBody)
		default:
			return fmt.Errorf("webhook status=%d body=%s", status, respBody)
		}

		if attempt == p.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("webhook request failed")
	}
	p.logger.WarnContext(ctx, "slack webhook delivery failed", "error", lastErr)
	return lastErr
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errSlackTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}
