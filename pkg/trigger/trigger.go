package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mentorlog/mentorlog-api/pkg/circuitbreaker"
	"github.com/mentorlog/mentorlog-api/pkg/httpclient"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/retry"
)

const deliveryTimeout = 30 * time.Second

// Event is the JSON body posted to the events webhook.
type Event struct {
	Type       string                 `json:"type"`
	LogID      string                 `json:"log_id"`
	ActorID    string                 `json:"actor_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Dispatcher posts workflow events to an external URL. A Dispatcher with an
// empty URL drops every event.
type Dispatcher struct {
	url        string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
}

// NewDispatcher creates a dispatcher for url.
func NewDispatcher(url string, httpClient httpclient.Client) *Dispatcher {
	return &Dispatcher{
		url:        url,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("events-webhook")),
		retryCfg:   webhookRetryConfig(),
	}
}

// webhookRetryConfig stops retrying once the breaker rejects calls.
func webhookRetryConfig() retry.Config {
	cfg := retry.WebhookConfig()
	cfg.RetryableErrors = func(err error) bool {
		return retry.IsRetryable(err) && !circuitbreaker.IsRejected(err)
	}
	return cfg
}

// Enabled reports whether a webhook URL is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.url != ""
}

// Send delivers one event, retrying transient failures. 4xx responses are not retried.
func (d *Dispatcher) Send(ctx context.Context, event Event) error {
	if !d.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	start := time.Now()
	err = retry.Do(ctx, d.retryCfg, "events_webhook", func() error {
		return circuitbreaker.Run(d.breaker, func() error {
			return d.post(ctx, body)
		})
	})

	duration := metrics.MeasureDuration(start)
	status := metrics.StatusLabel(err)
	metrics.OutboundDeliveries.WithLabelValues("webhook", status).Inc()
	logger.LogAPICall("events_webhook", event.Type, status, duration,
		zap.String("log_id", event.LogID),
		zap.Bool("circuit_open", circuitbreaker.IsRejected(err)),
		zap.Error(err))

	return err
}

// SendAsync delivers the event in the background. Failures are only logged.
func (d *Dispatcher) SendAsync(event Event) {
	if !d.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		_ = d.Send(ctx, event) //nolint:errcheck // logged in Send
	}()
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
}
