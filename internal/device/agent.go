package device

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrAgentUnavailable is returned when the device agent cannot be reached,
// including while the circuit breaker is open.
var ErrAgentUnavailable = errors.New("device agent unavailable")

// AgentClientConfig holds configuration for the device agent client.
type AgentClientConfig struct {
	// BaseURL is the device agent endpoint, e.g. "http://127.0.0.1:9190".
	BaseURL string

	// Timeout is the per-request timeout. Default: 5 seconds.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Default: 3.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval. Default: 100ms.
	InitialInterval time.Duration
}

// AgentClient is a Toggler that calls a local device agent over HTTP with
// retry and circuit breaking. The agent owns the OS-level mechanics.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     AgentClientConfig
}

// NewAgentClient creates a new device agent client.
func NewAgentClient(cfg AgentClientConfig) *AgentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "device-agent",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &AgentClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// ToggleWifi asks the agent to toggle Wi-Fi.
func (c *AgentClient) ToggleWifi(ctx context.Context) error {
	return c.toggle(ctx, "wifi")
}

// ToggleBluetooth asks the agent to toggle Bluetooth.
func (c *AgentClient) ToggleBluetooth(ctx context.Context) error {
	return c.toggle(ctx, "bluetooth")
}

// ToggleData asks the agent to toggle mobile data.
func (c *AgentClient) ToggleData(ctx context.Context) error {
	return c.toggle(ctx, "data")
}

func (c *AgentClient) toggle(ctx context.Context, radio string) error {
	url := fmt.Sprintf("%s/toggle/%s", c.baseURL, radio)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			res, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if res.StatusCode >= http.StatusInternalServerError {
				res.Body.Close()
				return nil, fmt.Errorf("agent returned status %d", res.StatusCode)
			}
			return res, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return backoff.Permanent(fmt.Errorf("%w: circuit open", ErrAgentUnavailable))
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			// Client errors are not retryable.
			return backoff.Permanent(fmt.Errorf("agent rejected toggle %s: status %d", radio, resp.StatusCode))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxElapsedTime = 0 // retries are bounded by WithMaxRetries

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)); err != nil {
		return fmt.Errorf("%w: %s", ErrAgentUnavailable, err.Error())
	}
	return nil
}
