package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/legame/pkg/alert"
	"github.com/soundprediction/legame/pkg/config"
)

// CircuitBreakerClient wraps a Client with a circuit breaker so that a
// failing embedding provider stops receiving traffic until it recovers.
type CircuitBreakerClient struct {
	client  Client
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
}

// Wrap returns client guarded by a circuit breaker when cfg.Enabled is set,
// or the client unchanged otherwise.
func Wrap(client Client, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string) Client {
	if !cfg.Enabled {
		return client
	}
	return NewCircuitBreakerClient(client, cfg, alerter, name)
}

// NewCircuitBreakerClient creates a circuit-breaking wrapper around client.
// When the breaker opens, an alert is sent through alerter.
func NewCircuitBreakerClient(client Client, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string) *CircuitBreakerClient {
	ratio := cfg.ReadyToTripRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && alerter != nil {
				subject := fmt.Sprintf("Circuit breaker open: %s", name)
				message := fmt.Sprintf(
					"The circuit breaker for %s has opened after repeated failures. "+
						"Embedding requests will be rejected until the provider recovers.",
					name,
				)
				if err := alerter.Alert(subject, message); err != nil {
					slog.Error("failed to send circuit breaker alert", "name", name, "error", err)
				}
			}
		},
	}

	return &CircuitBreakerClient{
		client:  client,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
	}
}

// Embed calls the wrapped client through the circuit breaker.
func (c *CircuitBreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Embed(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

// EmbedSingle calls the wrapped client through the circuit breaker.
func (c *CircuitBreakerClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.EmbedSingle(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// Dimensions returns the wrapped client's vector length.
func (c *CircuitBreakerClient) Dimensions() int {
	return c.client.Dimensions()
}

// Close closes the wrapped client.
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}

// State returns the current circuit breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}
