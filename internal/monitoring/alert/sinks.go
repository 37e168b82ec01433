package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// LogNotifier writes alerts to the process log. It is the fallback sink when
// no dashboard fan-out is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(severity string, message string, opts Options) error {
	if opts.Title != "" {
		log.Printf("[alert][%s] %s: %s", severity, opts.Title, message)
		return nil
	}
	log.Printf("[alert][%s] %s", severity, message)
	return nil
}

// alertChannel is the Redis Pub/Sub channel dashboard instances subscribe to
const alertChannel = "monitor:alerts"

// RedisNotifier publishes alerts to Redis Pub/Sub so dashboard frontends can
// render them. Action callbacks cannot cross the process boundary; only the
// label travels, and the frontend maps it back to a platform API call.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a RedisNotifier on an existing client
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

type alertPayload struct {
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Title       string    `json:"title,omitempty"`
	ActionLabel string    `json:"action_label,omitempty"`
	EmittedAt   time.Time `json:"emitted_at"`
}

func (n *RedisNotifier) Notify(severity string, message string, opts Options) error {
	payload := alertPayload{
		Severity:  severity,
		Message:   message,
		Title:     opts.Title,
		EmittedAt: time.Now(),
	}
	if opts.Action != nil {
		payload.ActionLabel = opts.Action.Label
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := n.client.Publish(ctx, alertChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// MultiNotifier fans an alert out to several sinks. A failing sink does not
// stop the others; the first error is returned.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(severity string, message string, opts Options) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(severity, message, opts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
