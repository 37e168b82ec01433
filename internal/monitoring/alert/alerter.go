package alert

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

// Action is a contextual action attached to an alert. The emitter only
// carries the label/callback pair; invoking Run is the sink's concern.
type Action struct {
	Label string
	Run   func()
}

// Options carries the presentation context for a notification
type Options struct {
	Title  string
	Action *Action
}

// Notifier is the alert sink boundary. Rendering is owned by the sink; the
// emitter never touches display concerns.
type Notifier interface {
	Notify(severity string, message string, opts Options) error
}

// DeviceRetrier is the retry collaborator invoked by the "Retry device"
// alert action
type DeviceRetrier interface {
	RetryDevice(ctx context.Context, deviceID string) error
}

// NoopRetrier is the default retry collaborator. Device reconnection is an
// external responsibility; until a real collaborator is wired in, retry
// requests are acknowledged and dropped.
type NoopRetrier struct{}

func (NoopRetrier) RetryDevice(_ context.Context, deviceID string) error {
	log.Printf("retry requested for device %s (no retrier configured)", deviceID)
	return nil
}

// Archiver persists emitted alerts. Archiving is best-effort.
type Archiver interface {
	InsertAlert(ctx context.Context, record *domain.AlertRecord) error
}

// Emitter converts detected simulation events into user-facing alerts.
// A fingerprint set scoped to the recency window suppresses re-alerting for
// the same event across ticks; fingerprints are evicted once their event
// time ages out of the window.
type Emitter struct {
	store    *store.StatusStore
	notifier Notifier
	retrier  DeviceRetrier
	archive  Archiver
	focus    func(projectID string)
	window   time.Duration
	limiter  *rate.Limiter
	now      func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // fingerprint -> event time
}

// EmitterOption configures an Emitter
type EmitterOption func(*Emitter)

// WithRetrier replaces the default no-op retry collaborator
func WithRetrier(r DeviceRetrier) EmitterOption {
	return func(e *Emitter) { e.retrier = r }
}

// WithArchiver persists every emitted alert through the given archiver
func WithArchiver(a Archiver) EmitterOption {
	return func(e *Emitter) { e.archive = a }
}

// WithFocus sets the opaque "focus this project" callback carried by
// project error alerts
func WithFocus(focus func(projectID string)) EmitterOption {
	return func(e *Emitter) { e.focus = focus }
}

// WithRateLimit caps notifications per second; excess alerts degrade to
// log-only instead of reaching the sink
func WithRateLimit(perSec float64, burst int) EmitterOption {
	return func(e *Emitter) { e.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) { e.now = now }
}

// NewEmitter creates an Emitter writing log entries into st and alerts to
// notifier. The window must match the ingestor's recency window so that
// fingerprint eviction aligns with event filtering.
func NewEmitter(st *store.StatusStore, notifier Notifier, window time.Duration, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		store:    st,
		notifier: notifier,
		retrier:  NoopRetrier{},
		window:   window,
		now:      time.Now,
		seen:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DeviceErrors emits one error-severity alert per not-yet-seen recent
// error event on the project
func (e *Emitter) DeviceErrors(projectID string, events []domain.ErrorEvent) {
	for _, ev := range events {
		occurredAt, err := ev.OccurredAt()
		if err != nil {
			// the ingestor filters these out; guard anyway
			continue
		}
		if !e.markSeen(fingerprint(kindError, projectID, ev.DeviceID, ev.Timestamp), occurredAt) {
			continue
		}

		message := fmt.Sprintf("Device %s: %s", ev.DeviceID, ev.Message)
		opts := Options{Title: fmt.Sprintf("Project %s Error", projectID)}
		if e.focus != nil {
			id := projectID
			opts.Action = &Action{Label: "View project", Run: func() { e.focus(id) }}
		}
		e.emit(projectID, ev.DeviceID, domain.SeverityError, message, occurredAt, opts)
	}
}

// OfflineDevices emits one warning-severity alert per not-yet-seen device
// that recently entered the error state
func (e *Emitter) OfflineDevices(projectID string, devices []domain.DeviceStatus) {
	for _, dev := range devices {
		if dev.Status != domain.DeviceError || dev.LastError == nil {
			continue
		}
		occurredAt, err := dev.LastError.OccurredAt()
		if err != nil {
			continue
		}
		if !e.markSeen(fingerprint(kindOffline, projectID, dev.DeviceID, dev.LastError.Timestamp), occurredAt) {
			continue
		}

		deviceID := dev.DeviceID
		message := fmt.Sprintf("Device %s went offline: %s", deviceID, dev.LastError.Message)
		opts := Options{
			Title: "Device Offline",
			Action: &Action{Label: "Retry device", Run: func() {
				if err := e.retrier.RetryDevice(context.Background(), deviceID); err != nil {
					log.Printf("device retry failed for %s: %v", deviceID, err)
				}
			}},
		}
		e.emit(projectID, deviceID, domain.SeverityWarning, message, occurredAt, opts)
	}
}

// emit appends the log entry and forwards the alert to the sink. Sink
// failures are logged and skipped; they never block remaining events.
func (e *Emitter) emit(projectID, deviceID, severity, message string, occurredAt time.Time, opts Options) {
	now := e.now()

	e.store.AppendLog(domain.LogEntry{
		ProjectID: projectID,
		Timestamp: now,
		Message:   message,
		Severity:  severity,
	})

	if e.archive != nil {
		record := &domain.AlertRecord{
			ProjectID:  projectID,
			DeviceID:   deviceID,
			Severity:   severity,
			Title:      opts.Title,
			Message:    message,
			OccurredAt: occurredAt,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := e.archive.InsertAlert(ctx, record); err != nil {
			log.Printf("alert archive failed: %v", err)
		}
		cancel()
	}

	if e.limiter != nil && !e.limiter.Allow() {
		log.Printf("alert rate limit hit, dropping notification: [%s] %s", severity, message)
		return
	}
	if err := e.notifier.Notify(severity, message, opts); err != nil {
		log.Printf("alert sink rejected notification: %v", err)
	}
}

// markSeen records the fingerprint and reports whether this is the first
// sighting. Expired fingerprints are evicted on every call so the set stays
// bounded by the recency window.
func (e *Emitter) markSeen(fp string, occurredAt time.Time) bool {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	for key, ts := range e.seen {
		if now.Sub(ts) >= e.window {
			delete(e.seen, key)
		}
	}

	if _, dup := e.seen[fp]; dup {
		return false
	}
	e.seen[fp] = occurredAt
	return true
}

// Fingerprint kinds. The same device/timestamp can surface both as an error
// event and as an offline transition in a single snapshot; namespacing keeps
// the two alert classes deduplicating independently.
const (
	kindError   = "err"
	kindOffline = "offline"
)

func fingerprint(kind, projectID, deviceID, timestamp string) string {
	return kind + "|" + projectID + "|" + deviceID + "|" + timestamp
}
