package ingest

import (
	"time"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

// DefaultRecencyWindow is how far back an event timestamp may lie and still
// count as a new event
const DefaultRecencyWindow = 30 * time.Second

// EventSink receives the events detected during a tick. Implemented by the
// alert emitter.
type EventSink interface {
	DeviceErrors(projectID string, events []domain.ErrorEvent)
	OfflineDevices(projectID string, devices []domain.DeviceStatus)
}

// Ingestor diffs each delivered batch of project snapshots against the
// recency window, forwards newly-recent events to the sink, and writes the
// snapshots into the status store.
type Ingestor struct {
	store  *store.StatusStore
	sink   EventSink
	window time.Duration
	now    func() time.Time
}

// Option configures an Ingestor
type Option func(*Ingestor)

// WithWindow overrides the recency window
func WithWindow(window time.Duration) Option {
	return func(i *Ingestor) {
		if window > 0 {
			i.window = window
		}
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

// New creates an Ingestor writing into st and forwarding events to sink
func New(st *store.StatusStore, sink EventSink, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:  st,
		sink:   sink,
		window: DefaultRecencyWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Window returns the configured recency window
func (i *Ingestor) Window() time.Duration {
	return i.window
}

// ProcessTick handles one delivery from the status source. Every included
// snapshot is authoritative: detected events are forwarded to the sink and
// the full status is upserted. Snapshots with no errors or devices simply
// produce no events.
func (i *Ingestor) ProcessTick(snapshots map[string]domain.ProjectSimulationStatus) {
	now := i.now()

	for projectID, status := range snapshots {
		if recent := i.recentErrors(now, status.Errors); len(recent) > 0 {
			i.sink.DeviceErrors(projectID, recent)
		}
		if offline := i.recentlyOffline(now, status.Devices); len(offline) > 0 {
			i.sink.OfflineDevices(projectID, offline)
		}
		i.store.Upsert(projectID, status)
	}
}

// recentErrors keeps the error events whose timestamp falls inside the
// recency window. Malformed timestamps cannot be placed in time and are
// treated as not recent.
func (i *Ingestor) recentErrors(now time.Time, events []domain.ErrorEvent) []domain.ErrorEvent {
	var recent []domain.ErrorEvent
	for _, ev := range events {
		if i.isRecent(now, ev) {
			recent = append(recent, ev)
		}
	}
	return recent
}

// recentlyOffline keeps the devices in error state whose last error falls
// inside the recency window
func (i *Ingestor) recentlyOffline(now time.Time, devices []domain.DeviceStatus) []domain.DeviceStatus {
	var offline []domain.DeviceStatus
	for _, dev := range devices {
		if dev.Status != domain.DeviceError || dev.LastError == nil {
			continue
		}
		if i.isRecent(now, *dev.LastError) {
			offline = append(offline, dev)
		}
	}
	return offline
}

func (i *Ingestor) isRecent(now time.Time, ev domain.ErrorEvent) bool {
	occurredAt, err := ev.OccurredAt()
	if err != nil {
		return false
	}
	return now.Sub(occurredAt) < i.window
}
