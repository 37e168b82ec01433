package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/ingest"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/repository"
)

// StatusSource is the boundary to the external status provider. One call
// delivers the current per-project snapshots for a tick.
type StatusSource interface {
	FetchStatuses(ctx context.Context) (map[string]domain.ProjectSimulationStatus, error)
}

// Monitor drives the monitoring pipeline: it fetches snapshots from the
// source on a schedule and hands them to the ingestor. Ticks never overlap;
// a tick is a complete, terminating unit.
type Monitor struct {
	source     StatusSource
	ingestor   *ingest.Ingestor
	statusRepo *repository.StatusRepository // optional Redis mirror
	interval   time.Duration

	mu sync.Mutex // serializes ticks

	ctl  sync.Mutex // guards cron across Start/Stop
	cron *cron.Cron
}

// NewMonitor creates a Monitor polling source every interval. statusRepo may
// be nil when no Redis mirror is configured.
func NewMonitor(source StatusSource, ingestor *ingest.Ingestor, statusRepo *repository.StatusRepository, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		source:     source,
		ingestor:   ingestor,
		statusRepo: statusRepo,
		interval:   interval,
	}
}

// Tick runs one complete monitoring cycle
func (m *Monitor) Tick(ctx context.Context) error {
	snapshots, err := m.source.FetchStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch statuses: %w", err)
	}

	m.mu.Lock()
	m.ingestor.ProcessTick(snapshots)
	m.mu.Unlock()

	m.mirror(ctx, snapshots)
	return nil
}

// mirror pushes the tick's snapshots into Redis, best-effort
func (m *Monitor) mirror(ctx context.Context, snapshots map[string]domain.ProjectSimulationStatus) {
	if m.statusRepo == nil {
		return
	}
	for projectID, status := range snapshots {
		status.ProjectID = projectID
		if err := m.statusRepo.Save(ctx, &status); err != nil {
			log.Printf("status mirror failed for project %s: %v", projectID, err)
		}
	}
}

// Start begins scheduled polling. A failed tick is logged and the schedule
// continues; stopping the monitor means no further ticks are delivered.
func (m *Monitor) Start() error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.cron != nil {
		return fmt.Errorf("monitor already started")
	}

	c := cron.New()
	spec := "@every " + m.interval.String()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.interval)
		defer cancel()
		if err := m.Tick(ctx); err != nil {
			log.Printf("monitoring tick failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule monitoring tick: %w", err)
	}

	c.Start()
	m.cron = c
	log.Printf("monitoring started (polling every %s)", m.interval)
	return nil
}

// Stop ceases tick delivery and waits for a running tick to finish
func (m *Monitor) Stop() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.cron == nil {
		return
	}
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.cron = nil
	log.Println("monitoring stopped")
}
