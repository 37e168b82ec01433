package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/ingest"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/repository"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

type fakeSource struct {
	snapshots map[string]domain.ProjectSimulationStatus
	err       error
	calls     int
}

func (f *fakeSource) FetchStatuses(_ context.Context) (map[string]domain.ProjectSimulationStatus, error) {
	f.calls++
	return f.snapshots, f.err
}

type discardSink struct{}

func (discardSink) DeviceErrors(string, []domain.ErrorEvent)     {}
func (discardSink) OfflineDevices(string, []domain.DeviceStatus) {}

func TestMonitor_Tick(t *testing.T) {
	s := store.New(0)
	ing := ingest.New(s, discardSink{})

	t.Run("processes a successful fetch", func(t *testing.T) {
		source := &fakeSource{
			snapshots: map[string]domain.ProjectSimulationStatus{
				"p1": {IsRunning: true, ActiveDevices: 2},
			},
		}
		m := NewMonitor(source, ing, nil, time.Second)

		require.NoError(t, m.Tick(context.Background()))
		assert.Equal(t, 1, source.calls)

		status, ok := s.Get("p1")
		require.True(t, ok)
		assert.True(t, status.IsRunning)
	})

	t.Run("source failure leaves the store untouched", func(t *testing.T) {
		source := &fakeSource{err: errors.New("upstream down")}
		m := NewMonitor(source, ing, nil, time.Second)

		err := m.Tick(context.Background())
		assert.Error(t, err)

		status, ok := s.Get("p1")
		require.True(t, ok, "previous tick's state survives")
		assert.True(t, status.IsRunning)
	})
}

func TestMonitor_TickMirrorsToRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := store.New(0)
	ing := ingest.New(s, discardSink{})
	statusRepo := repository.NewStatusRepository(client)
	source := &fakeSource{
		snapshots: map[string]domain.ProjectSimulationStatus{
			"p1": {IsRunning: true},
		},
	}
	m := NewMonitor(source, ing, statusRepo, time.Second)

	require.NoError(t, m.Tick(context.Background()))

	mirrored, err := statusRepo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, mirrored.IsRunning)
	assert.Equal(t, "p1", mirrored.ProjectID)
}

func TestMonitor_StartStop(t *testing.T) {
	s := store.New(0)
	ing := ingest.New(s, discardSink{})
	source := &fakeSource{}
	m := NewMonitor(source, ing, nil, time.Second)

	require.NoError(t, m.Start())
	assert.Error(t, m.Start(), "double start is rejected")

	m.Stop()
	m.Stop() // stop after stop is a no-op

	require.NoError(t, m.Start(), "monitor can be restarted")
	m.Stop()
}

func TestMonitor_ConcurrentStartStop(t *testing.T) {
	s := store.New(0)
	ing := ingest.New(s, discardSink{})
	m := NewMonitor(&fakeSource{}, ing, nil, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Start()
		}()
		go func() {
			defer wg.Done()
			m.Stop()
		}()
	}
	wg.Wait()

	m.Stop()
	require.NoError(t, m.Start(), "monitor is usable after concurrent start/stop")
	m.Stop()
}
