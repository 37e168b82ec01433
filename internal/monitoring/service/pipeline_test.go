package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/alert"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/ingest"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

type capturingNotifier struct {
	severities []string
	messages   []string
	titles     []string
}

func (c *capturingNotifier) Notify(severity string, message string, opts alert.Options) error {
	c.severities = append(c.severities, severity)
	c.messages = append(c.messages, message)
	c.titles = append(c.titles, opts.Title)
	return nil
}

// Full pipeline: source -> ingestor -> emitter -> store and sink
func TestPipeline_EndToEnd(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ts := now.Format(time.RFC3339)

	s := store.New(0)
	sink := &capturingNotifier{}
	emitter := alert.NewEmitter(s, sink, 30*time.Second, alert.WithClock(func() time.Time { return now }))
	ing := ingest.New(s, emitter, ingest.WithClock(func() time.Time { return now }))

	snapshot := domain.ProjectSimulationStatus{
		IsRunning:     true,
		ActiveDevices: 1,
		MessagesSent:  5,
		Errors: []domain.ErrorEvent{
			{DeviceID: "d1", Message: "timeout", Timestamp: ts},
		},
		Devices: []domain.DeviceStatus{
			{DeviceID: "d1", Status: domain.DeviceError, LastError: &domain.ErrorEvent{Message: "timeout", Timestamp: ts}},
		},
	}

	source := &fakeSource{snapshots: map[string]domain.ProjectSimulationStatus{"p1": snapshot}}
	m := NewMonitor(source, ing, nil, time.Second)

	require.NoError(t, m.Tick(context.Background()))

	// one error alert for the project, one offline warning for the device
	require.Len(t, sink.severities, 2)
	assert.Equal(t, []string{domain.SeverityError, domain.SeverityWarning}, sink.severities)
	assert.Equal(t, "Project p1 Error", sink.titles[0])
	assert.Equal(t, "Device d1: timeout", sink.messages[0])
	assert.Equal(t, "Device Offline", sink.titles[1])
	assert.Equal(t, "Device d1 went offline: timeout", sink.messages[1])

	// the store reflects the ingested snapshot verbatim
	stored, ok := s.Get("p1")
	require.True(t, ok)
	snapshot.ProjectID = "p1"
	assert.Equal(t, snapshot, stored)
	assert.Len(t, s.Logs(), 2)

	// a second tick with the same snapshot re-alerts nothing
	require.NoError(t, m.Tick(context.Background()))
	assert.Len(t, sink.severities, 2)
	assert.Len(t, s.Logs(), 2)
}
