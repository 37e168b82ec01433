package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	ctx := context.Background()
	err = client.Ping(ctx).Err()
	require.NoError(t, err)

	return client, mr
}

func TestStatusRepository_SaveAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := NewStatusRepository(client)
	ctx := context.Background()

	t.Run("round-trips a status", func(t *testing.T) {
		status := &domain.ProjectSimulationStatus{
			ProjectID:     "p1",
			IsRunning:     true,
			ActiveDevices: 3,
			MessagesSent:  42,
			Devices: []domain.DeviceStatus{
				{DeviceID: "d1", Status: domain.DeviceOK},
			},
		}

		require.NoError(t, repo.Save(ctx, status))

		got, err := repo.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, status, got)
	})

	t.Run("save without project id fails", func(t *testing.T) {
		err := repo.Save(ctx, &domain.ProjectSimulationStatus{})
		assert.Error(t, err)
	})

	t.Run("get on unknown project returns sentinel", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestStatusRepository_ListAndDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := NewStatusRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.ProjectSimulationStatus{ProjectID: "p1"}))
	require.NoError(t, repo.Save(ctx, &domain.ProjectSimulationStatus{ProjectID: "p2"}))

	ids, err := repo.ListProjectIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	ids, err = repo.ListProjectIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids)

	// deleting an absent project is a no-op
	require.NoError(t, repo.Delete(ctx, "p1"))
}

func TestStatusRepository_PublishesUpdates(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := NewStatusRepository(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "monitor:events:p1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &domain.ProjectSimulationStatus{ProjectID: "p1", IsRunning: true}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"is_running":true`)
}
