package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
)

const (
	statusKeyPrefix    = "monitor:status:"  // Latest status JSON: monitor:status:{project_id}
	projectSetKey      = "monitor:projects" // Set of tracked project IDs
	eventChannelPrefix = "monitor:events:"  // Pub/Sub channel for status updates: monitor:events:{project_id}
	statusTTL          = 24 * time.Hour     // Stale mirrors age out on their own
)

// StatusRepository mirrors live per-project statuses into Redis so other
// dashboard instances can read and follow them
type StatusRepository struct {
	client *redis.Client
}

// NewStatusRepository creates a new StatusRepository
func NewStatusRepository(client *redis.Client) *StatusRepository {
	return &StatusRepository{client: client}
}

// Save writes the status mirror and publishes an update event
func (r *StatusRepository) Save(ctx context.Context, status *domain.ProjectSimulationStatus) error {
	if status.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	statusKey := r.statusKey(status.ProjectID)

	// Pipeline keeps the key write and index membership atomic
	pipe := r.client.Pipeline()
	pipe.Set(ctx, statusKey, data, statusTTL)
	pipe.SAdd(ctx, projectSetKey, status.ProjectID)
	pipe.Expire(ctx, projectSetKey, statusTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}

	r.client.Publish(ctx, r.eventChannel(status.ProjectID), data)
	return nil
}

// Get reads one mirrored status
func (r *StatusRepository) Get(ctx context.Context, projectID string) (*domain.ProjectSimulationStatus, error) {
	data, err := r.client.Get(ctx, r.statusKey(projectID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var status domain.ProjectSimulationStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}

// Delete removes a mirrored status; deleting an absent project is a no-op
func (r *StatusRepository) Delete(ctx context.Context, projectID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.statusKey(projectID))
	pipe.SRem(ctx, projectSetKey, projectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

// ListProjectIDs returns every project ID with a mirrored status
func (r *StatusRepository) ListProjectIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, projectSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return ids, nil
}

func (r *StatusRepository) statusKey(projectID string) string {
	return statusKeyPrefix + projectID
}

func (r *StatusRepository) eventChannel(projectID string) string {
	return eventChannelPrefix + projectID
}
