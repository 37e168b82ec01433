package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/domain"
)

// AlertHistoryRepository handles PostgreSQL operations for the alert archive
type AlertHistoryRepository struct {
	db *sql.DB
}

// NewAlertHistoryRepository creates a new AlertHistoryRepository
func NewAlertHistoryRepository(db *sql.DB) *AlertHistoryRepository {
	return &AlertHistoryRepository{db: db}
}

// InsertAlert persists one emitted alert
func (r *AlertHistoryRepository) InsertAlert(ctx context.Context, record *domain.AlertRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO alert_history (id, project_id, device_id, severity, title, message, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		record.ID,
		record.ProjectID,
		record.DeviceID,
		record.Severity,
		record.Title,
		record.Message,
		record.OccurredAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// ListByProject returns the most recent archived alerts for a project,
// newest first
func (r *AlertHistoryRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]domain.AlertRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, project_id, device_id, severity, title, message, occurred_at, created_at
		FROM alert_history
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var records []domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ProjectID,
			&rec.DeviceID,
			&rec.Severity,
			&rec.Title,
			&rec.Message,
			&rec.OccurredAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}

	return records, nil
}

// PurgeOlderThan deletes archived alerts older than the retention period and
// returns how many were removed
func (r *AlertHistoryRepository) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	res, err := r.db.ExecContext(ctx, `DELETE FROM alert_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge alerts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged alerts: %w", err)
	}
	return n, nil
}
