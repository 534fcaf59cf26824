package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// AlertRepo — репозиторий терминальных alert-записей.
type AlertRepo struct {
	pool *pgxpool.Pool
}

// NewAlertRepo создаёт новый AlertRepo.
func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// SaveAlert сохраняет alert-запись.
func (r *AlertRepo) SaveAlert(ctx context.Context, alert *domain.AlertRecord) error {
	historyJSON, err := json.Marshal(alert.RetryHistory)
	if err != nil {
		return fmt.Errorf("marshal retry history: %w", err)
	}

	query := `
		INSERT INTO alerts (id, task_id, task_type, error, retry_history, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		alert.ID,
		alert.TaskID,
		alert.TaskType,
		alert.Error,
		historyJSON,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListSince возвращает alert'ы с момента since (новые первыми).
func (r *AlertRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.AlertRecord, error) {
	query := `
		SELECT id, task_id, task_type, error, retry_history, created_at
		FROM alerts
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.AlertRecord
	for rows.Next() {
		var a domain.AlertRecord
		var historyJSON []byte
		if err := rows.Scan(&a.ID, &a.TaskID, &a.TaskType, &a.Error, &historyJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if historyJSON != nil {
			if err := json.Unmarshal(historyJSON, &a.RetryHistory); err != nil {
				return nil, fmt.Errorf("unmarshal retry history: %w", err)
			}
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
