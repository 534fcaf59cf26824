package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// UsageRepo — репозиторий суточных снапшотов потребления квот.
//
// Записи append-only с ключом (service, period_date); пишутся при
// rollover'е, читаются только для отчётности.
type UsageRepo struct {
	pool *pgxpool.Pool
}

// NewUsageRepo создаёт новый UsageRepo.
func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

// SaveUsageSnapshot сохраняет финальные счётчики истёкшего периода.
// Повторная запись того же (service, period_date) перезаписывает
// значения — rollover идемпотентен.
func (r *UsageRepo) SaveUsageSnapshot(ctx context.Context, snap *domain.UsageSnapshot) error {
	query := `
		INSERT INTO usage_snapshots (service, period_date, daily_limit, usage, hourly_usage, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (service, period_date)
		DO UPDATE SET daily_limit = $3, usage = $4, hourly_usage = $5
	`
	_, err := r.pool.Exec(ctx, query,
		snap.Service,
		snap.PeriodDate,
		snap.DailyLimit,
		snap.Usage,
		snap.HourlyUsage,
	)
	if err != nil {
		return fmt.Errorf("insert usage snapshot: %w", err)
	}
	return nil
}

// ListByPeriod возвращает снапшоты за период [from, to].
func (r *UsageRepo) ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.UsageSnapshot, error) {
	query := `
		SELECT service, period_date, daily_limit, usage, hourly_usage
		FROM usage_snapshots
		WHERE period_date BETWEEN $1 AND $2
		ORDER BY period_date ASC, service ASC
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list usage snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.UsageSnapshot
	for rows.Next() {
		var s domain.UsageSnapshot
		if err := rows.Scan(&s.Service, &s.PeriodDate, &s.DailyLimit, &s.Usage, &s.HourlyUsage); err != nil {
			return nil, fmt.Errorf("scan usage snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
