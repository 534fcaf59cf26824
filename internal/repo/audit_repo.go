package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// AuditRepo — репозиторий решений оптимизатора.
//
// Записи append-only: каждая рекомендация (применённая или отклонённая)
// сохраняется с обоснованием для последующего аудита.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepo создаёт новый AuditRepo.
func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// RecordOptimization сохраняет решение цикла оптимизации.
func (r *AuditRepo) RecordOptimization(ctx context.Context, rec *domain.OptimizationRecommendation) error {
	query := `
		INSERT INTO optimization_audit
			(service, action, current_allocation, recommended_allocation,
			 confidence_score, reasoning, risk_assessment, applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.Service,
		rec.Action,
		rec.CurrentAllocation,
		rec.RecommendedAllocation,
		rec.ConfidenceScore,
		rec.Reasoning,
		rec.RiskAssessment,
		rec.Applied,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert optimization audit: %w", err)
	}
	return nil
}

// ListSince возвращает решения с момента since (новые первыми).
func (r *AuditRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.OptimizationRecommendation, error) {
	query := `
		SELECT service, action, current_allocation, recommended_allocation,
		       confidence_score, reasoning, risk_assessment, applied, created_at
		FROM optimization_audit
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list optimization audit: %w", err)
	}
	defer rows.Close()

	var recs []domain.OptimizationRecommendation
	for rows.Next() {
		var rec domain.OptimizationRecommendation
		if err := rows.Scan(
			&rec.Service,
			&rec.Action,
			&rec.CurrentAllocation,
			&rec.RecommendedAllocation,
			&rec.ConfidenceScore,
			&rec.Reasoning,
			&rec.RiskAssessment,
			&rec.Applied,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan optimization audit: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
