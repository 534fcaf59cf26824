package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/repo"
)

// dateLayout — формат дат во флагах отчётов.
const dateLayout = "2006-01-02"

// NewReportCmd создаёт группу команд report.
func NewReportCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Отчёты по персистированным данным координатора",
	}

	cmd.AddCommand(
		newReportUsageCmd(outputFn),
		newReportAuditCmd(outputFn),
		newReportAlertsCmd(outputFn),
	)

	return cmd
}

// newReportUsageCmd — report usage: снапшоты потребления квот.
func newReportUsageCmd(outputFn func() *Output) *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Суточные снапшоты потребления квот",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := outputFn()

			to := time.Now()
			from := to.AddDate(0, 0, -7)
			var err error
			if fromStr != "" {
				if from, err = time.Parse(dateLayout, fromStr); err != nil {
					return fmt.Errorf("parse --from: %w", err)
				}
			}
			if toStr != "" {
				if to, err = time.Parse(dateLayout, toStr); err != nil {
					return fmt.Errorf("parse --to: %w", err)
				}
			}

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			snaps, err := repo.NewUsageRepo(pool).ListByPeriod(ctx, from, to)
			if err != nil {
				return err
			}

			headers := []string{"DATE", "SERVICE", "LIMIT", "USAGE", "HOURLY"}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					s.PeriodDate.Format(dateLayout),
					s.Service,
					strconv.Itoa(s.DailyLimit),
					strconv.Itoa(s.Usage),
					strconv.Itoa(s.HourlyUsage),
				})
			}
			out.Print(headers, rows, snaps)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Начало периода (YYYY-MM-DD, default: 7 дней назад)")
	cmd.Flags().StringVar(&toStr, "to", "", "Конец периода (YYYY-MM-DD, default: сегодня)")

	return cmd
}

// newReportAuditCmd — report audit: решения циклов оптимизации.
func newReportAuditCmd(outputFn func() *Output) *cobra.Command {
	var since time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Решения циклов оптимизации аллокаций",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := outputFn()

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			recs, err := repo.NewAuditRepo(pool).ListSince(ctx, time.Now().Add(-since), limit)
			if err != nil {
				return err
			}

			headers := []string{"TIME", "SERVICE", "ACTION", "CURRENT", "RECOMMENDED", "CONFIDENCE", "APPLIED"}
			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, []string{
					r.CreatedAt.Format(time.RFC3339),
					r.Service,
					string(r.Action),
					strconv.Itoa(r.CurrentAllocation),
					strconv.Itoa(r.RecommendedAllocation),
					fmt.Sprintf("%.2f", r.ConfidenceScore),
					strconv.FormatBool(r.Applied),
				})
			}
			out.Print(headers, rows, recs)
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 7*24*time.Hour, "Глубина выборки (например, 24h)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Максимум записей")

	return cmd
}

// newReportAlertsCmd — report alerts: терминальные alert'ы.
func newReportAlertsCmd(outputFn func() *Output) *cobra.Command {
	var since time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Терминальные alert'ы упавших задач",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := outputFn()

			pool, err := repo.NewPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			alerts, err := repo.NewAlertRepo(pool).ListSince(ctx, time.Now().Add(-since), limit)
			if err != nil {
				return err
			}

			headers := []string{"TIME", "TASK", "TYPE", "ATTEMPTS", "ERROR"}
			rows := make([][]string, 0, len(alerts))
			for _, a := range alerts {
				rows = append(rows, []string{
					a.CreatedAt.Format(time.RFC3339),
					a.TaskID.String(),
					a.TaskType,
					strconv.Itoa(len(a.RetryHistory)),
					a.Error,
				})
			}
			out.Print(headers, rows, alerts)
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Глубина выборки (например, 24h)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Максимум записей")

	return cmd
}
