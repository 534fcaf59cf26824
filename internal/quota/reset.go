package quota

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultResetExpr — суточный rollover в полночь UTC.
const DefaultResetExpr = "0 0 * * *"

// cronParser — парсер cron-выражений (5 полей, без секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextReset вычисляет ближайшую границу rollover'а после from.
func NextReset(expr string, from time.Time) (time.Time, error) {
	if expr == "" {
		expr = DefaultResetExpr
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse reset expression %q: %w", expr, err)
	}
	return schedule.Next(from).UTC(), nil
}

// ValidateResetExpr проверяет валидность cron-выражения rollover'а.
func ValidateResetExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid reset expression %q: %w", expr, err)
	}
	return nil
}

// hourBoundary возвращает начало следующего часа после t.
func hourBoundary(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
