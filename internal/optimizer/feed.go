package optimizer

import (
	"context"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Feed — источник performance/trend-сигналов.
//
// Опрашивается один раз за цикл оптимизации. Отсутствующие показатели
// приходят нулевыми и заменяются нейтральным 0.5 (см. neutralize).
type Feed interface {
	Signals(ctx context.Context, service string) (domain.ServiceSignals, error)
}

// FeedFunc — адаптер функции к интерфейсу Feed.
type FeedFunc func(ctx context.Context, service string) (domain.ServiceSignals, error)

// Signals вызывает f(ctx, service).
func (f FeedFunc) Signals(ctx context.Context, service string) (domain.ServiceSignals, error) {
	return f(ctx, service)
}

// NeutralFeed — фид без внешнего источника аналитики: все показатели
// нулевые и заменяются нейтральными. Рекомендации при нём остаются
// maintain и не применяются (уверенность ниже порога).
func NeutralFeed() Feed {
	return FeedFunc(func(_ context.Context, _ string) (domain.ServiceSignals, error) {
		return domain.ServiceSignals{}, nil
	})
}

// neutralDefault — замена отсутствующего показателя фида.
const neutralDefault = 0.5

// neutralize возвращает нейтральный default для отсутствующего
// (нулевого либо отрицательного) показателя.
func neutralize(v float64) float64 {
	if v <= 0 {
		return neutralDefault
	}
	return v
}
