package domain

import "time"

// QuotaState — состояние квоты одного внешнего сервиса.
//
// Резервирование оптимистичное: счётчики увеличиваются при планировании
// запроса и не откатываются по результату выполнения.
type QuotaState struct {
	// Service — имя внешнего сервиса ("youtube", "tiktok", ...).
	Service string `json:"service"`

	// DailyLimit — потолок операций за сутки (= текущая аллокация).
	DailyLimit int `json:"daily_limit"`

	// CurrentUsage — зарезервировано операций в текущих сутках.
	CurrentUsage int `json:"current_usage"`

	// HourlyLimit — потолок операций за час.
	HourlyLimit int `json:"hourly_limit"`

	// CurrentHourlyUsage — зарезервировано операций в текущем часе.
	CurrentHourlyUsage int `json:"current_hourly_usage"`

	// ResetTime — ближайшая граница суточного rollover'а.
	ResetTime time.Time `json:"reset_time"`
}

// DailyExhausted возвращает true, если суточный потолок достигнут.
func (q *QuotaState) DailyExhausted() bool {
	return q.CurrentUsage >= q.DailyLimit
}

// HourlyExhausted возвращает true, если часовой потолок достигнут.
func (q *QuotaState) HourlyExhausted() bool {
	return q.CurrentHourlyUsage >= q.HourlyLimit
}

// UsageSnapshot — финальные счётчики за истёкший период.
// Персистится при rollover'е, читается только для отчётности.
type UsageSnapshot struct {
	// Service — имя сервиса.
	Service string `json:"service"`

	// PeriodDate — дата истёкшего периода (ключ записи).
	PeriodDate time.Time `json:"period_date"`

	// DailyLimit — действовавший потолок.
	DailyLimit int `json:"daily_limit"`

	// Usage — финальное суточное потребление.
	Usage int `json:"usage"`

	// HourlyUsage — потребление в последнем часе периода.
	HourlyUsage int `json:"hourly_usage"`
}
