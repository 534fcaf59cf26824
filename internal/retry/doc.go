// Package retry владеет backoff-таблицей и решением о терминальном
// отказе: когда task исчерпал бюджет повторов, создаётся alert-запись
// и передаётся alert-коллаборатору.
package retry
