// Package quota следит за суточными и часовыми потолками внешних
// сервисов и разносит запланированные dispatch-времена, чтобы
// не создавать бурсты.
//
// Резервирование оптимистичное: счётчики растут в момент планирования
// и не откатываются по результату выполнения. Запрос поверх суточного
// потолка откладывается (deferred) — это не ошибка и не retry.
package quota
