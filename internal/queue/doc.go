// Package queue содержит очередь ожидающих задач.
//
// Очередь группирует задачи по приоритетным тирам и внутри тира
// сохраняет порядок создания. Задача с незавершёнными зависимостями
// не выдаётся в диспетчеризацию, пока все зависимости не COMPLETED.
package queue
