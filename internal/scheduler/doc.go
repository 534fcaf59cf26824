// Package scheduler планирует назначения готовых задач на воркеров.
//
// Задачи планируются строго по тирам приоритета: верхний тир
// полностью прежде, чем начинается следующий. Гарантия касается
// только порядка диспетчеризации — порядок завершения не ограничен.
//
// Scheduler работает в потоке координатора и единолично мутирует
// состояние воркеров при назначении; передачу назначений пулу
// исполнителей выполняет сам координатор.
package scheduler
