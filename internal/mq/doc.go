// Package mq — интеграция с RabbitMQ.
//
// Координатор потребляет батчи задач из очереди tasks.batches и
// публикует терминальные alert'ы и решения оптимизатора внешним
// потребителям (дежурные, дашборды). Недоступность брокера не влияет
// на живое планирование — публикация best-effort с логированием.
package mq
