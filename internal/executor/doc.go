// Package executor выполняет назначенные задачи на ограниченном пуле
// goroutine и отдаёт результаты через канал событий.
//
// Пул не мутирует разделяемое состояние планировщика: task помечается
// RUNNING потоком координатора при отправке, а исход попадает обратно
// к координатору через Outcomes() и применяется там же.
//
// Отмены запущенного handler'а нет: по таймауту task считается упавшим,
// но внешний вызов может продолжать выполняться out-of-band. Handler'ы
// обязаны переносить повторный вызов для той же логической задачи.
package executor
