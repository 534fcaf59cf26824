// Package cli реализует инструмент командной строки Conveyor.
//
// # Обзор
//
// CLI — операторская утилита координатора. Отчётные команды читают
// Postgres напрямую (те же репозитории, что пишет координатор),
// submit публикует батч в RabbitMQ.
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.Encoder с отступами) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: conveyor report usage --json | jq .
//
// ## Commands
//
//   - report usage:  суточные снапшоты потребления квот
//   - report audit:  решения циклов оптимизации
//   - report alerts: терминальные alert'ы
//   - submit:        публикация батча задач из YAML-файла
//
// Каждая группа создаётся через фабричную функцию (NewReportCmd и
// т.д.), принимающую outputFn — замыкание для ленивого создания
// Output после парсинга PersistentFlags.
package cli
