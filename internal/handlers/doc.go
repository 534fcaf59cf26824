// Package handlers содержит встроенные handler'ы координатора.
//
// Встроенные типы задач:
//   - http_request — HTTP-вызов внешнего сервиса
//   - delay        — пауза (для ручной расстановки интервалов в батче)
//   - transform    — pass-through данных между задачами
//
// Доменные handler'ы (генерация, загрузка, модерация контента)
// регистрируются встраивающим кодом поверх Defaults().
package handlers
