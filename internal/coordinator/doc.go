// Package coordinator собирает движок воедино: реестр воркеров,
// очередь задач, диспетчер, пул исполнителей, квоты, оптимизатор
// и менеджер повторов.
//
// Модель конкурентности: всё разделяемое состояние (воркеры, очередь,
// статусы задач) мутирует только поток, выполняющий RunBatch. Goroutines
// пула сообщают исходы через канал, который этот поток вычитывает
// синхронно; повторы возвращаются тем же каналом событий по таймеру.
// Координатор не реентерабелен: один активный батч за раз.
package coordinator
