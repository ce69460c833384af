// Package backend определяет контракт внешнего execution backend'а
// и поставляет paper-реализацию для разработки и тестов.
//
// Движок вызывает Backend как непрозрачный асинхронный вызов:
// успех/ошибка плюс цена и количество. Retry ошибок backend'а —
// ответственность приоритетной очереди, не самого backend'а.
package backend
