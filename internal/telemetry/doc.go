// Package telemetry обеспечивает наблюдаемость движка команд.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики очереди и жизненного цикла команд
//
// Все сервисы используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry
