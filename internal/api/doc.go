// Package api реализует HTTP API движка.
//
// Структура:
//   - handler.go          — Handler с зависимостями
//   - routes.go           — регистрация маршрутов
//   - command_handler.go  — команды: submit, confirm, cancel, статус
//   - schedule_handler.go — CRUD расписаний
//   - dto.go              — request/response структуры
//   - response.go         — JSON-хелперы и коды ошибок
//   - middleware.go       — logging, recovery
//
// API построено на http.ServeMux (Go 1.22+ с методами и path values).
package api
