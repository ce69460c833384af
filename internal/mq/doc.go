// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений
//
// Типы сообщений:
//   - command.submitted — новая команда ожидает обработки движком
//   - stage.changed     — команда перешла между стадиями жизненного цикла
//
// Exchanges:
//   - tradomata.commands — входящие команды
//   - tradomata.events   — события жизненного цикла (observer sink)
//   - tradomata.dlq      — dead letter queue
//
// Движок работает и без RabbitMQ (HTTP-only ingestion): все
// MQ-зависимости nil-safe на уровне вызывающих компонентов.
package mq
