// Package scheduler реализует планировщик команд по расписанию.
//
// Scheduler периодически (по тику из main) выбирает due schedules
// из БД, публикует command.submitted в RabbitMQ и сдвигает next_due_at
// по cron-выражению или интервалу.
//
// Идемпотентность обеспечивается детерминированным ID команды,
// выведенным из пары (schedule_id, due-время): несколько инстансов
// планировщика или повторный тик не создадут дубликатов, движок
// отбросит повторный Submit того же ID.
package scheduler
