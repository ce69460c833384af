package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule — расписание автоматической отправки команды.
//
// Schedule позволяет отправлять команду:
// - По cron-выражению: "0 9 * * 1-5" (будни в 9:00)
// - По интервалу: каждые N секунд
//
// Scheduler проверяет next_due_at и отправляет команду, когда время подошло.
type Schedule struct {
	// ID — уникальный идентификатор schedule.
	ID uuid.UUID `json:"id"`

	// Name — имя расписания для удобства.
	Name string `json:"name,omitempty"`

	// CommandText — текст команды, отправляемой при срабатывании.
	// Например: "buy 5 AAPL" или "quote SPY".
	CommandText string `json:"command_text"`

	// Priority — приоритет создаваемой команды в очереди.
	Priority int `json:"priority"`

	// CronExpr — cron-выражение.
	// Формат: "минуты часы дни месяцы дни_недели"
	// Если задан CronExpr, IntervalSec игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах между срабатываниями.
	// Используется если CronExpr не задан.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — часовой пояс для вычисления времени.
	// По умолчанию: "UTC".
	Timezone string `json:"timezone"`

	// Enabled — флаг активности расписания.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующего срабатывания.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastRunAt — время последнего срабатывания.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// LastCommandID — ID последней созданной команды.
	LastCommandID *uuid.UUID `json:"last_command_id,omitempty"`

	// CreatedAt — время создания schedule.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *Schedule) IsInterval() bool {
	return !s.IsCron() && s.IntervalSec > 0
}

// IsDue возвращает true, если расписание должно сработать к моменту now.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Enabled && s.NextDueAt != nil && !s.NextDueAt.After(now)
}

// RecordCommand фиксирует срабатывание: последнюю команду и следующее
// время выполнения.
func (s *Schedule) RecordCommand(commandID uuid.UUID, nextDue time.Time) {
	now := time.Now()
	s.LastRunAt = &now
	s.LastCommandID = &commandID
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}
