package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
	"github.com/shaiso/Tradomata/internal/queue"
)

// Command DTOs

// SubmitCommandRequest — запрос на отправку команды.
type SubmitCommandRequest struct {
	// ID — клиентский идентификатор для идемпотентной отправки (опционально).
	ID *uuid.UUID `json:"id,omitempty"`

	// Text — текст команды, например "buy 10 AAPL at 190".
	Text string `json:"text"`

	// Priority — приоритет в очереди исполнения (опционально).
	Priority int `json:"priority,omitempty"`
}

// CommandResponse — ответ с командой.
type CommandResponse struct {
	ID              uuid.UUID                `json:"id"`
	Text            string                   `json:"text"`
	Source          string                   `json:"source,omitempty"`
	Priority        int                      `json:"priority"`
	Status          string                   `json:"status"`
	Intent          *domain.Intent           `json:"intent,omitempty"`
	Validation      *domain.ValidationResult `json:"validation,omitempty"`
	Execution       *domain.ExecutionReport  `json:"execution,omitempty"`
	Failure         *domain.Failure          `json:"failure,omitempty"`
	CancelReason    string                   `json:"cancel_reason,omitempty"`
	CancelRequested bool                     `json:"cancel_requested,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	FinishedAt      *time.Time               `json:"finished_at,omitempty"`
}

// CommandFromDomain конвертирует domain.Command в CommandResponse.
func CommandFromDomain(c *domain.Command) CommandResponse {
	if c == nil {
		return CommandResponse{}
	}
	return CommandResponse{
		ID:              c.ID,
		Text:            c.Text,
		Source:          c.Source,
		Priority:        c.Priority,
		Status:          string(c.Status),
		Intent:          c.Intent,
		Validation:      c.Validation,
		Execution:       c.Execution,
		Failure:         c.Failure,
		CancelReason:    string(c.CancelReason),
		CancelRequested: c.CancelRequested,
		CreatedAt:       c.CreatedAt,
		FinishedAt:      c.FinishedAt,
	}
}

// Queue DTOs

// QueueStatsResponse — ответ со статистикой очереди.
type QueueStatsResponse struct {
	Size             int     `json:"size"`
	AveragePriority  float64 `json:"average_priority"`
	OldestAgeMs      int64   `json:"oldest_age_ms"`
	ProcessingActive bool    `json:"processing_active"`
}

// QueueStatsFromDomain конвертирует queue.Stats в QueueStatsResponse.
func QueueStatsFromDomain(s queue.Stats) QueueStatsResponse {
	return QueueStatsResponse{
		Size:             s.Size,
		AveragePriority:  s.AveragePriority,
		OldestAgeMs:      s.OldestAgeMs,
		ProcessingActive: s.ProcessingActive,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CommandText string `json:"command_text"`
	Priority    int    `json:"priority,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CommandText *string `json:"command_text,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ со schedule.
type ScheduleResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	CommandText   string     `json:"command_text"`
	Priority      int        `json:"priority"`
	CronExpr      string     `json:"cron_expr,omitempty"`
	IntervalSec   int        `json:"interval_sec,omitempty"`
	Timezone      string     `json:"timezone"`
	Enabled       bool       `json:"enabled"`
	NextDueAt     *time.Time `json:"next_due_at,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastCommandID *uuid.UUID `json:"last_command_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:            s.ID,
		Name:          s.Name,
		CommandText:   s.CommandText,
		Priority:      s.Priority,
		CronExpr:      s.CronExpr,
		IntervalSec:   s.IntervalSec,
		Timezone:      s.Timezone,
		Enabled:       s.Enabled,
		NextDueAt:     s.NextDueAt,
		LastRunAt:     s.LastRunAt,
		LastCommandID: s.LastCommandID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
