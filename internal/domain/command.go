package domain

import (
	"time"

	"github.com/google/uuid"
)

// ValidationResult — результат синхронной валидации intent.
type ValidationResult struct {
	// Valid — прошла ли команда все проверки.
	Valid bool `json:"valid"`

	// Reasons — причины отказа (пусто, если Valid).
	Reasons []string `json:"reasons,omitempty"`
}

// ExecutionReport — отчёт execution backend'а об исполнении.
type ExecutionReport struct {
	// OrderID — идентификатор заявки на стороне backend'а.
	OrderID string `json:"order_id,omitempty"`

	// Symbol — тикер исполненного инструмента.
	Symbol string `json:"symbol,omitempty"`

	// ExecutedQuantity — исполненное количество.
	ExecutedQuantity float64 `json:"executed_quantity,omitempty"`

	// ExecutedPrice — цена исполнения.
	ExecutedPrice float64 `json:"executed_price,omitempty"`

	// Attempts — сколько попыток потребовалось (включая retry в очереди).
	Attempts int `json:"attempts,omitempty"`

	// Detail — произвольный текстовый результат (для quote/portfolio).
	Detail string `json:"detail,omitempty"`
}

// Command — одна команда пользователя, проходящая жизненный цикл
// от получения до исполнения или отказа.
//
// Command создаётся когда:
//   - Пользователь отправляет команду через API/CLI
//   - Scheduler создаёт команду по расписанию
//   - Команда приходит из очереди commands.submitted
//
// Состояние команды мутируется только Orchestrator'ом, который её ведёт.
type Command struct {
	// ID — уникальный идентификатор команды.
	// Повторная отправка того же ID, пока команда нетерминальна,
	// возвращает текущее состояние вместо дубликата.
	ID uuid.UUID `json:"id"`

	// Text — исходный текст команды.
	Text string `json:"text"`

	// Source — источник: "api", "cli", "schedule", "mq".
	Source string `json:"source,omitempty"`

	// Priority — приоритет work item при постановке в очередь.
	Priority int `json:"priority"`

	// Status — текущий статус жизненного цикла.
	Status CommandStatus `json:"status"`

	// Intent — результат разбора (после PARSING).
	Intent *Intent `json:"intent,omitempty"`

	// Validation — результат валидации (после VALIDATING).
	Validation *ValidationResult `json:"validation,omitempty"`

	// Execution — отчёт об исполнении (после SETTLED).
	Execution *ExecutionReport `json:"execution,omitempty"`

	// Failure — типизированная причина отказа (для FAILED).
	Failure *Failure `json:"failure,omitempty"`

	// CancelReason — причина отмены (для CANCELLED): user или timeout.
	CancelReason CancelReason `json:"cancel_reason,omitempty"`

	// CancelRequested — запрошена отмена во время EXECUTING.
	// Backend-вызов может быть уже необратим, поэтому команда остаётся
	// в EXECUTING до фактического исхода ("cancellation requested,
	// outcome pending").
	CancelRequested bool `json:"cancel_requested,omitempty"`

	// CreatedAt — время получения команды.
	CreatedAt time.Time `json:"created_at"`

	// FinishedAt — время достижения терминального статуса.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewCommand создаёт команду в статусе RECEIVED.
func NewCommand(id uuid.UUID, text, source string, priority int) *Command {
	return &Command{
		ID:        id,
		Text:      text,
		Source:    source,
		Priority:  priority,
		Status:    CommandStatusReceived,
		CreatedAt: time.Now(),
	}
}

// IsFinished возвращает true, если команда в терминальном статусе.
func (c *Command) IsFinished() bool {
	return c.Status.IsTerminal()
}

// Duration возвращает время от получения до завершения.
// Возвращает 0, если команда ещё не завершена.
func (c *Command) Duration() time.Duration {
	if c.FinishedAt == nil {
		return 0
	}
	return c.FinishedAt.Sub(c.CreatedAt)
}

// MarkSettled переводит команду в SETTLED с отчётом об исполнении.
func (c *Command) MarkSettled(report *ExecutionReport) {
	now := time.Now()
	c.Status = CommandStatusSettled
	c.Execution = report
	c.FinishedAt = &now
}

// MarkFailed переводит команду в FAILED с типизированной причиной.
func (c *Command) MarkFailed(kind FailureKind, reason string) {
	now := time.Now()
	c.Status = CommandStatusFailed
	c.Failure = &Failure{Kind: kind, Reason: reason}
	c.FinishedAt = &now
}

// MarkCancelled переводит команду в CANCELLED с причиной отмены.
func (c *Command) MarkCancelled(reason CancelReason) {
	now := time.Now()
	c.Status = CommandStatusCancelled
	c.CancelReason = reason
	c.FinishedAt = &now
}
