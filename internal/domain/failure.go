package domain

import "fmt"

// FailureKind — типизированная причина отказа команды.
//
// Kind определяет, на какой стадии и почему команда упала.
// Reason всегда содержит человекочитаемое объяснение.
type FailureKind string

const (
	// FailureParse — текст команды не распознан или некорректен.
	// Терминальная ошибка, retry не выполняется.
	FailureParse FailureKind = "PARSE_FAILURE"

	// FailureValidation — нарушение бизнес-правила
	// (например, недостаточно средств). Терминальная ошибка.
	FailureValidation FailureKind = "VALIDATION_FAILURE"

	// FailureBackend — ошибка внешнего execution backend'а.
	// Retriable только на пути через приоритетную очередь.
	FailureBackend FailureKind = "BACKEND_FAILURE"

	// FailureQueueEvicted — work item вытеснен из переполненной очереди.
	// Всегда сообщается отправителю, никогда не теряется молча.
	FailureQueueEvicted FailureKind = "QUEUE_EVICTED"

	// FailureRetriesExhausted — все попытки retry исчерпаны.
	// Отличается от единичной FailureBackend: это окончательный
	// конец жизненного цикла work item.
	FailureRetriesExhausted FailureKind = "RETRIES_EXHAUSTED"
)

// Failure — терминальная ошибка команды.
type Failure struct {
	// Kind — типизированная причина.
	Kind FailureKind `json:"kind"`

	// Reason — человекочитаемое объяснение для пользователя.
	Reason string `json:"reason"`
}

// String возвращает строковое представление Failure.
func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

// CancelReason — причина отмены команды.
//
// Таймаут подтверждения и явная отмена пользователем различаются
// в отчётном статусе.
type CancelReason string

const (
	// CancelReasonUser — явная отмена пользователем.
	CancelReasonUser CancelReason = "user"

	// CancelReasonTimeout — подтверждение не пришло в отведённое окно.
	CancelReasonTimeout CancelReason = "timeout"
)
