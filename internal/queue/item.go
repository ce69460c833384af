package queue

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus — терминальный результат work item.
type OutcomeStatus string

const (
	// OutcomeSucceeded — item успешно обработан процессором.
	OutcomeSucceeded OutcomeStatus = "SUCCEEDED"

	// OutcomeEvicted — item вытеснен из переполненной очереди.
	OutcomeEvicted OutcomeStatus = "EVICTED"

	// OutcomeExhausted — все попытки retry исчерпаны.
	OutcomeExhausted OutcomeStatus = "EXHAUSTED"
)

// Outcome — терминальный исход work item, передаваемый отправителю.
//
// Item никогда не исчезает молча: успех, вытеснение и исчерпание retry
// всегда доставляются через callback, переданный при Enqueue.
type Outcome struct {
	// ItemID — идентификатор item.
	ItemID uuid.UUID

	// Status — терминальный результат.
	Status OutcomeStatus

	// Attempts — сколько раз item передавался процессорам.
	Attempts int

	// Err — причина отказа (nil при успехе).
	Err error
}

// Item — одна единица отложенной работы в очереди.
//
// Очередь владеет item'ом эксклюзивно с момента Enqueue; на время
// обработки владение переходит процессору, после чего item либо
// удаляется (успех, исчерпание retry), либо возвращается в очередь
// (запланированный retry).
type Item[T any] struct {
	// ID — уникальный идентификатор item.
	ID uuid.UUID

	// Payload — полезная нагрузка, очередь её не интерпретирует.
	Payload T

	// Priority — приоритет: больше — срочнее.
	// Уменьшается на фиксированный штраф при каждом retry.
	Priority int

	// EnqueuedAt — время (пере)вставки. Tie-break при равном приоритете.
	EnqueuedAt time.Time

	// RetryCount — сколько retry уже запланировано. Никогда не
	// превышает MaxRetries.
	RetryCount int

	// MaxRetries — потолок retry для этого item.
	MaxRetries int

	// callback — уведомление отправителя о терминальном исходе.
	callback func(Outcome)

	// seq — монотонный счётчик вставки, tie-break в heap.
	seq uint64

	// heapIndex — позиция в heap (поддерживается itemHeap).
	heapIndex int
}

// Attempts возвращает число попыток обработки, включая первую.
func (it *Item[T]) Attempts() int {
	return it.RetryCount + 1
}

// report доставляет терминальный исход отправителю (nil-safe).
func (it *Item[T]) report(status OutcomeStatus, err error) {
	if it.callback == nil {
		return
	}
	it.callback(Outcome{
		ItemID:   it.ID,
		Status:   status,
		Attempts: it.Attempts(),
		Err:      err,
	})
}
