package queue

import "errors"

// Ошибки очереди.
var (
	// ErrQueueEvicted — item вытеснен из переполненной очереди.
	ErrQueueEvicted = errors.New("evicted due to queue saturation")

	// ErrRetriesExhausted — все попытки retry исчерпаны.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")

	// ErrNoProcessors — в реестре нет ни одного процессора.
	ErrNoProcessors = errors.New("no processors registered")

	// ErrAllProcessorsFailed — все процессоры вернули ошибку.
	ErrAllProcessorsFailed = errors.New("all processors failed")

	// ErrProcessorPanic — процессор запаниковал (перехвачено).
	ErrProcessorPanic = errors.New("processor panicked")
)
