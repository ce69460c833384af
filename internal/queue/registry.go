package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Processor — именованная функция обработки payload.
// nil означает успех; ошибка передаёт item следующему процессору.
type Processor[T any] func(ctx context.Context, payload T) error

// registration — процессор с именем, в порядке регистрации.
type registration[T any] struct {
	name string
	fn   Processor[T]
}

// Registry — упорядоченный реестр процессоров.
//
// Это fallback-цепочка, а не приоритетная: для каждого item процессоры
// пробуются строго в порядке регистрации, пока один не вернёт nil.
// Позволяет положить поверх основного процессора специализированные
// override'ы, не заставляя отправителя знать, какой именно сработает.
type Registry[T any] struct {
	mu    sync.RWMutex
	procs []registration[T]
}

// NewRegistry создаёт пустой реестр.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register добавляет процессор в конец цепочки.
func (r *Registry[T]) Register(name string, fn Processor[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs = append(r.procs, registration[T]{name: name, fn: fn})
}

// Names возвращает имена процессоров в порядке регистрации.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.procs))
	for i, p := range r.procs {
		names[i] = p.name
	}
	return names
}

// Len возвращает количество зарегистрированных процессоров.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.procs)
}

// Process прогоняет payload через цепочку процессоров.
//
// Возвращает nil, как только один процессор отработал успешно.
// Если все вернули ошибку (или запаниковали), возвращает
// ErrAllProcessorsFailed с перечислением причин — item считается
// упавшим для этой попытки drain и подпадает под retry-политику.
func (r *Registry[T]) Process(ctx context.Context, payload T) error {
	r.mu.RLock()
	procs := make([]registration[T], len(r.procs))
	copy(procs, r.procs)
	r.mu.RUnlock()

	if len(procs) == 0 {
		return ErrNoProcessors
	}

	reasons := make([]string, 0, len(procs))
	for _, p := range procs {
		err := r.invoke(ctx, p, payload)
		if err == nil {
			return nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", p.name, err))
	}

	return fmt.Errorf("%w: %s", ErrAllProcessorsFailed, strings.Join(reasons, "; "))
}

// invoke вызывает один процессор, перехватывая панику.
func (r *Registry[T]) invoke(ctx context.Context, p registration[T], payload T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrProcessorPanic, rec)
		}
	}()

	return p.fn(ctx, payload)
}
