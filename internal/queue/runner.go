package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/telemetry"
)

// retryPriorityPenalty — фиксированный штраф к приоритету при каждом
// retry: повторно падающие items опускаются относительно свежей работы,
// но не голодают бесконечно — штраф ограничен потолком MaxRetries.
const retryPriorityPenalty = 10

// Runner — единственный drain-цикл очереди.
//
// Конечный автомат Idle ⇄ Draining: пока очередь не пуста, runner
// снимает голову, передаёт её Registry и применяет retry-политику.
// Когда очередь осушена, runner возвращается в Idle; любой следующий
// Enqueue перезапускает осушение. Повторный вход в drain заблокирован
// guard'ом — одновременно активен максимум один цикл.
type Runner[T any] struct {
	queue    *Queue[T]
	registry *Registry[T]

	// Re-entrancy guard
	draining   bool
	drainingMu sync.Mutex

	// Отложенные retry-вставки (itemID → таймер)
	timers   map[uuid.UUID]*time.Timer
	timersMu sync.Mutex

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// NewRunner создаёт runner для очереди и реестра.
func NewRunner[T any](q *Queue[T], registry *Registry[T], logger *slog.Logger) *Runner[T] {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner[T]{
		queue:    q,
		registry: registry,
		timers:   make(map[uuid.UUID]*time.Timer),
		logger:   logger,
	}
}

// Start запускает цикл runner'а.
func (r *Runner[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.logger.Info("starting queue runner",
		"processors", r.registry.Names(),
		"max_size", r.queue.cfg.MaxSize,
		"inter_item_delay", r.queue.cfg.InterItemDelay,
	)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop(ctx)
	}()

	return nil
}

// Stop останавливает runner и отменяет отложенные retry.
func (r *Runner[T]) Stop() {
	r.stoppedMu.Lock()
	r.stopped = true
	r.stoppedMu.Unlock()

	r.logger.Info("stopping queue runner...")

	if r.cancelFunc != nil {
		r.cancelFunc()
	}

	// Отменяем запланированные retry-вставки
	r.timersMu.Lock()
	pending := len(r.timers)
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	r.timersMu.Unlock()

	r.wg.Wait()

	r.logger.Info("queue runner stopped",
		"cancelled_retries", pending,
		"queued", r.queue.Len(),
	)
}

// IsStopped проверяет, остановлен ли runner.
func (r *Runner[T]) IsStopped() bool {
	r.stoppedMu.RLock()
	defer r.stoppedMu.RUnlock()
	return r.stopped
}

// loop — цикл ожидания работы.
func (r *Runner[T]) loop(ctx context.Context) {
	// Осушаем сразу при старте (подхватываем items, поставленные до запуска)
	r.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.queue.Wake():
			r.drain(ctx)
		}
	}
}

// beginDrain пытается занять guard drain-цикла.
// Возвращает false, если осушение уже идёт.
func (r *Runner[T]) beginDrain() bool {
	r.drainingMu.Lock()
	defer r.drainingMu.Unlock()
	if r.draining {
		return false
	}
	r.draining = true
	return true
}

// endDrain освобождает guard drain-цикла.
func (r *Runner[T]) endDrain() {
	r.drainingMu.Lock()
	defer r.drainingMu.Unlock()
	r.draining = false
}

// drain осушает очередь до пустоты.
//
// Guard блокирует второй одновременный drain-цикл: если осушение уже
// идёт, новая работа будет подхвачена текущим циклом.
func (r *Runner[T]) drain(ctx context.Context) {
	if !r.beginDrain() {
		return
	}
	defer r.endDrain()

	r.queue.setProcessing(true)
	defer r.queue.setProcessing(false)

	for {
		if ctx.Err() != nil {
			return
		}

		item := r.queue.pop()
		if item == nil {
			// Очередь пуста — возвращаемся в Idle
			return
		}

		r.processItem(ctx, item)

		// Троттлинг между items
		select {
		case <-time.After(r.queue.cfg.InterItemDelay):
		case <-ctx.Done():
			return
		}
	}
}

// processItem обрабатывает один item и применяет retry-политику.
func (r *Runner[T]) processItem(ctx context.Context, item *Item[T]) {
	err := r.registry.Process(ctx, item.Payload)
	if err == nil {
		telemetry.ItemsProcessed.WithLabelValues("succeeded").Inc()
		r.logger.Debug("item processed",
			"item_id", item.ID,
			"attempt", item.Attempts(),
		)
		item.report(OutcomeSucceeded, nil)
		return
	}

	r.handleFailure(item, err)
}

// handleFailure применяет retry-политику к упавшему item.
func (r *Runner[T]) handleFailure(item *Item[T], procErr error) {
	if item.RetryCount < item.MaxRetries {
		item.RetryCount++
		item.Priority -= retryPriorityPenalty

		delay := backoffDelay(r.queue.cfg.RetryBaseDelay, item.RetryCount)
		telemetry.QueueRetries.Inc()

		r.logger.Warn("item failed, retry scheduled",
			"item_id", item.ID,
			"retry", item.RetryCount,
			"max_retries", item.MaxRetries,
			"delay", delay,
			"error", procErr,
		)

		r.scheduleReinsert(item, delay)
		return
	}

	// Retry исчерпаны — item окончательно отбрасывается,
	// отправитель получает терминальный отказ.
	telemetry.ItemsProcessed.WithLabelValues("exhausted").Inc()

	r.logger.Warn("item dropped, retries exhausted",
		"item_id", item.ID,
		"attempts", item.Attempts(),
		"error", procErr,
	)

	item.report(OutcomeExhausted, fmt.Errorf("%w: %v", ErrRetriesExhausted, procErr))
}

// scheduleReinsert планирует отложенную повторную вставку item.
// Это deferred re-enqueue, не немедленный retry: busy-loop по
// стабильно падающей зависимости исключён.
func (r *Runner[T]) scheduleReinsert(item *Item[T], delay time.Duration) {
	r.timersMu.Lock()
	defer r.timersMu.Unlock()

	r.timers[item.ID] = time.AfterFunc(delay, func() {
		r.timersMu.Lock()
		delete(r.timers, item.ID)
		r.timersMu.Unlock()

		r.queue.reinsert(item)
	})
}

// backoffDelay вычисляет задержку перед retry:
// delay = base * 2^(retryCount-1).
func backoffDelay(base time.Duration, retryCount int) time.Duration {
	delay := base
	for i := 1; i < retryCount; i++ {
		delay *= 2
	}
	return delay
}
