package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/telemetry"
)

// Default configuration values.
const (
	defaultMaxSize        = 100
	defaultPriority       = 50
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultInterItemDelay = 100 * time.Millisecond
)

// Config — конфигурация очереди. Неизменяема после конструирования.
type Config struct {
	// MaxSize — жёсткий потолок размера очереди (default: 100).
	// Вставка сверх потолка вытесняет минимально-приоритетный item.
	MaxSize int

	// DefaultPriority — приоритет для отправителей без собственного
	// мнения (default: 50).
	DefaultPriority int

	// MaxRetries — потолок retry по умолчанию (default: 3).
	MaxRetries int

	// RetryBaseDelay — база экспоненциального backoff (default: 500ms).
	RetryBaseDelay time.Duration

	// InterItemDelay — пауза между обработкой соседних items (default: 100ms).
	InterItemDelay time.Duration
}

// withDefaults возвращает копию конфигурации с заполненными default'ами.
func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = defaultMaxSize
	}
	if c.DefaultPriority == 0 {
		c.DefaultPriority = defaultPriority
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.InterItemDelay <= 0 {
		c.InterItemDelay = defaultInterItemDelay
	}
	return c
}

// Stats — статистика очереди на момент вызова.
type Stats struct {
	// Size — текущее количество items в очереди.
	Size int `json:"size"`

	// AveragePriority — средний приоритет находящихся в очереди items.
	AveragePriority float64 `json:"average_priority"`

	// OldestAgeMs — возраст самого старого item в миллисекундах.
	OldestAgeMs int64 `json:"oldest_age_ms"`

	// ProcessingActive — идёт ли drain-цикл прямо сейчас.
	ProcessingActive bool `json:"processing_active"`
}

// Queue — ограниченная приоритетная очередь work items.
//
// Backing store — binary heap с порядком (priority desc, seq asc),
// что даёт O(log n) на вставку/извлечение. Все мутации сериализованы
// мьютексом: Enqueue/Remove/UpdatePriority безопасно перемежаются
// с активным drain-циклом runner'а.
type Queue[T any] struct {
	cfg Config

	mu         sync.Mutex
	items      itemHeap[T]
	byID       map[uuid.UUID]*Item[T]
	seq        uint64
	processing bool

	// wakeCh будит runner при появлении работы.
	wakeCh chan struct{}
}

// New создаёт очередь с указанной конфигурацией.
func New[T any](cfg Config) *Queue[T] {
	return &Queue[T]{
		cfg:    cfg.withDefaults(),
		byID:   make(map[uuid.UUID]*Item[T]),
		wakeCh: make(chan struct{}, 1),
	}
}

// Config возвращает действующую конфигурацию очереди.
func (q *Queue[T]) Config() Config {
	return q.cfg
}

// DefaultPriority возвращает приоритет по умолчанию.
func (q *Queue[T]) DefaultPriority() int {
	return q.cfg.DefaultPriority
}

// Enqueue ставит payload в очередь и возвращает ID нового item.
//
// maxRetries < 0 применяет Config.MaxRetries. callback (опционально)
// получит терминальный исход item: успех, вытеснение или исчерпание
// retry. Если очередь заполнена, перед вставкой вытесняется item
// с минимальным приоритетом (при равенстве — самый старый); его
// отправитель уведомляется через callback. Вставка будит runner,
// если тот простаивает.
func (q *Queue[T]) Enqueue(payload T, priority, maxRetries int, callback func(Outcome)) uuid.UUID {
	if maxRetries < 0 {
		maxRetries = q.cfg.MaxRetries
	}

	item := &Item[T]{
		ID:         uuid.New(),
		Payload:    payload,
		Priority:   priority,
		MaxRetries: maxRetries,
		callback:   callback,
	}

	victim := q.insert(item)

	// Уведомляем жертву вне блокировки
	if victim != nil {
		telemetry.QueueEvictions.Inc()
		victim.report(OutcomeEvicted, ErrQueueEvicted)
	}

	q.wake()
	return item.ID
}

// insert добавляет item в backing store, при необходимости вытесняя
// минимально-приоритетный. Возвращает жертву вытеснения (или nil).
func (q *Queue[T]) insert(item *Item[T]) *Item[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	var victim *Item[T]
	if len(q.items) >= q.cfg.MaxSize {
		victim = q.evictLocked()
	}

	q.seq++
	item.seq = q.seq
	item.EnqueuedAt = time.Now()

	heap.Push(&q.items, item)
	q.byID[item.ID] = item

	telemetry.QueueDepth.Set(float64(len(q.items)))
	return victim
}

// evictLocked удаляет item с минимальным приоритетом (tie-break —
// самый старый) и возвращает его. Вызывается под q.mu.
func (q *Queue[T]) evictLocked() *Item[T] {
	if len(q.items) == 0 {
		return nil
	}

	// Минимум ищем линейным сканом: heap упорядочен по максимуму,
	// а размеры очереди — сотни, не миллионы.
	victimIdx := 0
	for i := 1; i < len(q.items); i++ {
		v, c := q.items[victimIdx], q.items[i]
		if c.Priority < v.Priority || (c.Priority == v.Priority && c.seq < v.seq) {
			victimIdx = i
		}
	}

	victim := heap.Remove(&q.items, victimIdx).(*Item[T])
	delete(q.byID, victim.ID)
	return victim
}

// reinsert возвращает item в очередь после retry-задержки.
// Item сохраняет ID и RetryCount, но получает новое время вставки.
func (q *Queue[T]) reinsert(item *Item[T]) {
	victim := q.insert(item)
	if victim != nil {
		telemetry.QueueEvictions.Inc()
		victim.report(OutcomeEvicted, ErrQueueEvicted)
	}
	q.wake()
}

// Remove вручную удаляет item до начала его обработки.
// Возвращает false, если item уже не в очереди (обрабатывается или удалён).
func (q *Queue[T]) Remove(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.byID[id]
	if !ok {
		return false
	}

	heap.Remove(&q.items, item.heapIndex)
	delete(q.byID, id)
	telemetry.QueueDepth.Set(float64(len(q.items)))
	return true
}

// UpdatePriority меняет приоритет находящегося в очереди item.
// Возвращает false, если item не найден.
func (q *Queue[T]) UpdatePriority(id uuid.UUID, priority int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.byID[id]
	if !ok {
		return false
	}

	item.Priority = priority
	heap.Fix(&q.items, item.heapIndex)
	return true
}

// Len возвращает текущий размер очереди.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stats возвращает статистику очереди.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := Stats{
		Size:             len(q.items),
		ProcessingActive: q.processing,
	}

	if len(q.items) == 0 {
		return st
	}

	var sum int
	oldest := q.items[0].EnqueuedAt
	for _, item := range q.items {
		sum += item.Priority
		if item.EnqueuedAt.Before(oldest) {
			oldest = item.EnqueuedAt
		}
	}

	st.AveragePriority = float64(sum) / float64(len(q.items))
	st.OldestAgeMs = time.Since(oldest).Milliseconds()
	return st
}

// pop снимает голову очереди (максимальный приоритет, затем самый
// старый). Возвращает nil, если очередь пуста. Используется runner'ом.
func (q *Queue[T]) pop() *Item[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	item := heap.Pop(&q.items).(*Item[T])
	delete(q.byID, item.ID)
	telemetry.QueueDepth.Set(float64(len(q.items)))
	return item
}

// setProcessing выставляет флаг активного drain-цикла.
func (q *Queue[T]) setProcessing(active bool) {
	q.mu.Lock()
	q.processing = active
	q.mu.Unlock()
}

// wake будит runner (неблокирующе).
func (q *Queue[T]) wake() {
	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
}

// Wake возвращает канал пробуждения для runner'а.
func (q *Queue[T]) Wake() <-chan struct{} {
	return q.wakeCh
}

// --- heap implementation ---

// itemHeap — max-heap по (Priority desc, seq asc).
type itemHeap[T any] []*Item[T]

func (h itemHeap[T]) Len() int { return len(h) }

func (h itemHeap[T]) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *itemHeap[T]) Push(x any) {
	item := x.(*Item[T])
	item.heapIndex = len(*h)
	*h = append(*h, item)
}

func (h *itemHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.heapIndex = -1
	*h = old[:n-1]
	return item
}
