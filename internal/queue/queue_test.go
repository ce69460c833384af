package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// --- Config Tests ---

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.MaxSize != defaultMaxSize {
		t.Errorf("expected max size %d, got %d", defaultMaxSize, cfg.MaxSize)
	}
	if cfg.DefaultPriority != defaultPriority {
		t.Errorf("expected default priority %d, got %d", defaultPriority, cfg.DefaultPriority)
	}
	if cfg.MaxRetries != defaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", defaultMaxRetries, cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != defaultRetryBaseDelay {
		t.Errorf("expected retry base delay %v, got %v", defaultRetryBaseDelay, cfg.RetryBaseDelay)
	}
	if cfg.InterItemDelay != defaultInterItemDelay {
		t.Errorf("expected inter item delay %v, got %v", defaultInterItemDelay, cfg.InterItemDelay)
	}
}

func TestConfig_WithDefaults_Custom(t *testing.T) {
	cfg := Config{
		MaxSize:        5,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
	}.withDefaults()

	if cfg.MaxSize != 5 {
		t.Errorf("expected max size 5, got %d", cfg.MaxSize)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("expected max retries 1, got %d", cfg.MaxRetries)
	}
	// Незаполненные поля получают default'ы
	if cfg.DefaultPriority != defaultPriority {
		t.Errorf("expected default priority %d, got %d", defaultPriority, cfg.DefaultPriority)
	}
}

// --- Queue Tests ---

func TestQueue_EnqueuePop_PriorityOrder(t *testing.T) {
	q := New[string](Config{})

	q.Enqueue("low", 10, -1, nil)
	q.Enqueue("high", 90, -1, nil)
	q.Enqueue("mid", 50, -1, nil)

	if q.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", q.Len())
	}

	// Извлечение строго по убыванию приоритета
	for _, want := range []string{"high", "mid", "low"} {
		item := q.pop()
		if item == nil {
			t.Fatal("expected item, got nil")
		}
		if item.Payload != want {
			t.Errorf("expected %q, got %q", want, item.Payload)
		}
	}

	if q.pop() != nil {
		t.Error("expected nil from empty queue")
	}
}

func TestQueue_EqualPriority_FIFO(t *testing.T) {
	q := New[int](Config{})

	// При равном приоритете выигрывает вставленный раньше
	q.Enqueue(1, 50, -1, nil)
	q.Enqueue(2, 50, -1, nil)
	q.Enqueue(3, 50, -1, nil)

	for _, want := range []int{1, 2, 3} {
		item := q.pop()
		if item.Payload != want {
			t.Errorf("expected %d, got %d", want, item.Payload)
		}
	}
}

func TestQueue_Eviction_LowestPriority(t *testing.T) {
	q := New[string](Config{MaxSize: 3})

	var evicted []Outcome
	callback := func(out Outcome) { evicted = append(evicted, out) }

	q.Enqueue("a", 30, -1, callback)
	q.Enqueue("b", 10, -1, callback) // минимальный приоритет — жертва
	q.Enqueue("c", 50, -1, callback)

	// Очередь полна: четвёртая вставка вытесняет "b"
	q.Enqueue("d", 40, -1, callback)

	if q.Len() != 3 {
		t.Errorf("expected 3 items after eviction, got %d", q.Len())
	}
	if len(evicted) != 1 {
		t.Fatalf("expected 1 eviction, got %d", len(evicted))
	}
	if evicted[0].Status != OutcomeEvicted {
		t.Errorf("expected EVICTED outcome, got %s", evicted[0].Status)
	}

	// "b" действительно ушёл
	for _, want := range []string{"c", "d", "a"} {
		if item := q.pop(); item.Payload != want {
			t.Errorf("expected %q, got %q", want, item.Payload)
		}
	}
}

func TestQueue_Eviction_TieBreakOldest(t *testing.T) {
	q := New[string](Config{MaxSize: 2})

	var gotEviction bool
	first := q.Enqueue("first", 10, -1, func(out Outcome) {
		gotEviction = true
		if out.Status != OutcomeEvicted {
			t.Errorf("expected EVICTED, got %s", out.Status)
		}
	})
	q.Enqueue("second", 10, -1, nil)

	// Равный минимальный приоритет: жертва — самый старый ("first")
	q.Enqueue("third", 10, -1, nil)

	if !gotEviction {
		t.Error("oldest item should be evicted")
	}
	if q.Remove(first) {
		t.Error("evicted item should not be removable")
	}
}

func TestQueue_Eviction_NewItemLowerThanAll(t *testing.T) {
	q := New[string](Config{MaxSize: 2})

	q.Enqueue("a", 90, -1, nil)
	q.Enqueue("b", 80, -1, nil)

	// Вставка ниже всех всё равно проходит: жертва выбирается
	// среди уже стоящих в очереди
	q.Enqueue("c", 5, -1, nil)

	if q.Len() != 2 {
		t.Errorf("expected 2 items, got %d", q.Len())
	}

	if item := q.pop(); item.Payload != "a" {
		t.Errorf("expected a, got %q", item.Payload)
	}
	if item := q.pop(); item.Payload != "c" {
		t.Errorf("expected c to survive, got %q", item.Payload)
	}
}

func TestQueue_Remove(t *testing.T) {
	q := New[string](Config{})

	id := q.Enqueue("target", 50, -1, nil)
	q.Enqueue("other", 40, -1, nil)

	if !q.Remove(id) {
		t.Error("Remove should succeed for queued item")
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 item after removal, got %d", q.Len())
	}
	if q.Remove(id) {
		t.Error("second Remove should fail")
	}
	if q.Remove(uuid.New()) {
		t.Error("Remove of unknown ID should fail")
	}
}

func TestQueue_UpdatePriority(t *testing.T) {
	q := New[string](Config{})

	q.Enqueue("a", 50, -1, nil)
	id := q.Enqueue("b", 10, -1, nil)

	if !q.UpdatePriority(id, 99) {
		t.Fatal("UpdatePriority should succeed")
	}

	// После повышения приоритета "b" выходит первым
	if item := q.pop(); item.Payload != "b" {
		t.Errorf("expected b first after priority bump, got %q", item.Payload)
	}

	if q.UpdatePriority(uuid.New(), 1) {
		t.Error("UpdatePriority of unknown ID should fail")
	}
}

func TestQueue_Stats(t *testing.T) {
	q := New[string](Config{})

	stats := q.Stats()
	if stats.Size != 0 {
		t.Errorf("expected size 0, got %d", stats.Size)
	}
	if stats.AveragePriority != 0 {
		t.Errorf("expected average priority 0, got %f", stats.AveragePriority)
	}

	q.Enqueue("a", 40, -1, nil)
	q.Enqueue("b", 60, -1, nil)

	stats = q.Stats()
	if stats.Size != 2 {
		t.Errorf("expected size 2, got %d", stats.Size)
	}
	if stats.AveragePriority != 50 {
		t.Errorf("expected average priority 50, got %f", stats.AveragePriority)
	}
	if stats.OldestAgeMs < 0 {
		t.Errorf("oldest age should be non-negative, got %d", stats.OldestAgeMs)
	}
	if stats.ProcessingActive {
		t.Error("processing should not be active without runner")
	}
}

func TestQueue_Wake(t *testing.T) {
	q := New[string](Config{})

	q.Enqueue("a", 50, -1, nil)

	select {
	case <-q.Wake():
	default:
		t.Error("enqueue should signal wake channel")
	}

	// Канал буферизован на 1: повторные вставки не блокируются
	q.Enqueue("b", 50, -1, nil)
	q.Enqueue("c", 50, -1, nil)
}

func TestQueue_DefaultPriority(t *testing.T) {
	q := New[string](Config{DefaultPriority: 70})

	if q.DefaultPriority() != 70 {
		t.Errorf("expected default priority 70, got %d", q.DefaultPriority())
	}
}

// --- Item Tests ---

func TestItem_Attempts(t *testing.T) {
	item := &Item[string]{}
	if item.Attempts() != 1 {
		t.Errorf("expected 1 attempt for fresh item, got %d", item.Attempts())
	}

	item.RetryCount = 2
	if item.Attempts() != 3 {
		t.Errorf("expected 3 attempts, got %d", item.Attempts())
	}
}

func TestItem_Report_NilCallback(t *testing.T) {
	item := &Item[string]{}
	// nil callback не должен паниковать
	item.report(OutcomeSucceeded, nil)
}
