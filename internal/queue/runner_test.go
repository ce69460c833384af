package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastConfig — конфигурация с минимальными задержками для тестов.
func fastConfig() Config {
	return Config{
		RetryBaseDelay: time.Millisecond,
		InterItemDelay: time.Millisecond,
	}
}

// awaitOutcome ждёт терминальный исход с таймаутом.
func awaitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

// --- Runner Tests ---

func TestRunner_ProcessSuccess(t *testing.T) {
	q := New[string](fastConfig())
	r := NewRegistry[string]()
	r.Register("ok", func(ctx context.Context, p string) error { return nil })

	runner := NewRunner(q, r, testLogger())
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer runner.Stop()

	outcomes := make(chan Outcome, 1)
	q.Enqueue("work", 50, -1, func(out Outcome) { outcomes <- out })

	out := awaitOutcome(t, outcomes)
	if out.Status != OutcomeSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", out.Status)
	}
	if out.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", out.Attempts)
	}
	if out.Err != nil {
		t.Errorf("expected nil error, got %v", out.Err)
	}
}

func TestRunner_RetriesExhausted(t *testing.T) {
	q := New[string](fastConfig())
	r := NewRegistry[string]()

	var attempts atomic.Int32
	r.Register("failing", func(ctx context.Context, p string) error {
		attempts.Add(1)
		return errors.New("backend down")
	})

	runner := NewRunner(q, r, testLogger())
	_ = runner.Start(context.Background())
	defer runner.Stop()

	outcomes := make(chan Outcome, 1)
	q.Enqueue("work", 50, 2, func(out Outcome) { outcomes <- out })

	out := awaitOutcome(t, outcomes)
	if out.Status != OutcomeExhausted {
		t.Errorf("expected EXHAUSTED, got %s", out.Status)
	}
	// maxRetries=2: первая попытка + 2 retry
	if out.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", out.Attempts)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("processor should be called 3 times, got %d", got)
	}
	if !errors.Is(out.Err, ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", out.Err)
	}
}

func TestRunner_RetryThenSuccess(t *testing.T) {
	q := New[string](fastConfig())
	r := NewRegistry[string]()

	var attempts atomic.Int32
	r.Register("flaky", func(ctx context.Context, p string) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	runner := NewRunner(q, r, testLogger())
	_ = runner.Start(context.Background())
	defer runner.Stop()

	outcomes := make(chan Outcome, 1)
	q.Enqueue("work", 50, -1, func(out Outcome) { outcomes <- out })

	out := awaitOutcome(t, outcomes)
	if out.Status != OutcomeSucceeded {
		t.Errorf("expected SUCCEEDED after retries, got %s", out.Status)
	}
	if out.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", out.Attempts)
	}
}

func TestRunner_PriorityOrderPreserved(t *testing.T) {
	q := New[string](fastConfig())
	r := NewRegistry[string]()

	processed := make(chan string, 3)
	r.Register("record", func(ctx context.Context, p string) error {
		processed <- p
		return nil
	})

	// Заполняем очередь до старта runner'а, чтобы порядок был детерминирован
	q.Enqueue("low", 10, -1, nil)
	q.Enqueue("high", 90, -1, nil)
	q.Enqueue("mid", 50, -1, nil)

	runner := NewRunner(q, r, testLogger())
	_ = runner.Start(context.Background())
	defer runner.Stop()

	for _, want := range []string{"high", "mid", "low"} {
		select {
		case got := <-processed:
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for processing")
		}
	}
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	q := New[string](fastConfig())
	r := NewRegistry[string]()
	r.Register("ok", func(ctx context.Context, p string) error { return nil })

	runner := NewRunner(q, r, testLogger())
	_ = runner.Start(context.Background())

	if runner.IsStopped() {
		t.Error("runner should not be stopped after Start")
	}

	runner.Stop()
	if !runner.IsStopped() {
		t.Error("runner should be stopped after Stop")
	}
}

func TestRunner_StopCancelsPendingRetries(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryBaseDelay = time.Hour // retry никогда не успеет сработать
	q := New[string](cfg)

	r := NewRegistry[string]()
	failed := make(chan struct{}, 1)
	r.Register("failing", func(ctx context.Context, p string) error {
		select {
		case failed <- struct{}{}:
		default:
		}
		return errors.New("always fails")
	})

	runner := NewRunner(q, r, testLogger())
	_ = runner.Start(context.Background())

	q.Enqueue("work", 50, -1, nil)

	select {
	case <-failed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first attempt")
	}

	// Stop отменяет отложенную retry-вставку и не зависает на wg.Wait
	runner.Stop()

	runner.timersMu.Lock()
	pending := len(runner.timers)
	runner.timersMu.Unlock()
	if pending != 0 {
		t.Errorf("expected no pending retry timers after Stop, got %d", pending)
	}
}

// --- Backoff Tests ---

func TestBackoffDelay(t *testing.T) {
	base := 500 * time.Millisecond

	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1 * time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
	}

	for _, tc := range cases {
		if got := backoffDelay(base, tc.retryCount); got != tc.want {
			t.Errorf("backoffDelay(retry=%d): expected %v, got %v", tc.retryCount, tc.want, got)
		}
	}
}

func TestRunner_HandleFailure_RetryLowersPriority(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryBaseDelay = time.Hour // reinsert не успеет сработать
	q := New[string](cfg)
	runner := NewRunner(q, NewRegistry[string](), testLogger())
	defer runner.Stop()

	item := &Item[string]{
		ID:         uuid.New(),
		Payload:    "work",
		Priority:   50,
		MaxRetries: 3,
	}

	runner.handleFailure(item, errors.New("transient"))

	if item.RetryCount != 1 {
		t.Errorf("expected retry count 1, got %d", item.RetryCount)
	}
	if item.Priority != 50-retryPriorityPenalty {
		t.Errorf("expected priority %d, got %d", 50-retryPriorityPenalty, item.Priority)
	}

	runner.timersMu.Lock()
	pending := len(runner.timers)
	runner.timersMu.Unlock()
	if pending != 1 {
		t.Errorf("expected 1 scheduled retry, got %d", pending)
	}
}

func TestRunner_HandleFailure_Exhausted(t *testing.T) {
	q := New[string](fastConfig())
	runner := NewRunner(q, NewRegistry[string](), testLogger())

	var got Outcome
	item := &Item[string]{
		ID:         uuid.New(),
		Payload:    "work",
		Priority:   50,
		RetryCount: 3,
		MaxRetries: 3,
		callback:   func(out Outcome) { got = out },
	}

	runner.handleFailure(item, errors.New("still down"))

	if got.Status != OutcomeExhausted {
		t.Errorf("expected EXHAUSTED, got %s", got.Status)
	}
	if got.Attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", got.Attempts)
	}
}
