package queue

import (
	"context"
	"errors"
	"testing"
)

// --- Registry Tests ---

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry[string]()

	if r.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", r.Len())
	}

	err := r.Process(context.Background(), "payload")
	if !errors.Is(err, ErrNoProcessors) {
		t.Errorf("expected ErrNoProcessors, got %v", err)
	}
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("first", func(ctx context.Context, p string) error { return nil })
	r.Register("second", func(ctx context.Context, p string) error { return nil })

	names := r.Names()
	if len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("expected [first second], got %v", names)
	}
}

func TestRegistry_FirstSuccessWins(t *testing.T) {
	r := NewRegistry[string]()

	var calls []string
	r.Register("a", func(ctx context.Context, p string) error {
		calls = append(calls, "a")
		return nil
	})
	r.Register("b", func(ctx context.Context, p string) error {
		calls = append(calls, "b")
		return nil
	})

	if err := r.Process(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Второй процессор не вызывается после успеха первого
	if len(calls) != 1 || calls[0] != "a" {
		t.Errorf("expected only a to be called, got %v", calls)
	}
}

func TestRegistry_Fallback(t *testing.T) {
	r := NewRegistry[string]()

	var calls []string
	r.Register("primary", func(ctx context.Context, p string) error {
		calls = append(calls, "primary")
		return errors.New("primary down")
	})
	r.Register("fallback", func(ctx context.Context, p string) error {
		calls = append(calls, "fallback")
		return nil
	})

	if err := r.Process(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 2 || calls[1] != "fallback" {
		t.Errorf("expected fallback after primary failure, got %v", calls)
	}
}

func TestRegistry_AllFailed(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("a", func(ctx context.Context, p string) error { return errors.New("err a") })
	r.Register("b", func(ctx context.Context, p string) error { return errors.New("err b") })

	err := r.Process(context.Background(), "x")
	if !errors.Is(err, ErrAllProcessorsFailed) {
		t.Fatalf("expected ErrAllProcessorsFailed, got %v", err)
	}
}

func TestRegistry_PanicRecovered(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("panicky", func(ctx context.Context, p string) error {
		panic("boom")
	})
	r.Register("safe", func(ctx context.Context, p string) error { return nil })

	// Паника процессора не роняет цепочку: следующий получает шанс
	if err := r.Process(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistry_PanicOnly(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("panicky", func(ctx context.Context, p string) error {
		panic("boom")
	})

	err := r.Process(context.Background(), "x")
	if !errors.Is(err, ErrAllProcessorsFailed) {
		t.Fatalf("expected ErrAllProcessorsFailed, got %v", err)
	}
}
