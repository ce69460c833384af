package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
)

// --- Cron Tests ---

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{IntervalSec: 300, Timezone: "UTC"}
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := from.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_Cron(t *testing.T) {
	// Каждый день в 09:00
	sched := &domain.Schedule{CronExpr: "0 9 * * *", Timezone: "UTC"}
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_CronTakesPrecedence(t *testing.T) {
	// При заданных cron и interval используется cron
	sched := &domain.Schedule{CronExpr: "0 9 * * *", IntervalSec: 60, Timezone: "UTC"}
	from := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_Timezone(t *testing.T) {
	// 09:00 по Нью-Йорку — 14:00 UTC (EST, март до перехода на летнее время)
	sched := &domain.Schedule{CronExpr: "0 9 * * *", Timezone: "America/New_York"}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Location() != time.UTC {
		t.Error("result should be in UTC for storage")
	}
	want := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_InvalidTimezone(t *testing.T) {
	// Невалидный timezone откатывается на UTC, а не падает
	sched := &domain.Schedule{IntervalSec: 60, Timezone: "Mars/Olympus"}
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(from.Add(time.Minute)) {
		t.Errorf("expected %v, got %v", from.Add(time.Minute), next)
	}
}

func TestCalculateNextDue_NeitherCronNorInterval(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}

	_, err := CalculateNextDue(sched, time.Now())
	if err == nil {
		t.Error("expected error for schedule without cron or interval")
	}
}

func TestValidateCronExpr(t *testing.T) {
	valid := []string{
		"0 9 * * *",
		"*/5 * * * *",
		"0 9 * * 1-5",
		"30 16 1 * *",
	}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("ValidateCronExpr(%q): unexpected error: %v", expr, err)
		}
	}

	invalid := []string{
		"",
		"not a cron",
		"0 9 * *",       // четыре поля
		"61 9 * * *",    // минуты вне диапазона
	}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("ValidateCronExpr(%q): expected error", expr)
		}
	}
}

// --- CommandIDFor Tests ---

func TestCommandIDFor_Deterministic(t *testing.T) {
	scheduleID := uuid.New()
	dueAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := CommandIDFor(scheduleID, dueAt)
	b := CommandIDFor(scheduleID, dueAt)

	// Один (schedule, due-время) — один и тот же ID команды
	if a != b {
		t.Errorf("expected deterministic ID, got %s and %s", a, b)
	}
}

func TestCommandIDFor_DistinctInputs(t *testing.T) {
	scheduleID := uuid.New()
	dueAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	base := CommandIDFor(scheduleID, dueAt)

	if CommandIDFor(uuid.New(), dueAt) == base {
		t.Error("different schedules should produce different IDs")
	}
	if CommandIDFor(scheduleID, dueAt.Add(time.Minute)) == base {
		t.Error("different due times should produce different IDs")
	}
}

func TestCommandIDFor_IgnoresSubSecond(t *testing.T) {
	scheduleID := uuid.New()
	dueAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Seed строится из unix-секунд: наносекунды не меняют ID
	if CommandIDFor(scheduleID, dueAt) != CommandIDFor(scheduleID, dueAt.Add(500*time.Millisecond)) {
		t.Error("sub-second precision should not affect the ID")
	}
}
