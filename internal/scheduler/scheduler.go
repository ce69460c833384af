package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
	"github.com/shaiso/Tradomata/internal/mq"
	"github.com/shaiso/Tradomata/internal/repo"
)

// commandNamespace — namespace для детерминированных ID команд.
// ID выводится из (schedule_id, next_due_at), поэтому повторный тик
// по тому же due-времени породит ту же команду, а идемпотентный
// Submit движка отбросит дубликат.
var commandNamespace = uuid.MustParse("7b0f4a52-9c1d-4e0a-8f3b-2d6a1c5e9b47")

// Scheduler — планировщик, отправляющий команды по due schedules.
type Scheduler struct {
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	ScheduleRepo *repo.ScheduleRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
	BatchSize    int // количество schedules за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		publisher:    cfg.Publisher,
		logger:       logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule публикует command.submitted
// 3. Обновляет next_due_at
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed, submitted int
	for i := range schedules {
		sched := &schedules[i]

		commandSubmitted, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if commandSubmitted {
			submitted++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
		"commands_submitted", submitted,
	)

	return nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если команда была отправлена.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	if sched.NextDueAt == nil {
		return false, fmt.Errorf("due schedule without next_due_at")
	}

	// Детерминированный ID: один (schedule, due-время) — одна команда.
	// Движок отбрасывает повторную отправку того же ID.
	commandID := CommandIDFor(sched.ID, *sched.NextDueAt)

	if err := s.publisher.PublishCommandSubmitted(ctx, mq.CommandSubmittedPayload{
		CommandID: commandID,
		Text:      sched.CommandText,
		Source:    "schedule",
		Priority:  sched.Priority,
	}); err != nil {
		return false, fmt.Errorf("publish command.submitted: %w", err)
	}

	s.logger.Info("submitted command from schedule",
		"command_id", commandID,
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
	)

	// Вычисляем следующее время выполнения
	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next due",
			"schedule_id", sched.ID,
			"error", err,
		)
		// Schedule некорректный — лучше не трогать next_due_at
		return true, nil
	}

	sched.RecordCommand(commandID, nextDue)
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return true, fmt.Errorf("update schedule: %w", err)
	}

	return true, nil
}

// CommandIDFor возвращает детерминированный ID команды для пары
// (schedule, due-время).
func CommandIDFor(scheduleID uuid.UUID, dueAt time.Time) uuid.UUID {
	seed := fmt.Sprintf("%s_%d", scheduleID, dueAt.Unix())
	return uuid.NewSHA1(commandNamespace, []byte(seed))
}
