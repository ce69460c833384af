package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/backend"
	"github.com/shaiso/Tradomata/internal/domain"
	"github.com/shaiso/Tradomata/internal/mq"
	"github.com/shaiso/Tradomata/internal/queue"
	"github.com/shaiso/Tradomata/internal/repo"
	"github.com/shaiso/Tradomata/internal/telemetry"
)

// Default configuration values.
const (
	defaultConfirmationTimeout = 30 * time.Second
)

// Classifier разбирает текст команды в типизированный intent.
// Реализуется dispatch.Dispatcher.
type Classifier interface {
	Classify(ctx context.Context, input string) (*domain.Intent, error)
}

// Validator проверяет intent бизнес-правилами.
// Реализуется validate.RulesValidator.
type Validator interface {
	Validate(ctx context.Context, intent *domain.Intent) (*domain.ValidationResult, error)
}

// EventSink получает события переходов жизненного цикла.
// Реализуется mq.Publisher. Sink не может отклонить или изменить переход.
type EventSink interface {
	CommandTransitioned(ctx context.Context, ev domain.StageEvent)
}

// CommandStore — журнал команд в БД. Реализуется repo.CommandRepo.
// nil отключает персистентность (команды живут только в памяти).
type CommandStore interface {
	Create(ctx context.Context, cmd *domain.Command) error
	Update(ctx context.Context, cmd *domain.Command) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Command, error)
}

// ExecutionJob — payload work item в приоритетной очереди.
type ExecutionJob struct {
	// CommandID — команда, которую представляет этот item.
	CommandID uuid.UUID

	// Intent — разобранный intent для execution backend'а.
	Intent *domain.Intent
}

// Orchestrator ведёт команды через жизненный цикл.
//
// Orchestrator — центральный компонент системы, который:
//   - Принимает команды через Submit (API/CLI) и очередь commands.submitted
//   - Разбирает текст классификатором (PARSING)
//   - Проверяет intent бизнес-правилами (VALIDATING)
//   - Держит торговые команды в окне подтверждения (AWAITING_CONFIRMATION)
//   - Передаёт работу execution backend'у через приоритетную очередь (EXECUTING)
//   - Финализирует команды (SETTLED/FAILED/CANCELLED)
//
// Переходы только вперёд, стадии не пропускаются. FAILED и CANCELLED
// достижимы из любого нетерминального статуса.
type Orchestrator struct {
	classifier Classifier
	validator  Validator
	backend    backend.Backend

	queue    *queue.Queue[*ExecutionJob]
	sink     EventSink
	commands CommandStore

	// MQ (опционально)
	conn     *mq.Connection
	consumer *mq.Consumer

	// Active commands — команды в процессе выполнения (commandID → state)
	active map[uuid.UUID]*CommandState
	mu     sync.RWMutex

	// Configuration
	confirmationTimeout time.Duration

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Classifier — разбор текста команды (обязателен).
	Classifier Classifier

	// Validator — проверка intent бизнес-правилами (обязателен).
	Validator Validator

	// Backend — execution backend (обязателен).
	Backend backend.Backend

	// Queue — приоритетная очередь work items (обязательна).
	Queue *queue.Queue[*ExecutionJob]

	// Sink — получатель событий переходов (опционален).
	Sink EventSink

	// Commands — журнал команд в БД (опционален).
	Commands CommandStore

	// Conn — соединение с RabbitMQ для потребления commands.submitted
	// (опционально; nil — только HTTP/CLI ingestion).
	Conn *mq.Connection

	// ConfirmationTimeout — окно подтверждения (default: 30s).
	ConfirmationTimeout time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	confirmationTimeout := cfg.ConfirmationTimeout
	if confirmationTimeout <= 0 {
		confirmationTimeout = defaultConfirmationTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		classifier:          cfg.Classifier,
		validator:           cfg.Validator,
		backend:             cfg.Backend,
		queue:               cfg.Queue,
		sink:                cfg.Sink,
		commands:            cfg.Commands,
		conn:                cfg.Conn,
		active:              make(map[uuid.UUID]*CommandState),
		confirmationTimeout: confirmationTimeout,
		logger:              logger,
	}
}

// Start запускает Orchestrator.
//
// При наличии MQ-соединения запускает consumer для commands.submitted.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting orchestrator",
		"confirmation_timeout", o.confirmationTimeout,
	)

	if o.conn != nil {
		o.consumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueCommandsSubmitted),
			Handler:  o.handleCommandSubmitted,
			Prefetch: 10,
		})

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := o.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("command consumer error", "error", err)
			}
		}()
	}

	o.logger.Info("orchestrator started")
	return nil
}

// Stop останавливает Orchestrator.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}

	if o.consumer != nil {
		o.consumer.Stop()
	}

	// Останавливаем таймеры подтверждения активных команд
	o.mu.RLock()
	for _, st := range o.active {
		st.stopConfirmTimer()
	}
	o.mu.RUnlock()

	o.wg.Wait()

	o.logger.Info("orchestrator stopped",
		"active_commands", o.ActiveCount(),
	)
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// SubmitRequest — параметры новой команды.
type SubmitRequest struct {
	// ID — идентификатор команды. uuid.Nil генерирует новый.
	ID uuid.UUID

	// Text — исходный текст команды.
	Text string

	// Source — источник: "api", "cli", "schedule", "mq".
	Source string

	// Priority — приоритет work item. <= 0 применяет default очереди.
	Priority int
}

// Submit принимает команду и синхронно ведёт её до первой точки
// ожидания: AWAITING_CONFIRMATION, EXECUTING (в очереди) или
// терминального статуса для мгновенных отказов.
//
// Повторный Submit с тем же ID идемпотентен: возвращается текущее
// состояние команды, дубликат не создаётся.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*domain.Command, error) {
	if o.IsStopped() {
		return nil, ErrOrchestratorStopped
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	// Идемпотентность: активная команда возвращается как есть
	if st := o.getActive(id); st != nil {
		return st.Snapshot(), nil
	}

	// Завершённая команда из журнала тоже возвращается как есть
	if o.commands != nil {
		if existing, err := o.commands.GetByID(ctx, id); err == nil {
			return existing, nil
		}
	}

	priority := req.Priority
	if priority <= 0 {
		priority = o.queue.DefaultPriority()
	}

	cmd := domain.NewCommand(id, req.Text, req.Source, priority)
	st := NewCommandState(cmd)

	if err := o.addActive(st); err != nil {
		// Гонка двух Submit с одним ID: победил другой
		if cur := o.getActive(id); cur != nil {
			return cur.Snapshot(), nil
		}
		return nil, err
	}

	o.logger.Info("command received",
		"command_id", id,
		"source", req.Source,
		"priority", priority,
	)

	if o.commands != nil {
		if err := o.commands.Create(ctx, cmd); err != nil {
			o.logger.Warn("failed to persist command", "command_id", id, "error", err)
		}
	}

	o.advance(ctx, st)
	return st.Snapshot(), nil
}

// advance ведёт команду через синхронные стадии: PARSING и VALIDATING,
// затем либо окно подтверждения, либо сразу очередь исполнения.
func (o *Orchestrator) advance(ctx context.Context, st *CommandState) {
	// PARSING
	if err := o.moveTo(ctx, st, domain.CommandStatusParsing, ""); err != nil {
		return
	}

	snapshot := st.Snapshot()
	intent, err := o.classifier.Classify(ctx, snapshot.Text)
	if err != nil {
		o.finishFailed(ctx, st, domain.FailureParse, err.Error())
		return
	}
	st.mutate(func(c *domain.Command) { c.Intent = intent })

	// VALIDATING
	if err := o.moveTo(ctx, st, domain.CommandStatusValidating, string(intent.Type)); err != nil {
		return
	}

	result, err := o.validator.Validate(ctx, intent)
	if err != nil {
		o.finishFailed(ctx, st, domain.FailureValidation, err.Error())
		return
	}
	st.mutate(func(c *domain.Command) { c.Validation = result })

	if !result.Valid {
		o.finishFailed(ctx, st, domain.FailureValidation, strings.Join(result.Reasons, "; "))
		return
	}

	// Торговые команды ждут подтверждения, информационные идут сразу
	if intent.NeedsConfirmation() {
		if err := o.moveTo(ctx, st, domain.CommandStatusAwaitingConfirmation, ""); err != nil {
			return
		}

		cmdID := st.CommandID()
		timer := time.AfterFunc(o.confirmationTimeout, func() {
			o.timeoutConfirm(cmdID)
		})
		st.setConfirmTimer(timer)
		return
	}

	o.startExecution(ctx, st)
}

// Confirm подтверждает команду в окне AWAITING_CONFIRMATION
// и запускает исполнение.
func (o *Orchestrator) Confirm(ctx context.Context, id uuid.UUID) (*domain.Command, error) {
	st := o.getActive(id)
	if st == nil {
		return nil, o.lookupMiss(ctx, id)
	}

	if st.Status() != domain.CommandStatusAwaitingConfirmation {
		return nil, ErrNotAwaitingConfirmation
	}

	// Таймер уже сработал — отмена по таймауту победила
	if !st.stopConfirmTimer() {
		return nil, ErrNotAwaitingConfirmation
	}

	o.logger.Info("command confirmed", "command_id", id)

	o.startExecution(ctx, st)
	return st.Snapshot(), nil
}

// Cancel отменяет команду.
//
// До EXECUTING отмена синхронна: команда немедленно переходит
// в CANCELLED (user). На стадии EXECUTING item сначала пытаемся снять
// с очереди; если он уже у процессора, backend-вызов может быть
// необратим, поэтому фиксируется только запрос отмены, а команда
// остаётся в EXECUTING до фактического исхода.
func (o *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) (*domain.Command, error) {
	st := o.getActive(id)
	if st == nil {
		return nil, o.lookupMiss(ctx, id)
	}

	switch status := st.Status(); {
	case status.IsTerminal():
		return nil, ErrAlreadyFinished

	case status == domain.CommandStatusExecuting:
		if o.queue.Remove(st.ItemID()) {
			o.finishCancelled(ctx, st, domain.CancelReasonUser, "removed from queue before processing")
		} else {
			st.mutate(func(c *domain.Command) { c.CancelRequested = true })
			o.persist(ctx, st)
			o.logger.Info("cancellation requested, outcome pending", "command_id", id)
		}

	default:
		st.stopConfirmTimer()
		o.finishCancelled(ctx, st, domain.CancelReasonUser, "cancelled by user")
	}

	return st.Snapshot(), nil
}

// Get возвращает команду: активную из памяти или завершённую из журнала.
func (o *Orchestrator) Get(ctx context.Context, id uuid.UUID) (*domain.Command, error) {
	if st := o.getActive(id); st != nil {
		return st.Snapshot(), nil
	}

	if o.commands != nil {
		cmd, err := o.commands.GetByID(ctx, id)
		if err == nil {
			return cmd, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	return nil, ErrCommandNotFound
}

// QueueStats возвращает статистику приоритетной очереди.
func (o *Orchestrator) QueueStats() queue.Stats {
	return o.queue.Stats()
}

// ActiveCount возвращает количество активных команд.
func (o *Orchestrator) ActiveCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.active)
}

// ExecutionProcessor возвращает процессор для регистрации в queue.Registry.
// Процессор вызывает execution backend и сохраняет его отчёт в состоянии
// команды; терминальный исход доставит callback очереди.
func (o *Orchestrator) ExecutionProcessor() queue.Processor[*ExecutionJob] {
	return func(ctx context.Context, job *ExecutionJob) error {
		report, err := o.backend.Execute(ctx, job.Intent)
		if err != nil {
			return err
		}

		if st := o.getActive(job.CommandID); st != nil {
			st.setReport(report)
		}
		return nil
	}
}

// --- Lifecycle internals ---

// startExecution переводит команду в EXECUTING и ставит work item
// в приоритетную очередь.
func (o *Orchestrator) startExecution(ctx context.Context, st *CommandState) {
	if err := o.moveTo(ctx, st, domain.CommandStatusExecuting, ""); err != nil {
		return
	}

	snapshot := st.Snapshot()
	cmdID := st.CommandID()

	job := &ExecutionJob{
		CommandID: cmdID,
		Intent:    snapshot.Intent,
	}

	itemID := o.queue.Enqueue(job, snapshot.Priority, -1, func(out queue.Outcome) {
		o.onOutcome(cmdID, out)
	})
	st.setItemID(itemID)
}

// onOutcome — callback очереди с терминальным исходом work item.
func (o *Orchestrator) onOutcome(cmdID uuid.UUID, out queue.Outcome) {
	st := o.getActive(cmdID)
	if st == nil {
		return
	}

	ctx := context.Background()

	switch out.Status {
	case queue.OutcomeSucceeded:
		report := st.takeReport()
		if report == nil {
			report = &domain.ExecutionReport{}
		}
		report.Attempts = out.Attempts
		o.finishSettled(ctx, st, report)

	case queue.OutcomeEvicted:
		o.finishFailed(ctx, st, domain.FailureQueueEvicted, "evicted from saturated queue")

	case queue.OutcomeExhausted:
		reason := "all retry attempts exhausted"
		if out.Err != nil {
			reason = out.Err.Error()
		}
		o.finishFailed(ctx, st, domain.FailureRetriesExhausted, reason)
	}
}

// timeoutConfirm — срабатывание таймера окна подтверждения.
func (o *Orchestrator) timeoutConfirm(cmdID uuid.UUID) {
	st := o.getActive(cmdID)
	if st == nil {
		return
	}

	if st.Status() != domain.CommandStatusAwaitingConfirmation {
		return
	}

	telemetry.ConfirmationTimeouts.Inc()
	o.finishCancelled(context.Background(), st, domain.CancelReasonTimeout, "confirmation window elapsed")
}

// moveTo выполняет нетерминальный переход жизненного цикла.
func (o *Orchestrator) moveTo(ctx context.Context, st *CommandState, next domain.CommandStatus, detail string) error {
	st.mu.Lock()
	from := st.cmd.Status
	if !from.CanTransitionTo(next) {
		st.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}
	st.cmd.Status = next
	st.mu.Unlock()

	o.afterTransition(ctx, st, from, next, detail)
	return nil
}

// finishSettled переводит команду в SETTLED.
func (o *Orchestrator) finishSettled(ctx context.Context, st *CommandState, report *domain.ExecutionReport) {
	st.mu.Lock()
	from := st.cmd.Status
	if from.IsTerminal() {
		st.mu.Unlock()
		return
	}
	st.cmd.MarkSettled(report)
	st.mu.Unlock()

	o.afterTransition(ctx, st, from, domain.CommandStatusSettled, report.Detail)
	o.removeActive(st.CommandID())
}

// finishFailed переводит команду в FAILED с типизированной причиной.
func (o *Orchestrator) finishFailed(ctx context.Context, st *CommandState, kind domain.FailureKind, reason string) {
	st.mu.Lock()
	from := st.cmd.Status
	if from.IsTerminal() {
		st.mu.Unlock()
		return
	}
	st.cmd.MarkFailed(kind, reason)
	st.mu.Unlock()

	o.logger.Warn("command failed",
		"command_id", st.CommandID(),
		"kind", kind,
		"reason", reason,
	)

	o.afterTransition(ctx, st, from, domain.CommandStatusFailed, reason)
	o.removeActive(st.CommandID())
}

// finishCancelled переводит команду в CANCELLED.
func (o *Orchestrator) finishCancelled(ctx context.Context, st *CommandState, reason domain.CancelReason, detail string) {
	st.mu.Lock()
	from := st.cmd.Status
	if from.IsTerminal() {
		st.mu.Unlock()
		return
	}
	st.cmd.MarkCancelled(reason)
	st.mu.Unlock()

	o.logger.Info("command cancelled",
		"command_id", st.CommandID(),
		"reason", reason,
	)

	o.afterTransition(ctx, st, from, domain.CommandStatusCancelled, detail)
	o.removeActive(st.CommandID())
}

// afterTransition — общий хвост перехода: метрики, журнал, событие.
func (o *Orchestrator) afterTransition(ctx context.Context, st *CommandState, from, to domain.CommandStatus, detail string) {
	telemetry.StageTransitions.WithLabelValues(string(to)).Inc()
	if to.IsTerminal() {
		telemetry.CommandsFinished.WithLabelValues(string(to)).Inc()
	}

	o.logger.Debug("command stage changed",
		"command_id", st.CommandID(),
		"from", from,
		"to", to,
	)

	o.persist(ctx, st)

	if o.sink != nil {
		o.sink.CommandTransitioned(ctx, domain.StageEvent{
			CommandID: st.CommandID(),
			From:      from,
			To:        to,
			Detail:    detail,
			At:        time.Now(),
		})
	}
}

// persist обновляет команду в журнале (nil-safe, ошибки не фатальны).
func (o *Orchestrator) persist(ctx context.Context, st *CommandState) {
	if o.commands == nil {
		return
	}
	if err := o.commands.Update(ctx, st.Snapshot()); err != nil {
		o.logger.Warn("failed to persist command",
			"command_id", st.CommandID(),
			"error", err,
		)
	}
}

// lookupMiss различает «команда завершена» и «команда неизвестна»
// для Confirm/Cancel по неактивному ID.
func (o *Orchestrator) lookupMiss(ctx context.Context, id uuid.UUID) error {
	if o.commands != nil {
		if cmd, err := o.commands.GetByID(ctx, id); err == nil && cmd.IsFinished() {
			return ErrAlreadyFinished
		}
	}
	return ErrCommandNotFound
}

// handleCommandSubmitted — обработчик сообщений commands.submitted.
func (o *Orchestrator) handleCommandSubmitted(ctx context.Context, msg *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.CommandSubmittedPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse command.submitted payload: %w", err)
	}

	source := payload.Source
	if source == "" {
		source = "mq"
	}

	_, err = o.Submit(ctx, SubmitRequest{
		ID:       payload.CommandID,
		Text:     payload.Text,
		Source:   source,
		Priority: payload.Priority,
	})
	return err
}

// --- Active commands tracking ---

// getActive возвращает активный CommandState.
func (o *Orchestrator) getActive(id uuid.UUID) *CommandState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active[id]
}

// addActive добавляет команду в активные.
func (o *Orchestrator) addActive(st *CommandState) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.active[st.CommandID()]; exists {
		return ErrCommandAlreadyActive
	}

	o.active[st.CommandID()] = st
	return nil
}

// removeActive удаляет команду из активных.
func (o *Orchestrator) removeActive(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, id)
}
