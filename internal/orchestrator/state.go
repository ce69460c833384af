package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
)

// CommandState — состояние выполнения одной команды в памяти.
//
// CommandState создаётся когда Orchestrator принимает команду
// и удаляется когда команда достигает терминального статуса
// (SETTLED/FAILED/CANCELLED).
//
// Содержит:
//   - Саму команду (единственный мутируемый экземпляр)
//   - Таймер окна подтверждения (если команда его ждёт)
//   - ID work item в приоритетной очереди (на стадии EXECUTING)
//   - Отчёт backend'а, записанный процессором до прихода Outcome
type CommandState struct {
	cmd *domain.Command

	// confirmTimer — таймер окна подтверждения.
	confirmTimer *time.Timer

	// itemID — ID work item в очереди (uuid.Nil до EXECUTING).
	itemID uuid.UUID

	// report — отчёт backend'а; процессор пишет его до того, как
	// runner доставит терминальный Outcome.
	report *domain.ExecutionReport

	// mu — мьютекс для потокобезопасного доступа.
	mu sync.Mutex
}

// NewCommandState создаёт новый CommandState.
func NewCommandState(cmd *domain.Command) *CommandState {
	return &CommandState{cmd: cmd}
}

// CommandID возвращает ID команды.
func (s *CommandState) CommandID() uuid.UUID {
	return s.cmd.ID
}

// Snapshot возвращает копию команды для отдачи наружу.
// Вложенные структуры после записи не мутируются, поэтому
// поверхностной копии достаточно.
func (s *CommandState) Snapshot() *domain.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *s.cmd
	return &copied
}

// Status возвращает текущий статус команды.
func (s *CommandState) Status() domain.CommandStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd.Status
}

// mutate применяет мутацию к команде под блокировкой.
func (s *CommandState) mutate(fn func(*domain.Command)) {
	s.mu.Lock()
	fn(s.cmd)
	s.mu.Unlock()
}

// setConfirmTimer сохраняет таймер окна подтверждения.
func (s *CommandState) setConfirmTimer(t *time.Timer) {
	s.mu.Lock()
	s.confirmTimer = t
	s.mu.Unlock()
}

// stopConfirmTimer останавливает таймер подтверждения.
// Возвращает false, если таймер уже сработал или не был установлен.
func (s *CommandState) stopConfirmTimer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.confirmTimer == nil {
		return false
	}
	stopped := s.confirmTimer.Stop()
	s.confirmTimer = nil
	return stopped
}

// setItemID запоминает ID work item, представляющего команду в очереди.
func (s *CommandState) setItemID(id uuid.UUID) {
	s.mu.Lock()
	s.itemID = id
	s.mu.Unlock()
}

// ItemID возвращает ID work item в очереди (uuid.Nil до EXECUTING).
func (s *CommandState) ItemID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemID
}

// setReport сохраняет отчёт backend'а об успешном исполнении.
func (s *CommandState) setReport(report *domain.ExecutionReport) {
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()
}

// takeReport возвращает сохранённый отчёт backend'а (может быть nil).
func (s *CommandState) takeReport() *domain.ExecutionReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}
