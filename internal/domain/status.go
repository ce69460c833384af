package domain

// CommandStatus — статус команды в жизненном цикле.
//
// Жизненный цикл:
//
//	RECEIVED → PARSING → VALIDATING → AWAITING_CONFIRMATION → EXECUTING → SETTLED
//	                               ↘ (информационные команды) ↗
//
// FAILED и CANCELLED достижимы из любого нетерминального статуса.
// Остальные переходы — строго вперёд, стадии не пропускаются
// (кроме AWAITING_CONFIRMATION для команд без подтверждения).
type CommandStatus string

const (
	// CommandStatusReceived — команда принята, обработка ещё не началась.
	CommandStatusReceived CommandStatus = "RECEIVED"

	// CommandStatusParsing — текст команды разбирается классификатором.
	CommandStatusParsing CommandStatus = "PARSING"

	// CommandStatusValidating — intent проверяется бизнес-правилами.
	CommandStatusValidating CommandStatus = "VALIDATING"

	// CommandStatusAwaitingConfirmation — команда ждёт подтверждения пользователя.
	// Ожидание ограничено таймаутом, по истечении — CANCELLED (timeout).
	CommandStatusAwaitingConfirmation CommandStatus = "AWAITING_CONFIRMATION"

	// CommandStatusExecuting — команда передана execution backend'у
	// через приоритетную очередь.
	CommandStatusExecuting CommandStatus = "EXECUTING"

	// CommandStatusSettled — backend подтвердил исполнение.
	CommandStatusSettled CommandStatus = "SETTLED"

	// CommandStatusFailed — команда завершилась с ошибкой (см. Failure).
	CommandStatusFailed CommandStatus = "FAILED"

	// CommandStatusCancelled — команда отменена (пользователем или по таймауту).
	CommandStatusCancelled CommandStatus = "CANCELLED"
)

// stageRank — порядок forward-стадий. Терминальные статусы отсутствуют,
// они обрабатываются отдельно в CanTransitionTo.
var stageRank = map[CommandStatus]int{
	CommandStatusReceived:             0,
	CommandStatusParsing:              1,
	CommandStatusValidating:           2,
	CommandStatusAwaitingConfirmation: 3,
	CommandStatusExecuting:            4,
	CommandStatusSettled:              5,
}

// IsTerminal возвращает true, если статус финальный.
func (s CommandStatus) IsTerminal() bool {
	switch s {
	case CommandStatusSettled, CommandStatusFailed, CommandStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет, разрешён ли переход в статус next.
//
// Правила:
//   - из терминального статуса переходов нет
//   - FAILED и CANCELLED разрешены из любого нетерминального
//   - остальные переходы — только вперёд по stageRank
func (s CommandStatus) CanTransitionTo(next CommandStatus) bool {
	if s.IsTerminal() {
		return false
	}

	if next == CommandStatusFailed || next == CommandStatusCancelled {
		return true
	}

	cur, ok := stageRank[s]
	if !ok {
		return false
	}
	nxt, ok := stageRank[next]
	if !ok {
		return false
	}

	return nxt > cur
}
