package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrCommandNotFound — команда не найдена ни в активных, ни в БД.
	ErrCommandNotFound = errors.New("command not found")

	// ErrCommandAlreadyActive — команда с этим ID уже обрабатывается.
	ErrCommandAlreadyActive = errors.New("command already being processed")

	// ErrNotAwaitingConfirmation — Confirm вызван не в стадии AWAITING_CONFIRMATION.
	ErrNotAwaitingConfirmation = errors.New("command is not awaiting confirmation")

	// ErrAlreadyFinished — команда уже в терминальном статусе.
	ErrAlreadyFinished = errors.New("command already finished")

	// ErrInvalidTransition — запрошен недопустимый переход жизненного цикла.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
