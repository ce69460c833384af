// Package orchestrator реализует жизненный цикл команды.
//
// Стадии:
//
//	RECEIVED → PARSING → VALIDATING → AWAITING_CONFIRMATION → EXECUTING → SETTLED
//
// Orchestrator — единственный владелец состояния команды. Классификатор,
// валидатор, очередь и backend подключаются через интерфейсы и не знают
// о жизненном цикле; события переходов уходят в EventSink без права
// влиять на исход.
//
// Синхронная часть (Submit) доводит команду до первой точки ожидания:
// окна подтверждения или очереди исполнения. Дальше командой управляют
// таймер подтверждения, Confirm/Cancel и callback очереди с терминальным
// исходом work item.
package orchestrator
