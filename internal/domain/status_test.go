package domain

import "testing"

// --- CommandStatus Tests ---

func TestCommandStatus_IsTerminal(t *testing.T) {
	terminal := []CommandStatus{
		CommandStatusSettled,
		CommandStatusFailed,
		CommandStatusCancelled,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	nonTerminal := []CommandStatus{
		CommandStatusReceived,
		CommandStatusParsing,
		CommandStatusValidating,
		CommandStatusAwaitingConfirmation,
		CommandStatusExecuting,
	}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCommandStatus_ForwardOnly(t *testing.T) {
	order := []CommandStatus{
		CommandStatusReceived,
		CommandStatusParsing,
		CommandStatusValidating,
		CommandStatusAwaitingConfirmation,
		CommandStatusExecuting,
		CommandStatusSettled,
	}

	for i, from := range order {
		for j, to := range order {
			got := from.CanTransitionTo(to)
			want := j > i && !from.IsTerminal()
			if got != want {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestCommandStatus_SkipConfirmation(t *testing.T) {
	// Информационные команды идут VALIDATING -> EXECUTING напрямую
	if !CommandStatusValidating.CanTransitionTo(CommandStatusExecuting) {
		t.Error("VALIDATING -> EXECUTING should be allowed")
	}
}

func TestCommandStatus_FailedCancelledFromAnywhere(t *testing.T) {
	nonTerminal := []CommandStatus{
		CommandStatusReceived,
		CommandStatusParsing,
		CommandStatusValidating,
		CommandStatusAwaitingConfirmation,
		CommandStatusExecuting,
	}

	for _, from := range nonTerminal {
		if !from.CanTransitionTo(CommandStatusFailed) {
			t.Errorf("%s -> FAILED should be allowed", from)
		}
		if !from.CanTransitionTo(CommandStatusCancelled) {
			t.Errorf("%s -> CANCELLED should be allowed", from)
		}
	}
}

func TestCommandStatus_NoTransitionsFromTerminal(t *testing.T) {
	all := []CommandStatus{
		CommandStatusReceived,
		CommandStatusParsing,
		CommandStatusValidating,
		CommandStatusAwaitingConfirmation,
		CommandStatusExecuting,
		CommandStatusSettled,
		CommandStatusFailed,
		CommandStatusCancelled,
	}

	for _, from := range []CommandStatus{CommandStatusSettled, CommandStatusFailed, CommandStatusCancelled} {
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Errorf("%s -> %s should not be allowed", from, to)
			}
		}
	}
}

func TestCommandStatus_NoBackward(t *testing.T) {
	if CommandStatusExecuting.CanTransitionTo(CommandStatusParsing) {
		t.Error("EXECUTING -> PARSING should not be allowed")
	}
	if CommandStatusValidating.CanTransitionTo(CommandStatusReceived) {
		t.Error("VALIDATING -> RECEIVED should not be allowed")
	}
	// Переход сам в себя запрещён
	if CommandStatusParsing.CanTransitionTo(CommandStatusParsing) {
		t.Error("PARSING -> PARSING should not be allowed")
	}
}

func TestCommandStatus_UnknownStatus(t *testing.T) {
	var unknown CommandStatus = "LIMBO"

	if unknown.CanTransitionTo(CommandStatusExecuting) {
		t.Error("unknown status should not transition forward")
	}
	// FAILED/CANCELLED достижимы даже из неизвестного нетерминального статуса
	if !unknown.CanTransitionTo(CommandStatusFailed) {
		t.Error("unknown status should still be failable")
	}
}
