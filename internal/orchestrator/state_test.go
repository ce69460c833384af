package orchestrator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
)

// --- CommandState Tests ---

func TestNewCommandState(t *testing.T) {
	cmd := domain.NewCommand(uuid.New(), "quote SPY", "api", 50)
	st := NewCommandState(cmd)

	if st.CommandID() != cmd.ID {
		t.Error("CommandID should return command ID")
	}
	if st.Status() != domain.CommandStatusReceived {
		t.Errorf("expected RECEIVED, got %s", st.Status())
	}
	if st.ItemID() != uuid.Nil {
		t.Error("item ID should be nil before EXECUTING")
	}
}

func TestCommandState_Snapshot_IsCopy(t *testing.T) {
	cmd := domain.NewCommand(uuid.New(), "quote SPY", "api", 50)
	st := NewCommandState(cmd)

	snap := st.Snapshot()
	snap.Status = domain.CommandStatusFailed

	// Мутация снапшота не задевает оригинал
	if st.Status() != domain.CommandStatusReceived {
		t.Error("snapshot mutation should not affect state")
	}
}

func TestCommandState_Mutate(t *testing.T) {
	cmd := domain.NewCommand(uuid.New(), "buy 10 AAPL", "api", 50)
	st := NewCommandState(cmd)

	st.mutate(func(c *domain.Command) { c.CancelRequested = true })

	if !st.Snapshot().CancelRequested {
		t.Error("mutation should be visible in snapshot")
	}
}

func TestCommandState_ConfirmTimer(t *testing.T) {
	st := NewCommandState(domain.NewCommand(uuid.New(), "buy 10 AAPL", "api", 50))

	// Без таймера останавливать нечего
	if st.stopConfirmTimer() {
		t.Error("stop without timer should return false")
	}

	st.setConfirmTimer(time.AfterFunc(time.Hour, func() {}))
	if !st.stopConfirmTimer() {
		t.Error("stop of pending timer should return true")
	}

	// Повторный stop: таймер уже снят
	if st.stopConfirmTimer() {
		t.Error("second stop should return false")
	}
}

func TestCommandState_ConfirmTimer_AlreadyFired(t *testing.T) {
	st := NewCommandState(domain.NewCommand(uuid.New(), "buy 10 AAPL", "api", 50))

	fired := make(chan struct{})
	st.setConfirmTimer(time.AfterFunc(time.Millisecond, func() { close(fired) }))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timer never fired")
	}

	// Сработавший таймер остановить нельзя: подтверждение проиграло гонку
	if st.stopConfirmTimer() {
		t.Error("stop after firing should return false")
	}
}

func TestCommandState_Report(t *testing.T) {
	st := NewCommandState(domain.NewCommand(uuid.New(), "quote SPY", "api", 50))

	if st.takeReport() != nil {
		t.Error("report should be nil initially")
	}

	report := &domain.ExecutionReport{Detail: "SPY 560.20"}
	st.setReport(report)

	if st.takeReport() != report {
		t.Error("report should be returned")
	}
}

func TestCommandState_ItemID(t *testing.T) {
	st := NewCommandState(domain.NewCommand(uuid.New(), "quote SPY", "api", 50))

	id := uuid.New()
	st.setItemID(id)

	if st.ItemID() != id {
		t.Error("item ID should be stored")
	}
}
