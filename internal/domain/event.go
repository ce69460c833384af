package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageEvent — событие перехода команды между стадиями.
//
// События публикуются Orchestrator'ом в observer sink
// (например, AMQP-очередь commands.events) и используются
// внешними наблюдателями для отображения прогресса.
type StageEvent struct {
	// CommandID — идентификатор команды.
	CommandID uuid.UUID `json:"command_id"`

	// From — статус до перехода.
	From CommandStatus `json:"from"`

	// To — статус после перехода.
	To CommandStatus `json:"to"`

	// Detail — человекочитаемое пояснение (причина ошибки, цена исполнения).
	Detail string `json:"detail,omitempty"`

	// At — время перехода.
	At time.Time `json:"at"`
}
