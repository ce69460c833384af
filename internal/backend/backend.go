package backend

import (
	"context"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Backend — внешний execution backend.
//
// Контракт: один вызов Execute на стадию EXECUTING. Инфраструктурные
// ошибки возвращаются через error и retriable на пути через очередь;
// успешное исполнение описывается ExecutionReport.
type Backend interface {
	Execute(ctx context.Context, intent *domain.Intent) (*domain.ExecutionReport, error)
}
