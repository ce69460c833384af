package backend

import "errors"

// Ошибки backend'а.
var (
	// ErrUnknownSymbol — инструмент не найден в источнике цен.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrOrderRejected — заявка отклонена (например, лимитная цена
	// недостижима при немедленном исполнении).
	ErrOrderRejected = errors.New("order rejected")

	// ErrUnsupportedIntent — backend не умеет исполнять этот класс intent.
	ErrUnsupportedIntent = errors.New("unsupported intent type")
)
