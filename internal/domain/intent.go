package domain

// IntentType — класс распознанной команды.
type IntentType string

const (
	// IntentTypeOrder — заявка на покупку/продажу. Требует подтверждения.
	IntentTypeOrder IntentType = "order"

	// IntentTypeQuote — запрос котировки. Исполняется без подтверждения.
	IntentTypeQuote IntentType = "quote"

	// IntentTypePortfolio — запрос состояния портфеля. Без подтверждения.
	IntentTypePortfolio IntentType = "portfolio"
)

// OrderSide — направление заявки.
type OrderSide string

const (
	// OrderSideBuy — покупка.
	OrderSideBuy OrderSide = "BUY"

	// OrderSideSell — продажа.
	OrderSideSell OrderSide = "SELL"
)

// Intent — типизированный результат разбора команды.
//
// Intent создаётся плагином диспетчера (или внешним классификатором)
// и дальше не мутируется: Orchestrator передаёт его валидатору
// и execution backend'у как есть.
type Intent struct {
	// Type — класс команды.
	Type IntentType `json:"type"`

	// Symbol — тикер инструмента (для order и quote).
	Symbol string `json:"symbol,omitempty"`

	// Side — направление заявки (только для order).
	Side OrderSide `json:"side,omitempty"`

	// Quantity — количество (только для order).
	Quantity float64 `json:"quantity,omitempty"`

	// LimitPrice — лимитная цена. 0 означает рыночную заявку.
	LimitPrice float64 `json:"limit_price,omitempty"`

	// RawText — исходный текст команды.
	RawText string `json:"raw_text"`
}

// NeedsConfirmation возвращает true, если команда требует
// явного подтверждения пользователя перед исполнением.
func (i *Intent) NeedsConfirmation() bool {
	return i.Type == IntentTypeOrder
}

// IsMarket возвращает true для рыночной заявки (без лимитной цены).
func (i *Intent) IsMarket() bool {
	return i.LimitPrice <= 0
}
