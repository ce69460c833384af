package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
)

// defaultSlippage — проскальзывание paper-исполнения (10 б.п.).
const defaultSlippage = 0.001

// PaperBackend — симулированный execution backend.
//
// Исполняет заявки по внутренней таблице цен с небольшим
// проскальзыванием против тейкера и ведёт позиции в памяти.
// Используется в разработке и тестах вместо реального брокера.
type PaperBackend struct {
	mu        sync.Mutex
	prices    map[string]float64
	positions map[string]float64
	slippage  float64
}

// NewPaperBackend создаёт backend с предзаполненной таблицей цен.
func NewPaperBackend() *PaperBackend {
	return &PaperBackend{
		prices: map[string]float64{
			"AAPL": 190.50,
			"MSFT": 415.30,
			"TSLA": 248.70,
			"SPY":  560.20,
			"AMZN": 185.90,
			"NVDA": 122.40,
		},
		positions: make(map[string]float64),
		slippage:  defaultSlippage,
	}
}

// SetPrice задаёт цену инструмента (для тестов и загрузки котировок).
func (b *PaperBackend) SetPrice(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[strings.ToUpper(symbol)] = price
}

// Position возвращает текущую позицию по инструменту.
func (b *PaperBackend) Position(symbol string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positions[strings.ToUpper(symbol)]
}

// Execute исполняет intent.
func (b *PaperBackend) Execute(ctx context.Context, intent *domain.Intent) (*domain.ExecutionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch intent.Type {
	case domain.IntentTypeOrder:
		return b.executeOrder(intent)
	case domain.IntentTypeQuote:
		return b.executeQuote(intent)
	case domain.IntentTypePortfolio:
		return b.executePortfolio()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntent, intent.Type)
	}
}

// executeOrder исполняет заявку по таблице цен.
func (b *PaperBackend) executeOrder(intent *domain.Intent) (*domain.ExecutionReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	price, ok := b.prices[intent.Symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, intent.Symbol)
	}

	// Проскальзывание против тейкера
	fill := price * (1 + b.slippage)
	if intent.Side == domain.OrderSideSell {
		fill = price * (1 - b.slippage)
	}

	// Лимитная заявка исполняется немедленно или отклоняется —
	// paper backend не держит книгу заявок.
	if !intent.IsMarket() {
		if intent.Side == domain.OrderSideBuy && fill > intent.LimitPrice {
			return nil, fmt.Errorf("%w: buy limit %.2f below market %.2f",
				ErrOrderRejected, intent.LimitPrice, fill)
		}
		if intent.Side == domain.OrderSideSell && fill < intent.LimitPrice {
			return nil, fmt.Errorf("%w: sell limit %.2f above market %.2f",
				ErrOrderRejected, intent.LimitPrice, fill)
		}
	}

	delta := intent.Quantity
	if intent.Side == domain.OrderSideSell {
		delta = -intent.Quantity
	}
	b.positions[intent.Symbol] += delta

	return &domain.ExecutionReport{
		OrderID:          uuid.New().String(),
		Symbol:           intent.Symbol,
		ExecutedQuantity: intent.Quantity,
		ExecutedPrice:    fill,
		Detail:           fmt.Sprintf("%s %g %s @ %.2f", intent.Side, intent.Quantity, intent.Symbol, fill),
	}, nil
}

// executeQuote возвращает котировку.
func (b *PaperBackend) executeQuote(intent *domain.Intent) (*domain.ExecutionReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	price, ok := b.prices[intent.Symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, intent.Symbol)
	}

	return &domain.ExecutionReport{
		Symbol:        intent.Symbol,
		ExecutedPrice: price,
		Detail:        fmt.Sprintf("%s %.2f", intent.Symbol, price),
	}, nil
}

// executePortfolio возвращает сводку позиций.
func (b *PaperBackend) executePortfolio() (*domain.ExecutionReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbols := make([]string, 0, len(b.positions))
	for sym, qty := range b.positions {
		if qty != 0 {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)

	if len(symbols) == 0 {
		return &domain.ExecutionReport{Detail: "no open positions"}, nil
	}

	parts := make([]string, len(symbols))
	for i, sym := range symbols {
		parts[i] = fmt.Sprintf("%s %g", sym, b.positions[sym])
	}

	return &domain.ExecutionReport{Detail: strings.Join(parts, ", ")}, nil
}
