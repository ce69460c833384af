package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Форма команды-заявки:
//
//	buy 10 AAPL
//	sell 2.5 MSFT at 410
//	BUY 100 spy limit 589.5
var (
	orderPrefixRe = regexp.MustCompile(`(?i)^\s*(buy|sell)\b`)
	orderRe       = regexp.MustCompile(`(?i)^\s*(buy|sell)\s+(\d+(?:\.\d+)?)\s+([a-z]{1,6})(?:\s+(?:at|@|limit)\s+(\d+(?:\.\d+)?))?\s*$`)
)

// OrderPlugin разбирает команды покупки/продажи.
type OrderPlugin struct{}

// NewOrderPlugin создаёт OrderPlugin.
func NewOrderPlugin() *OrderPlugin {
	return &OrderPlugin{}
}

// Type возвращает идентификатор плагина.
func (p *OrderPlugin) Type() string { return "order" }

// Priority — заявки проверяются первыми.
func (p *OrderPlugin) Priority() int { return 100 }

// CanHandle — команда начинается с buy/sell.
func (p *OrderPlugin) CanHandle(input string) bool {
	return orderPrefixRe.MatchString(input)
}

// Parse разбирает текст заявки в Intent.
func (p *OrderPlugin) Parse(_ context.Context, input string) (*domain.Intent, error) {
	m := orderRe.FindStringSubmatch(input)
	if m == nil {
		return nil, fmt.Errorf("%w: expected 'buy|sell <qty> <symbol> [at <price>]', got %q",
			ErrMalformedCommand, strings.TrimSpace(input))
	}

	side := domain.OrderSideBuy
	if strings.EqualFold(m[1], "sell") {
		side = domain.OrderSideSell
	}

	qty, err := strconv.ParseFloat(m[2], 64)
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("%w: invalid quantity %q", ErrMalformedCommand, m[2])
	}

	var limit float64
	if m[4] != "" {
		limit, err = strconv.ParseFloat(m[4], 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("%w: invalid limit price %q", ErrMalformedCommand, m[4])
		}
	}

	return &domain.Intent{
		Type:       domain.IntentTypeOrder,
		Symbol:     strings.ToUpper(m[3]),
		Side:       side,
		Quantity:   qty,
		LimitPrice: limit,
		RawText:    input,
	}, nil
}
