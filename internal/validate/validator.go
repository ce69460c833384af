// Package validate реализует синхронную валидацию intent'ов
// по бизнес-правилам перед постановкой команды в очередь.
package validate

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Default configuration values.
const (
	defaultMaxQuantity = 10_000
	defaultMaxNotional = 1_000_000
	defaultBuyingPower = 100_000
)

// symbolRe — форма тикера: 1-6 заглавных латинских букв.
var symbolRe = regexp.MustCompile(`^[A-Z]{1,6}$`)

// Config — конфигурация валидатора.
type Config struct {
	// MaxQuantity — потолок количества в одной заявке (default: 10000).
	MaxQuantity float64

	// MaxNotional — потолок стоимости лимитной заявки (default: 1000000).
	MaxNotional float64

	// BuyingPower — доступные средства для покупок (default: 100000).
	BuyingPower float64
}

// RulesValidator — валидатор intent'ов по фиксированным правилам.
//
// Нарушение правила — это не ошибка выполнения: оно попадает в
// ValidationResult.Reasons, а error зарезервирован за
// инфраструктурными сбоями валидатора.
type RulesValidator struct {
	cfg Config
}

// New создаёт валидатор с заполненными default'ами.
func New(cfg Config) *RulesValidator {
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = defaultMaxQuantity
	}
	if cfg.MaxNotional <= 0 {
		cfg.MaxNotional = defaultMaxNotional
	}
	if cfg.BuyingPower <= 0 {
		cfg.BuyingPower = defaultBuyingPower
	}
	return &RulesValidator{cfg: cfg}
}

// Validate проверяет intent и возвращает результат с причинами отказа.
func (v *RulesValidator) Validate(_ context.Context, intent *domain.Intent) (*domain.ValidationResult, error) {
	var reasons []string

	switch intent.Type {
	case domain.IntentTypeOrder:
		reasons = v.validateOrder(intent)
	case domain.IntentTypeQuote:
		if !symbolRe.MatchString(intent.Symbol) {
			reasons = append(reasons, fmt.Sprintf("invalid symbol %q", intent.Symbol))
		}
	case domain.IntentTypePortfolio:
		// Параметров нет — проверять нечего.
	default:
		reasons = append(reasons, fmt.Sprintf("unknown intent type %q", intent.Type))
	}

	return &domain.ValidationResult{
		Valid:   len(reasons) == 0,
		Reasons: reasons,
	}, nil
}

// validateOrder проверяет заявку.
func (v *RulesValidator) validateOrder(intent *domain.Intent) []string {
	var reasons []string

	if !symbolRe.MatchString(intent.Symbol) {
		reasons = append(reasons, fmt.Sprintf("invalid symbol %q", intent.Symbol))
	}

	if intent.Quantity <= 0 {
		reasons = append(reasons, "quantity must be positive")
	} else if intent.Quantity > v.cfg.MaxQuantity {
		reasons = append(reasons, fmt.Sprintf("quantity %g exceeds limit %g",
			intent.Quantity, v.cfg.MaxQuantity))
	}

	if !intent.IsMarket() {
		notional := intent.Quantity * intent.LimitPrice

		if notional > v.cfg.MaxNotional {
			reasons = append(reasons, fmt.Sprintf("notional %.2f exceeds limit %.2f",
				notional, v.cfg.MaxNotional))
		}

		if intent.Side == domain.OrderSideBuy && notional > v.cfg.BuyingPower {
			reasons = append(reasons, fmt.Sprintf("insufficient funds: need %.2f, have %.2f",
				notional, v.cfg.BuyingPower))
		}
	}

	return reasons
}
