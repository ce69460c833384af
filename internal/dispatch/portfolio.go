package dispatch

import (
	"context"
	"regexp"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Форма команды портфеля: "portfolio", "positions", "holdings".
var portfolioRe = regexp.MustCompile(`(?i)^\s*(portfolio|positions|holdings)\s*$`)

// PortfolioPlugin распознаёт запросы состояния портфеля.
type PortfolioPlugin struct{}

// NewPortfolioPlugin создаёт PortfolioPlugin.
func NewPortfolioPlugin() *PortfolioPlugin {
	return &PortfolioPlugin{}
}

// Type возвращает идентификатор плагина.
func (p *PortfolioPlugin) Type() string { return "portfolio" }

// Priority — самый низкий среди стандартных плагинов.
func (p *PortfolioPlugin) Priority() int { return 40 }

// CanHandle — точное совпадение с одним из ключевых слов.
func (p *PortfolioPlugin) CanHandle(input string) bool {
	return portfolioRe.MatchString(input)
}

// Parse возвращает информационный intent без параметров.
func (p *PortfolioPlugin) Parse(_ context.Context, input string) (*domain.Intent, error) {
	return &domain.Intent{
		Type:    domain.IntentTypePortfolio,
		RawText: input,
	}, nil
}
