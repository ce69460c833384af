package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Форма команды-котировки:
//
//	quote SPY
//	price of TSLA
var (
	quotePrefixRe = regexp.MustCompile(`(?i)^\s*(quote|price)\b`)
	quoteRe       = regexp.MustCompile(`(?i)^\s*(?:quote|price(?:\s+of)?)\s+([a-z]{1,6})\s*$`)
)

// QuotePlugin разбирает запросы котировок.
type QuotePlugin struct{}

// NewQuotePlugin создаёт QuotePlugin.
func NewQuotePlugin() *QuotePlugin {
	return &QuotePlugin{}
}

// Type возвращает идентификатор плагина.
func (p *QuotePlugin) Type() string { return "quote" }

// Priority — ниже заявок, выше портфеля.
func (p *QuotePlugin) Priority() int { return 60 }

// CanHandle — команда начинается с quote/price.
func (p *QuotePlugin) CanHandle(input string) bool {
	return quotePrefixRe.MatchString(input)
}

// Parse разбирает запрос котировки в Intent.
func (p *QuotePlugin) Parse(_ context.Context, input string) (*domain.Intent, error) {
	m := quoteRe.FindStringSubmatch(input)
	if m == nil {
		return nil, fmt.Errorf("%w: expected 'quote <symbol>', got %q",
			ErrMalformedCommand, strings.TrimSpace(input))
	}

	return &domain.Intent{
		Type:    domain.IntentTypeQuote,
		Symbol:  strings.ToUpper(m[1]),
		RawText: input,
	}, nil
}
