package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shaiso/Tradomata/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePlugin — плагин с настраиваемым поведением.
type fakePlugin struct {
	typ      string
	priority int
	handles  bool
	intent   *domain.Intent
	err      error
	called   *int
}

func (p *fakePlugin) Type() string               { return p.typ }
func (p *fakePlugin) Priority() int              { return p.priority }
func (p *fakePlugin) CanHandle(input string) bool { return p.handles }

func (p *fakePlugin) Parse(_ context.Context, input string) (*domain.Intent, error) {
	if p.called != nil {
		*p.called++
	}
	return p.intent, p.err
}

// --- Dispatcher Tests ---

func TestDispatcher_PrioritySelection(t *testing.T) {
	d := NewDispatcher(testLogger())

	var lowCalls, highCalls int
	d.Register(&fakePlugin{typ: "low", priority: 10, handles: true,
		intent: &domain.Intent{Type: domain.IntentTypeQuote}, called: &lowCalls})
	d.Register(&fakePlugin{typ: "high", priority: 90, handles: true,
		intent: &domain.Intent{Type: domain.IntentTypeOrder}, called: &highCalls})

	typ, intent, err := d.Dispatch(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Выигрывает плагин с большим приоритетом
	if typ != "high" {
		t.Errorf("expected high plugin, got %s", typ)
	}
	if intent.Type != domain.IntentTypeOrder {
		t.Errorf("expected order intent, got %s", intent.Type)
	}
	if lowCalls != 0 {
		t.Error("low priority plugin should not be called")
	}
}

func TestDispatcher_EqualPriority_RegistrationOrder(t *testing.T) {
	d := NewDispatcher(testLogger())

	d.Register(&fakePlugin{typ: "first", priority: 50, handles: true,
		intent: &domain.Intent{Type: domain.IntentTypeQuote}})
	d.Register(&fakePlugin{typ: "second", priority: 50, handles: true,
		intent: &domain.Intent{Type: domain.IntentTypeQuote}})

	// Стабильная сортировка: при равном приоритете выигрывает
	// зарегистрированный раньше
	typ, _, err := d.Dispatch(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ != "first" {
		t.Errorf("expected first plugin, got %s", typ)
	}
}

func TestDispatcher_SkipsNonMatching(t *testing.T) {
	d := NewDispatcher(testLogger())

	d.Register(&fakePlugin{typ: "deaf", priority: 90, handles: false})
	d.Register(&fakePlugin{typ: "handler", priority: 10, handles: true,
		intent: &domain.Intent{Type: domain.IntentTypePortfolio}})

	typ, _, err := d.Dispatch(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ != "handler" {
		t.Errorf("expected handler plugin, got %s", typ)
	}
}

func TestDispatcher_ParseFailure_NoFallthrough(t *testing.T) {
	d := NewDispatcher(testLogger())

	var fallbackCalls int
	parseErr := errors.New("bad syntax")
	d.Register(&fakePlugin{typ: "strict", priority: 90, handles: true, err: parseErr})
	d.Register(&fakePlugin{typ: "lenient", priority: 10, handles: true,
		intent: &domain.Intent{}, called: &fallbackCalls})

	// Ошибка разбора — типизированный отказ, а не повод пробовать
	// плагины ниже
	typ, intent, err := d.Dispatch(context.Background(), "anything")
	if !errors.Is(err, parseErr) {
		t.Errorf("expected parse error, got %v", err)
	}
	if typ != "strict" {
		t.Errorf("expected strict plugin type in result, got %s", typ)
	}
	if intent != nil {
		t.Error("intent should be nil on parse failure")
	}
	if fallbackCalls != 0 {
		t.Error("lower priority plugin should not be tried after parse failure")
	}
}

func TestDispatcher_NoHandler(t *testing.T) {
	d := NewDispatcher(testLogger())
	d.Register(&fakePlugin{typ: "deaf", priority: 50, handles: false})

	_, _, err := d.Dispatch(context.Background(), "gibberish")
	if !errors.Is(err, ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", err)
	}
}

func TestDefaultDispatcher_Types(t *testing.T) {
	d := DefaultDispatcher(testLogger())

	types := d.Types()
	want := []string{"order", "quote", "portfolio"}
	if len(types) != len(want) {
		t.Fatalf("expected %d plugins, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("expected plugin %s at position %d, got %s", want[i], i, types[i])
		}
	}
}

func TestDispatcher_Classify(t *testing.T) {
	d := DefaultDispatcher(testLogger())

	intent, err := d.Classify(context.Background(), "quote SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Type != domain.IntentTypeQuote {
		t.Errorf("expected quote intent, got %s", intent.Type)
	}
	if intent.Symbol != "SPY" {
		t.Errorf("expected SPY, got %s", intent.Symbol)
	}
}

// --- OrderPlugin Tests ---

func TestOrderPlugin_Parse(t *testing.T) {
	p := NewOrderPlugin()

	cases := []struct {
		input    string
		side     domain.OrderSide
		symbol   string
		quantity float64
		limit    float64
	}{
		{"buy 10 AAPL", domain.OrderSideBuy, "AAPL", 10, 0},
		{"sell 2.5 MSFT at 410", domain.OrderSideSell, "MSFT", 2.5, 410},
		{"BUY 100 spy limit 589.5", domain.OrderSideBuy, "SPY", 100, 589.5},
		{"  sell 1 tsla @ 250  ", domain.OrderSideSell, "TSLA", 1, 250},
	}

	for _, tc := range cases {
		if !p.CanHandle(tc.input) {
			t.Errorf("CanHandle(%q) should be true", tc.input)
			continue
		}

		intent, err := p.Parse(context.Background(), tc.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.input, err)
			continue
		}

		if intent.Type != domain.IntentTypeOrder {
			t.Errorf("Parse(%q): expected order intent, got %s", tc.input, intent.Type)
		}
		if intent.Side != tc.side {
			t.Errorf("Parse(%q): expected side %s, got %s", tc.input, tc.side, intent.Side)
		}
		if intent.Symbol != tc.symbol {
			t.Errorf("Parse(%q): expected symbol %s, got %s", tc.input, tc.symbol, intent.Symbol)
		}
		if intent.Quantity != tc.quantity {
			t.Errorf("Parse(%q): expected quantity %g, got %g", tc.input, tc.quantity, intent.Quantity)
		}
		if intent.LimitPrice != tc.limit {
			t.Errorf("Parse(%q): expected limit %g, got %g", tc.input, tc.limit, intent.LimitPrice)
		}
	}
}

func TestOrderPlugin_Parse_Malformed(t *testing.T) {
	p := NewOrderPlugin()

	cases := []string{
		"buy AAPL",             // нет количества
		"buy 10",               // нет тикера
		"buy 10 TOOLONGNAME",   // тикер длиннее 6 букв
		"buy 10 AAPL at",       // цена не указана
		"sell 10 AAPL yolo",    // мусор в хвосте
	}

	for _, input := range cases {
		if !p.CanHandle(input) {
			t.Errorf("CanHandle(%q) should be true (starts with buy/sell)", input)
			continue
		}

		_, err := p.Parse(context.Background(), input)
		if !errors.Is(err, ErrMalformedCommand) {
			t.Errorf("Parse(%q): expected ErrMalformedCommand, got %v", input, err)
		}
	}
}

func TestOrderPlugin_CanHandle_Negative(t *testing.T) {
	p := NewOrderPlugin()

	for _, input := range []string{"quote SPY", "portfolio", "buyer 10 AAPL"} {
		if p.CanHandle(input) {
			t.Errorf("CanHandle(%q) should be false", input)
		}
	}
}

// --- QuotePlugin Tests ---

func TestQuotePlugin_Parse(t *testing.T) {
	p := NewQuotePlugin()

	cases := []struct {
		input  string
		symbol string
	}{
		{"quote SPY", "SPY"},
		{"price of TSLA", "TSLA"},
		{"price aapl", "AAPL"},
		{"QUOTE nvda", "NVDA"},
	}

	for _, tc := range cases {
		if !p.CanHandle(tc.input) {
			t.Errorf("CanHandle(%q) should be true", tc.input)
			continue
		}

		intent, err := p.Parse(context.Background(), tc.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if intent.Type != domain.IntentTypeQuote {
			t.Errorf("Parse(%q): expected quote intent, got %s", tc.input, intent.Type)
		}
		if intent.Symbol != tc.symbol {
			t.Errorf("Parse(%q): expected symbol %s, got %s", tc.input, tc.symbol, intent.Symbol)
		}
	}
}

func TestQuotePlugin_Parse_Malformed(t *testing.T) {
	p := NewQuotePlugin()

	for _, input := range []string{"quote", "quote SPY QQQ", "price of TOOLONGNAME"} {
		if !p.CanHandle(input) {
			t.Errorf("CanHandle(%q) should be true", input)
			continue
		}
		_, err := p.Parse(context.Background(), input)
		if !errors.Is(err, ErrMalformedCommand) {
			t.Errorf("Parse(%q): expected ErrMalformedCommand, got %v", input, err)
		}
	}
}

// --- PortfolioPlugin Tests ---

func TestPortfolioPlugin_Parse(t *testing.T) {
	p := NewPortfolioPlugin()

	for _, input := range []string{"portfolio", "positions", " holdings "} {
		if !p.CanHandle(input) {
			t.Errorf("CanHandle(%q) should be true", input)
			continue
		}

		intent, err := p.Parse(context.Background(), input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", input, err)
			continue
		}
		if intent.Type != domain.IntentTypePortfolio {
			t.Errorf("Parse(%q): expected portfolio intent, got %s", input, intent.Type)
		}
	}
}

func TestPortfolioPlugin_CanHandle_Negative(t *testing.T) {
	p := NewPortfolioPlugin()

	for _, input := range []string{"portfolio value", "my positions", "quote SPY"} {
		if p.CanHandle(input) {
			t.Errorf("CanHandle(%q) should be false", input)
		}
	}
}
