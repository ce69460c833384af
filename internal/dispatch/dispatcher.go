package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shaiso/Tradomata/internal/domain"
)

// Plugin — компонент, распознающий и разбирающий один класс команд.
//
// Плагины stateless: Dispatcher может вызывать их конкурентно.
type Plugin interface {
	// Type — идентификатор плагина (попадает в логи и ответы API).
	Type() string

	// Priority — приоритет выбора: больше — раньше проверяется.
	Priority() int

	// CanHandle — быстрый тест, относится ли input к этому классу.
	CanHandle(input string) bool

	// Parse — разбор input в типизированный intent.
	// Ошибка означает типизированный отказ разбора, не повод
	// пробовать плагины ниже.
	Parse(ctx context.Context, input string) (*domain.Intent, error)
}

// Dispatcher — маршрутизатор команд по плагинам.
type Dispatcher struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
}

// NewDispatcher создаёт пустой Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// DefaultDispatcher создаёт Dispatcher со стандартными плагинами.
func DefaultDispatcher(logger *slog.Logger) *Dispatcher {
	d := NewDispatcher(logger)
	d.Register(NewOrderPlugin())
	d.Register(NewQuotePlugin())
	d.Register(NewPortfolioPlugin())
	return d
}

// Register добавляет плагин и пересортировывает список по приоритету.
// Стабильная сортировка: при равном приоритете выигрывает
// зарегистрированный раньше. Вызывается только на старте.
func (d *Dispatcher) Register(p Plugin) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.plugins = append(d.plugins, p)
	sort.SliceStable(d.plugins, func(i, j int) bool {
		return d.plugins[i].Priority() > d.plugins[j].Priority()
	})
}

// Types возвращает типы плагинов в порядке выбора.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]string, len(d.plugins))
	for i, p := range d.plugins {
		types[i] = p.Type()
	}
	return types
}

// Dispatch выбирает плагин для input и возвращает результат его разбора.
//
// Возвращает тип выбранного плагина, intent (или nil) и ошибку разбора.
// Выбор детерминирован: фиксированный набор плагинов всегда даёт
// тот же результат для того же input.
func (d *Dispatcher) Dispatch(ctx context.Context, input string) (string, *domain.Intent, error) {
	d.mu.RLock()
	plugins := make([]Plugin, len(d.plugins))
	copy(plugins, d.plugins)
	d.mu.RUnlock()

	for _, p := range plugins {
		if !p.CanHandle(input) {
			continue
		}

		intent, err := p.Parse(ctx, input)
		if err != nil {
			d.logger.Debug("plugin parse failed",
				"plugin", p.Type(),
				"error", err,
			)
			return p.Type(), nil, err
		}

		d.logger.Debug("command dispatched",
			"plugin", p.Type(),
			"intent_type", intent.Type,
		)
		return p.Type(), intent, nil
	}

	return "", nil, fmt.Errorf("%w: %q", ErrNoHandler, input)
}

// Classify реализует контракт классификатора для Orchestrator'а.
func (d *Dispatcher) Classify(ctx context.Context, input string) (*domain.Intent, error) {
	_, intent, err := d.Dispatch(ctx, input)
	return intent, err
}
