// Package dispatch реализует полиморфную маршрутизацию команд
// по зарегистрированным плагинам.
//
// # Обзор
//
// Dispatcher держит упорядоченный список плагинов — компонентов,
// каждый из которых умеет распознавать и разбирать один класс команд.
// Список сортируется по приоритету (desc) и мутируется только на старте.
//
// Алгоритм выбора: плагины обходятся в порядке приоритета; выбирается
// первый, чей CanHandle вернул true. Его Parse вызывается, и результат
// (успех или типизированная ошибка разбора) возвращается без
// проваливания к плагинам ниже — неоднозначность между несколькими
// "могу обработать" разрешается исключительно приоритетом, а при
// равенстве — порядком регистрации (первый зарегистрированный
// выигрывает). Если ни один плагин не подошёл — ErrNoHandler.
//
// Это закрытая диспетчеризация по явно зарегистрированному набору
// вариантов, без рефлексии.
//
// # Стандартные плагины
//
//   - OrderPlugin     — "buy 10 AAPL", "sell 5 MSFT at 410" (приоритет 100)
//   - QuotePlugin     — "quote SPY", "price of TSLA" (приоритет 60)
//   - PortfolioPlugin — "portfolio", "positions" (приоритет 40)
//
// Dispatcher реализует контракт классификатора intent'ов для
// Orchestrator'а (метод Classify).
package dispatch
