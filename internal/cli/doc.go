// Package cli реализует команды консольного клиента tradomata-cli.
//
// CLI общается с движком только через HTTP API и не импортирует
// внутренние пакеты движка: response-типы дублируются локально.
package cli
