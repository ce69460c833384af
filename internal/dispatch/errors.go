package dispatch

import "errors"

// Ошибки диспетчера.
var (
	// ErrNoHandler — ни один плагин не распознал команду.
	ErrNoHandler = errors.New("no handler for input")

	// ErrMalformedCommand — плагин распознал класс команды,
	// но текст не соответствует ожидаемой форме.
	ErrMalformedCommand = errors.New("malformed command")
)
