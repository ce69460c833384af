package repo

import "errors"

// Ошибки слоя хранения.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись с таким ключом уже существует.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — запись в состоянии, не допускающем операцию.
	ErrInvalidState = errors.New("invalid state")
)
