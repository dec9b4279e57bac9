// Package storage описывает ошибки хранилища рекомендаций и содержит
// хранилище в памяти процесса.
package storage

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("recommendation not found")
	// ErrDuplicateName запись с таким именем уже существует.
	ErrDuplicateName = errors.New("recommendation name already exists")
)
